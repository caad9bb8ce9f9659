package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// LoginHandler verifies credentials and issues a signed access token.
func LoginHandler(c echo.Context) error {
	type loginBody struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	type loginResponse struct {
		Message string   `json:"message"`
		Token   string   `json:"token,omitempty"`
		User    *db.User `json:"user,omitempty"`
	}

	data := new(loginBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, loginResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	q := db.New(app.DBConn)

	user, err := q.GetUserByUsername(ctx, data.Username)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, loginResponse{
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(data.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, loginResponse{
			Message: "Invalid credentials",
		})
	}

	hours := app.TokenHours
	if hours <= 0 {
		hours = 24
	}

	claims := jwt.MapClaims{
		"id":       strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"exp":      time.Now().Add(time.Duration(hours) * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(app.JWTSecret)
	if err != nil {
		logger.Error("Failed to sign token", "err", err)
		return c.JSON(http.StatusInternalServerError, loginResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    &user,
	})
}
