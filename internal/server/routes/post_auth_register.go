package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// RegisterHandler creates a new user account.
func RegisterHandler(c echo.Context) error {
	type registerBody struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	type registerResponse struct {
		Message string   `json:"message"`
		User    *db.User `json:"user,omitempty"`
	}

	data := new(registerBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, registerResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, registerResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	count, err := q.CountUsersByUsernameOrEmail(ctx, data.Username, data.Email)
	if err != nil {
		logger.Error("Failed to check existing users", "err", err)
		return c.JSON(http.StatusInternalServerError, registerResponse{
			Message: "Internal server error",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, registerResponse{
			Message: "Username or email already taken",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", "err", err)
		return c.JSON(http.StatusInternalServerError, registerResponse{
			Message: "Internal server error",
		})
	}

	user, err := q.CreateUser(ctx, db.CreateUserParams{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		logger.Error("Failed to create user", "err", err)
		return c.JSON(http.StatusInternalServerError, registerResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "User registered",
		User:    &user,
	})
}
