package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetUserHandler returns the account behind the presented token.
func GetUserHandler(c echo.Context) error {
	type getUserResponse struct {
		Message string   `json:"message,omitempty"`
		User    *db.User `json:"user,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getUserResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	record, err := q.GetUserByID(ctx, user.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, getUserResponse{
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, getUserResponse{
		User: &record,
	})
}
