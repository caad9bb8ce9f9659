package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetFilesHandler lists the caller's uploaded files, newest first.
func GetFilesHandler(c echo.Context) error {
	type filesResponse struct {
		Message string    `json:"message,omitempty"`
		Files   []db.File `json:"files"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, filesResponse{
			Message: "Unauthorized",
			Files:   []db.File{},
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	files, err := q.GetFilesByUser(ctx, user.UserID)
	if err != nil {
		logger.Error("Failed to list files", "user_id", user.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, filesResponse{
			Message: "Failed to list files",
			Files:   []db.File{},
		})
	}

	return c.JSON(http.StatusOK, filesResponse{
		Files: files,
	})
}
