package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/queue"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/internal/storage"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeleteUserDataHandler removes everything the caller owns. With a queue
// configured the deletion runs in the worker and the request is
// acknowledged immediately; without one it runs inline.
func DeleteUserDataHandler(c echo.Context) error {
	type deleteResponse struct {
		Message string `json:"message"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, deleteResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if app.Queue != nil {
		msg, err := json.Marshal(queue.DeleteUserDataMsg{UserID: user.UserID})
		if err == nil {
			err = queue.PublishFIFO(app.Queue, "delete_queue", msg)
		}
		if err != nil {
			logger.Error("Failed to queue deletion", "user_id", user.UserID, "err", err)
			return c.JSON(http.StatusInternalServerError, deleteResponse{
				Message: "Failed to queue deletion",
			})
		}

		return c.JSON(http.StatusAccepted, deleteResponse{
			Message: "Deletion queued",
		})
	}

	if err := app.GraphStore().DeleteOwner(ctx, user.UserID); err != nil {
		logger.Error("Failed to delete graph data", "user_id", user.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteResponse{
			Message: "Failed to delete data",
		})
	}

	q := db.New(app.DBConn)
	if err := q.DeleteUnitsByUser(ctx, user.UserID); err != nil {
		logger.Error("Failed to delete units", "user_id", user.UserID, "err", err)
	}
	if err := q.DeleteQueriesByUser(ctx, user.UserID); err != nil {
		logger.Error("Failed to delete query history", "user_id", user.UserID, "err", err)
	}
	if err := q.DeleteFilesByUser(ctx, user.UserID); err != nil {
		logger.Error("Failed to delete file records", "user_id", user.UserID, "err", err)
	}

	if app.S3 != nil {
		if err := storage.DeleteFolder(ctx, app.S3, fmt.Sprintf("uploads/%d/", user.UserID)); err != nil {
			logger.Warn("Failed to delete stored uploads", "user_id", user.UserID, "err", err)
		}
	} else if err := storage.DeleteLocalFolder(fmt.Sprintf("uploads/%d", user.UserID)); err != nil {
		logger.Warn("Failed to delete stored uploads", "user_id", user.UserID, "err", err)
	}

	return c.JSON(http.StatusOK, deleteResponse{
		Message: "User data deleted",
	})
}
