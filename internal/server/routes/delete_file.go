package routes

import (
	"net/http"
	"os"
	"strconv"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/internal/storage"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DeleteFileHandler removes one of the caller's uploads: the stored
// original, its unit embeddings, and the file record. Graph nodes are
// shared across documents and stay until the user deletes all data.
func DeleteFileHandler(c echo.Context) error {
	type deleteFileResponse struct {
		Message string `json:"message"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, deleteFileResponse{
			Message: "Unauthorized",
		})
	}

	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, deleteFileResponse{
			Message: "Invalid file id",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	q := db.New(app.DBConn)

	record, err := q.GetFileByID(ctx, fileID, user.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, deleteFileResponse{
			Message: "File not found",
		})
	}

	if app.S3 != nil {
		err = storage.DeleteFile(ctx, app.S3, record.StoredName)
	} else {
		err = os.Remove(record.StoredName)
	}
	if err != nil {
		logger.Warn("Failed to delete stored upload", "file_id", fileID, "err", err)
	}

	if err := q.DeleteUnitsByFile(ctx, fileID); err != nil {
		logger.Error("Failed to delete units", "file_id", fileID, "err", err)
	}
	if err := q.DeleteFileByID(ctx, fileID, user.UserID); err != nil {
		logger.Error("Failed to delete file record", "file_id", fileID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteFileResponse{
			Message: "Failed to delete file",
		})
	}

	return c.JSON(http.StatusOK, deleteFileResponse{
		Message: "File deleted",
	})
}
