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

// DownloadFileHandler streams back the stored original of one of the
// caller's uploads.
func DownloadFileHandler(c echo.Context) error {
	type downloadError struct {
		Message string `json:"message"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, downloadError{
			Message: "Unauthorized",
		})
	}

	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, downloadError{
			Message: "Invalid file id",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	record, err := db.New(app.DBConn).GetFileByID(ctx, fileID, user.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, downloadError{
			Message: "File not found",
		})
	}

	var content []byte
	if app.S3 != nil {
		content, err = storage.GetFile(ctx, app.S3, record.StoredName)
	} else {
		content, err = os.ReadFile(record.StoredName)
	}
	if err != nil {
		logger.Error("Failed to read stored upload", "file_id", fileID, "err", err)
		return c.JSON(http.StatusInternalServerError, downloadError{
			Message: "Failed to read file",
		})
	}

	mimeType := record.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+record.OriginalName+`"`)
	return c.Blob(http.StatusOK, mimeType, content)
}
