package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/queue"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/internal/storage"
	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/ingest"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadFileHandler accepts a multipart document upload, stores the
// original, and builds its knowledge graph. Uploads above the async
// threshold are queued for the worker and acknowledged immediately;
// smaller files are processed in the request.
func UploadFileHandler(c echo.Context) error {
	type uploadedFile struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	}

	type uploadGraph struct {
		NodesCreated         int             `json:"nodesCreated"`
		RelationshipsCreated int             `json:"relationshipsCreated"`
		GraphData            graph.GraphData `json:"graphData"`
	}

	type uploadResponse struct {
		Message string        `json:"message"`
		File    *uploadedFile `json:"file,omitempty"`
		Graph   *uploadGraph  `json:"graph,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, uploadResponse{
			Message: "Unauthorized",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Missing file",
		})
	}

	if _, err := loader.Validate(fileHeader.Filename, fileHeader.Size); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, loader.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return c.JSON(status, uploadResponse{
			Message: err.Error(),
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Could not read file",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadResponse{
			Message: "Could not read file",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	storedName := uuid.NewString()
	path := fmt.Sprintf("uploads/%d", user.UserID)
	if app.S3 != nil {
		objectKey, err := storage.PutFile(ctx, app.S3, path, fileHeader.Filename, storedName, bytes.NewReader(content))
		if err != nil {
			logger.Error("Failed to store upload", "file", fileHeader.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Failed to store file",
			})
		}
		storedName = objectKey
	} else {
		localPath, err := storage.PutLocalFile(path, fileHeader.Filename, storedName, content)
		if err != nil {
			logger.Error("Failed to store upload", "file", fileHeader.Filename, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Failed to store file",
			})
		}
		storedName = localPath
	}

	q := db.New(app.DBConn)
	record, err := q.CreateFile(ctx, db.CreateFileParams{
		UserID:       user.UserID,
		OriginalName: fileHeader.Filename,
		StoredName:   storedName,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
	})
	if err != nil {
		logger.Error("Failed to record upload", "file", fileHeader.Filename, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Internal server error",
		})
	}

	respFile := &uploadedFile{
		ID:   record.ID,
		Name: record.OriginalName,
		Size: record.Size,
	}

	// Large uploads are handed to the worker so the request returns fast.
	if app.Queue != nil && app.AsyncThreshold > 0 && fileHeader.Size > app.AsyncThreshold {
		msg, err := json.Marshal(queue.ExtractFileMsg{
			FileID:   record.ID,
			UserID:   user.UserID,
			FileKey:  record.StoredName,
			FileName: record.OriginalName,
		})
		if err == nil {
			err = queue.PublishFIFO(app.Queue, "extract_queue", msg)
		}
		if err != nil {
			logger.Error("Failed to queue extraction", "file_id", record.ID, "err", err)
			return c.JSON(http.StatusInternalServerError, uploadResponse{
				Message: "Failed to queue file for processing",
				File:    respFile,
			})
		}

		return c.JSON(http.StatusAccepted, uploadResponse{
			Message: "File accepted for processing",
			File:    respFile,
		})
	}

	pipeline := ingest.NewPipeline(ingest.NewPipelineParams{
		Client: app.AiClient,
		Store:  app.GraphStore(),
	})

	base := &loader.BytesGraphFileLoader{Data: content}
	file := loader.GraphFile{
		ID:       strconv.FormatInt(record.ID, 10),
		FileName: record.OriginalName,
		FilePath: record.StoredName,
	}

	result, err := pipeline.ProcessFile(ctx, base, file, user.UserID)
	if err != nil {
		logger.Error("Extraction failed", "file_id", record.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadResponse{
			Message: "Failed to process file",
			File:    respFile,
		})
	}

	queue.StoreUnitEmbeddings(ctx, q, pipeline, record.ID, result.Units)

	if err := q.MarkFileProcessed(ctx, record.ID); err != nil {
		logger.Warn("Failed to mark file processed", "file_id", record.ID, "err", err)
	}

	g, err := ingest.OverviewGraph(ctx, app.GraphStore(), user.UserID)
	if err != nil {
		logger.Warn("Failed to load graph after upload", "file_id", record.ID, "err", err)
		g = graph.Empty()
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Message: "File processed",
		File:    respFile,
		Graph: &uploadGraph{
			NodesCreated:         result.NodesCreated,
			RelationshipsCreated: result.RelationshipsCreated,
			GraphData:            g,
		},
	})
}
