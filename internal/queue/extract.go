package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/util"
	"github.com/synapse-kb/synapse/backend/pkg/ingest"
	"github.com/synapse-kb/synapse/backend/pkg/loader"
	ioloader "github.com/synapse-kb/synapse/backend/pkg/loader/io"
	s3loader "github.com/synapse-kb/synapse/backend/pkg/loader/s3"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pgvector/pgvector-go"
)

// ExtractFileMsg asks the worker to run graph extraction over an uploaded
// file that was too large for the synchronous upload path.
type ExtractFileMsg struct {
	FileID   int64  `json:"file_id"`
	UserID   int64  `json:"user_id"`
	FileKey  string `json:"file_key"`
	FileName string `json:"file_name"`
}

// ProcessExtractMessage downloads the stored original, runs the ingestion
// pipeline, persists unit embeddings, and marks the file processed.
func ProcessExtractMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	pipeline *ingest.Pipeline,
	conn db.DBTX,
	msg string,
) error {
	data := new(ExtractFileMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	var base loader.GraphFileLoader
	if s3Client != nil {
		base = s3loader.NewS3GraphFileLoaderWithClient(util.GetEnv("AWS_BUCKET"), s3Client)
	} else {
		base = ioloader.NewIOGraphFileLoader()
	}

	file := loader.GraphFile{
		ID:       strconv.FormatInt(data.FileID, 10),
		FileName: data.FileName,
		FilePath: data.FileKey,
	}

	start := time.Now()
	result, err := pipeline.ProcessFile(ctx, base, file, data.UserID)
	if err != nil {
		return fmt.Errorf("extraction failed for file %d: %w", data.FileID, err)
	}

	q := db.New(conn)
	StoreUnitEmbeddings(ctx, q, pipeline, data.FileID, result.Units)

	if err := q.MarkFileProcessed(ctx, data.FileID); err != nil {
		return fmt.Errorf("failed to mark file processed: %w", err)
	}

	logger.Info(
		"[Queue] Extraction completed",
		"file_id", data.FileID,
		"nodes", result.NodesCreated,
		"relationships", result.RelationshipsCreated,
		"duration_sec", time.Since(start).Seconds(),
	)

	return nil
}

// StoreUnitEmbeddings embeds each unit and writes it to the units table.
// Embedding failures are logged and skipped so extraction output survives
// even when the embedding model is down.
func StoreUnitEmbeddings(
	ctx context.Context,
	q *db.Queries,
	pipeline *ingest.Pipeline,
	fileID int64,
	units []loader.Unit,
) {
	if pipeline.Client == nil {
		return
	}

	for _, unit := range units {
		vec, err := pipeline.Client.Embedding(ctx, []byte(unit.Text))
		if err != nil {
			logger.Warn("[Queue] Failed to embed unit", "unit", unit.ID, "err", err)
			continue
		}

		_, err = q.CreateUnit(ctx, db.CreateUnitParams{
			ID:        unit.ID,
			FileID:    fileID,
			Idx:       int32(unit.Index),
			Content:   util.SanitizePostgresText(unit.Text),
			Embedding: pgvector.NewVector(vec),
		})
		if err != nil {
			logger.Warn("[Queue] Failed to store unit", "unit", unit.ID, "err", err)
		}
	}
}
