package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/storage"
	"github.com/synapse-kb/synapse/backend/pkg/leaselock"
	"github.com/synapse-kb/synapse/backend/pkg/logger"
	"github.com/synapse-kb/synapse/backend/pkg/store"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeleteUserDataMsg asks the worker to remove everything a user owns:
// graph nodes, history, file records, unit embeddings, and stored uploads.
type DeleteUserDataMsg struct {
	UserID int64 `json:"user_id"`
}

func ProcessDeleteMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	graphStore store.GraphStore,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(DeleteUserDataMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	userID := data.UserID

	start := time.Now()

	// Serialize per-user deletion across worker replicas.
	lockClient := leaselock.New(conn)
	lease, err := lockClient.Acquire(ctx, fmt.Sprintf("user:%d", userID), leaselock.Options{
		TTL:         10 * time.Minute,
		RenewEvery:  4 * time.Minute,
		Wait:        true,
		TokenPrefix: fmt.Sprintf("delete/%d/", userID),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	ctx = lease.Context

	if err := graphStore.DeleteOwner(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete graph data for user %d: %w", userID, err)
	}

	q := db.New(conn)
	if err := q.DeleteUnitsByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete units for user %d: %w", userID, err)
	}
	if err := q.DeleteQueriesByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete query history for user %d: %w", userID, err)
	}
	if err := q.DeleteFilesByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete file records for user %d: %w", userID, err)
	}

	if s3Client != nil {
		prefix := fmt.Sprintf("uploads/%d/", userID)
		if err := storage.DeleteFolder(ctx, s3Client, prefix); err != nil {
			logger.Warn("[Queue] Failed to delete stored uploads", "user_id", userID, "err", err)
		}
	} else if err := storage.DeleteLocalFolder(fmt.Sprintf("uploads/%d", userID)); err != nil {
		logger.Warn("[Queue] Failed to delete stored uploads", "user_id", userID, "err", err)
	}

	logger.Info("[Queue] User data deleted", "user_id", userID, "duration_sec", time.Since(start).Seconds())

	return nil
}
