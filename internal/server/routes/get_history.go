package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/synapse-kb/synapse/backend/internal/db"
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

const historyLimit = 50

// GetHistoryHandler returns the caller's prior queries, newest first,
// each with the subgraph snapshot the answer was based on.
func GetHistoryHandler(c echo.Context) error {
	type historyEntry struct {
		ID        int64           `json:"id"`
		Query     string          `json:"query"`
		Response  string          `json:"response"`
		GraphData graph.GraphData `json:"graphData"`
		Timestamp time.Time       `json:"timestamp"`
	}

	type errorResponse struct {
		Message string `json:"message"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{
			Message: "Unauthorized",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := db.New(conn)

	records, err := q.GetQueriesByUser(ctx, user.UserID, historyLimit)
	if err != nil {
		logger.Error("Failed to load query history", "user_id", user.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{
			Message: "Failed to load history",
		})
	}

	history := make([]historyEntry, 0, len(records))
	for _, record := range records {
		entry := historyEntry{
			ID:        record.ID,
			Query:     record.Text,
			Response:  record.Response,
			GraphData: graph.Empty(),
			Timestamp: record.Timestamp,
		}
		if len(record.ResponseGraph) > 0 {
			if err := json.Unmarshal(record.ResponseGraph, &entry.GraphData); err != nil {
				entry.GraphData = graph.Empty()
			}
		}
		history = append(history, entry)
	}

	return c.JSON(http.StatusOK, history)
}
