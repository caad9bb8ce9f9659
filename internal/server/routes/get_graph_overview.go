package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/ingest"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetGraphOverviewHandler returns the caller's full knowledge graph plus
// node and relationship counts.
func GetGraphOverviewHandler(c echo.Context) error {
	type overviewStats struct {
		NodeCount         int `json:"nodeCount"`
		RelationshipCount int `json:"relationshipCount"`
	}

	type overviewResponse struct {
		Message   string          `json:"message,omitempty"`
		GraphData graph.GraphData `json:"graphData"`
		Stats     overviewStats   `json:"stats"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, overviewResponse{
			Message:   "Unauthorized",
			GraphData: graph.Empty(),
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	g, err := ingest.OverviewGraph(ctx, app.GraphStore(), user.UserID)
	if err != nil {
		logger.Error("Failed to load graph overview", "user_id", user.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, overviewResponse{
			Message:   "Failed to load graph",
			GraphData: graph.Empty(),
		})
	}

	return c.JSON(http.StatusOK, overviewResponse{
		GraphData: g,
		Stats: overviewStats{
			NodeCount:         len(g.Nodes),
			RelationshipCount: len(g.Links),
		},
	})
}
