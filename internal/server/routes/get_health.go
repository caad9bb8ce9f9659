package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports API liveness plus the state of the graph store and
// the language model. A disconnected store degrades the report but the
// endpoint itself still answers 200.
func HealthHandler(c echo.Context) error {
	type healthResponse struct {
		Status string `json:"status"`
		Neo4j  string `json:"neo4j"`
		LLM    string `json:"llm"`
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	resp := healthResponse{
		Status: "ok",
		Neo4j:  "connected",
		LLM:    "unavailable",
	}

	if err := app.GraphStore().Verify(ctx); err != nil {
		logger.Warn("Graph store connectivity check failed", "backend", app.Backend(), "err", err)
		resp.Neo4j = "disconnected"
	}

	if app.AiClient != nil {
		resp.LLM = "available"
	}

	return c.JSON(http.StatusOK, resp)
}
