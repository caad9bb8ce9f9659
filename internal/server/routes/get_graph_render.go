package routes

import (
	"net/http"
	"strconv"

	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/ingest"
	"github.com/synapse-kb/synapse/backend/pkg/layout"
	"github.com/synapse-kb/synapse/backend/pkg/logger"
	"github.com/synapse-kb/synapse/backend/pkg/render"

	"github.com/labstack/echo/v4"
)

// RenderGraphHandler draws the caller's knowledge graph as an SVG
// node-link diagram. Width and height come from query parameters with
// sensible defaults.
func RenderGraphHandler(c echo.Context) error {
	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}

	width := 800.0
	if v, err := strconv.ParseFloat(c.QueryParam("width"), 64); err == nil && v > 0 {
		width = v
	}
	height := 600.0
	if v, err := strconv.ParseFloat(c.QueryParam("height"), 64); err == nil && v > 0 {
		height = v
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	g, err := ingest.OverviewGraph(ctx, app.GraphStore(), user.UserID)
	if err != nil {
		logger.Error("Failed to load graph for rendering", "user_id", user.UserID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to load graph"})
	}

	comp := layout.NewComponent(width, height)
	comp.SetData(g)

	var positions []layout.Position
	if sim := comp.Simulation(); sim != nil {
		sim.Settle()
		positions = sim.Positions()
	}

	svg := render.SVG(comp.Data(), positions, render.Params{
		Width:  width,
		Height: height,
		Title:  "Knowledge Graph",
	})

	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}
