package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/pkg/graph"
	"github.com/synapse-kb/synapse/backend/pkg/layout"

	"github.com/labstack/echo/v4"
)

// LayoutGraphHandler runs the force simulation server-side and returns
// settled positions for each node, in node order. Clients that cannot run
// their own simulation use this for static rendering.
func LayoutGraphHandler(c echo.Context) error {
	type layoutBody struct {
		GraphData graph.GraphData `json:"graphData"`
		Width     float64         `json:"width"`
		Height    float64         `json:"height"`
	}

	type layoutResponse struct {
		Message   string            `json:"message,omitempty"`
		Positions []layout.Position `json:"positions"`
	}

	data := new(layoutBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, layoutResponse{
			Message:   "Invalid request body",
			Positions: []layout.Position{},
		})
	}

	if data.Width <= 0 {
		data.Width = 800
	}
	if data.Height <= 0 {
		data.Height = 600
	}

	data.GraphData.Normalize()
	data.GraphData.Links = data.GraphData.ValidLinks()

	sim := layout.NewSimulation(data.GraphData, layout.DefaultConfig(data.Width, data.Height))
	sim.Settle()

	return c.JSON(http.StatusOK, layoutResponse{
		Positions: sim.Positions(),
	})
}
