package routes

import (
	"net/http"

	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SetDBConfigHandler switches the active graph store backend at runtime.
// Only backends registered at startup can be selected.
func SetDBConfigHandler(c echo.Context) error {
	type dbConfigBody struct {
		Backend string `json:"backend" validate:"required,oneof=neo4j memory"`
	}

	type dbConfigResponse struct {
		Message string `json:"message"`
		Backend string `json:"backend,omitempty"`
	}

	data := new(dbConfigBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, dbConfigResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, dbConfigResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	if err := app.SetBackend(data.Backend); err != nil {
		return c.JSON(http.StatusBadRequest, dbConfigResponse{
			Message: err.Error(),
		})
	}

	logger.Info("Graph backend switched", "backend", data.Backend)

	return c.JSON(http.StatusOK, dbConfigResponse{
		Message: "Graph backend updated",
		Backend: app.Backend(),
	})
}
