package server

import (
	"github.com/synapse-kb/synapse/backend/internal/server/middleware"
	"github.com/synapse-kb/synapse/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Unauthenticated routes
	e.GET("/api/health", routes.HealthHandler)
	e.POST("/api/auth/register", routes.RegisterHandler)
	e.POST("/api/auth/login", routes.LoginHandler)

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Account routes
	apiRoutes.GET("/auth/user", routes.GetUserHandler)
	apiRoutes.DELETE("/user/data", routes.DeleteUserDataHandler)

	// Graph routes
	apiRoutes.GET("/graph/overview", routes.GetGraphOverviewHandler)
	apiRoutes.POST("/graph/query", routes.QueryGraphHandler)
	apiRoutes.POST("/graph/layout", routes.LayoutGraphHandler)
	apiRoutes.GET("/graph/render", routes.RenderGraphHandler)

	// Document routes
	apiRoutes.POST("/upload", routes.UploadFileHandler)
	apiRoutes.GET("/files", routes.GetFilesHandler)
	apiRoutes.GET("/files/:id/download", routes.DownloadFileHandler)
	apiRoutes.DELETE("/files/:id", routes.DeleteFileHandler)

	// History and configuration
	apiRoutes.GET("/history", routes.GetHistoryHandler)
	apiRoutes.POST("/db-config", routes.SetDBConfigHandler)
}
