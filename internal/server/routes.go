package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OFFIS-RIT/wikigraph/internal/server/middleware"
	"github.com/OFFIS-RIT/wikigraph/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Import routes
	apiRoutes.POST("/imports", routes.CreateImportHandler, middleware.RequirePermission("import.create"))
	apiRoutes.GET("/imports/:id", routes.GetImportHandler, middleware.RequirePermission("import.view"))

	// Dump routes
	apiRoutes.POST("/dumps", routes.UploadDumpHandler, middleware.RequirePermission("dump.upload"))
}
