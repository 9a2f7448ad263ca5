package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/services"
)

// AppName is reported by fiber at startup.
const AppName = "Rocket Telemetry Dashboard"

// AppOptions carries everything the web surface needs.
type AppOptions struct {
	Sessions    services.SessionService
	Layouts     services.LayoutService
	Catalog     DatasetCatalog
	Logger      customlog.Logger
	MaxUploadMB int
	// RequestLog enables fiber's access log middleware.
	RequestLog bool
}

// NewApp builds the fiber app with every dashboard route registered.
func NewApp(opts AppOptions) *fiber.App {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 200
	}

	app := fiber.New(fiber.Config{
		AppName:               AppName,
		ErrorHandler:          ErrorHandler,
		BodyLimit:             opts.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	if opts.RequestLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	RegisterPageRoutes(app, opts.Sessions, NewPageHandler(opts.Layouts, opts.Catalog, opts.MaxUploadMB, opts.Logger))
	RegisterDashboardRoutes(app, NewDashboardHandler(opts.Sessions, opts.Layouts, opts.Catalog, opts.Logger))
	RegisterConfigRoutes(app, opts.Layouts, opts.Logger)
	RegisterWebSocketRoutes(app, opts.Sessions, opts.Layouts, opts.Logger)

	return app
}
