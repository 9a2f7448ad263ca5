package api

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/rocket-telemetry/dashboard/pkg/config"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"github.com/rocket-telemetry/dashboard/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageTitle is shown in the browser tab and the page header.
const PageTitle = "Rocket Telemetry Dashboard"

// pageData feeds templates/index.html.
type pageData struct {
	Title       string
	Default     string
	Datasets    []telemetry.Summary
	Session     services.SessionInfo
	SliderMax   int
	Panels      []config.PanelMapping
	MaxUploadMB int
}

// PageHandler serves the interactive dashboard page.
type PageHandler struct {
	layouts     services.LayoutService
	catalog     DatasetCatalog
	maxUploadMB int
	logger      customlog.Logger
}

// NewPageHandler creates the handler for GET /.
func NewPageHandler(layouts services.LayoutService, catalog DatasetCatalog, maxUploadMB int, logger customlog.Logger) *PageHandler {
	return &PageHandler{
		layouts:     layouts,
		catalog:     catalog,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// RegisterPageRoutes mounts the dashboard page at / behind the session middleware.
func RegisterPageRoutes(app *fiber.App, sessions services.SessionService, h *PageHandler) {
	app.Get("/", SessionMiddleware(sessions), h.handleIndex)
}

func (h *PageHandler) handleIndex(c *fiber.Ctx) error {
	data := pageData{
		Title:       PageTitle,
		Default:     h.catalog.Default(),
		Datasets:    h.catalog.Summaries(),
		Session:     currentSession(c).Info(),
		Panels:      h.layouts.GetLayout().GetPanels(),
		MaxUploadMB: h.maxUploadMB,
	}

	if data.Session.Records > 0 {
		data.SliderMax = data.Session.Records - 1
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Errorf("Failed to render dashboard page: %v", err)
		return err
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
