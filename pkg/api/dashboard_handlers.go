package api

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/rocket-telemetry/dashboard/pkg/chart"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"github.com/rocket-telemetry/dashboard/services"
)

// DatasetCatalog lists the bundled datasets.
type DatasetCatalog interface {
	Names() []string
	Default() string
	Summaries() []telemetry.Summary
}

// DashboardHandler holds dependencies for the session and chart endpoints.
type DashboardHandler struct {
	sessions services.SessionService
	layouts  services.LayoutService
	catalog  DatasetCatalog
	logger   customlog.Logger
}

// NewDashboardHandler creates a new handler for dashboard endpoints.
func NewDashboardHandler(sessions services.SessionService, layouts services.LayoutService, catalog DatasetCatalog, logger customlog.Logger) *DashboardHandler {
	return &DashboardHandler{
		sessions: sessions,
		layouts:  layouts,
		catalog:  catalog,
		logger:   logger,
	}
}

// RegisterDashboardRoutes registers the dataset, session and playback endpoints.
func RegisterDashboardRoutes(app *fiber.App, h *DashboardHandler) {
	app.Get("/api/v1/datasets", h.handleListDatasets)

	session := app.Group("/api/v1/session", SessionMiddleware(h.sessions))
	session.Get("/", h.handleGetSession)
	session.Delete("/", h.handleEndSession)
	session.Post("/dataset", h.handleSelectDataset)
	session.Post("/upload", h.handleUpload)
	session.Get("/dashboard", h.handleGetDashboard)
	session.Get("/steps", h.handleGetSteps)
	session.Get("/charts/:panel", h.handleGetChart)

	playbackGroup := session.Group("/playback")
	playbackGroup.Post("/play", h.handlePlay)
	playbackGroup.Post("/pause", h.handlePause)
	playbackGroup.Post("/seek", h.handleSeek)

	h.logger.Infof("Registered dashboard API endpoints under /api/v1")
}

func (h *DashboardHandler) builder() *chart.Builder {
	return chart.NewBuilder(h.layouts.GetLayout())
}

func (h *DashboardHandler) handleListDatasets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"default":  h.catalog.Default(),
		"datasets": h.catalog.Summaries(),
	})
}

func (h *DashboardHandler) handleGetSession(c *fiber.Ctx) error {
	return c.JSON(currentSession(c).Info())
}

func (h *DashboardHandler) handleEndSession(c *fiber.Ctx) error {
	sess := currentSession(c)
	h.sessions.End(sess.ID)
	c.ClearCookie(SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *DashboardHandler) handleSelectDataset(c *fiber.Ctx) error {
	var req SelectDatasetRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be {\"name\": \"<dataset>\"}")
	}

	sess, err := h.sessions.SelectDataset(currentSession(c).ID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(sess.Info())
}

func (h *DashboardHandler) handleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field 'file' is required")
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	sess, err := h.sessions.UploadDataset(currentSession(c).ID, fh.Filename, fh.Header.Get(fiber.HeaderContentType), f)
	if err != nil {
		return err
	}
	return c.JSON(sess.Info())
}

// handleGetDashboard renders the current index, or the ?index= one when
// given. The query only previews; it does not move playback.
func (h *DashboardHandler) handleGetDashboard(c *fiber.Ctx) error {
	ds, state := currentSession(c).Snapshot()
	index := c.QueryInt("index", state.Index)

	d, err := h.builder().Build(ds, index)
	if err != nil {
		return err
	}
	d.Playing = state.Playing
	return c.JSON(d)
}

func (h *DashboardHandler) handleGetSteps(c *fiber.Ctx) error {
	ds := currentSession(c).Dataset()
	if ds.Len() == 0 {
		return telemetry.ErrNoDataset
	}
	return c.JSON(h.builder().AnimationSteps(ds))
}

func (h *DashboardHandler) handleGetChart(c *fiber.Ctx) error {
	ds := currentSession(c).Dataset()
	width := c.QueryInt("width", chart.DefaultPNGWidth)
	height := c.QueryInt("height", chart.DefaultPNGHeight)
	if width > 4000 || height > 4000 {
		return fiber.NewError(fiber.StatusBadRequest, "chart size is limited to 4000x4000")
	}

	var buf bytes.Buffer
	if err := h.builder().RenderPNG(&buf, ds, c.Params("panel"), width, height); err != nil {
		if errors.Is(err, telemetry.ErrMissingColumn) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(buf.Bytes())
}

func (h *DashboardHandler) handlePlay(c *fiber.Ctx) error {
	return c.JSON(currentSession(c).Player().Play())
}

func (h *DashboardHandler) handlePause(c *fiber.Ctx) error {
	return c.JSON(currentSession(c).Player().Pause())
}

func (h *DashboardHandler) handleSeek(c *fiber.Ctx) error {
	var req SeekRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be {\"index\": <n>}")
	}
	return c.JSON(currentSession(c).Player().Seek(req.Index))
}
