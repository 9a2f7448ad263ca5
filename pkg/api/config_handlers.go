package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/services"
)

// ConfigHandler holds dependencies for configuration API endpoints.
type ConfigHandler struct {
	layoutService services.LayoutService
	logger        customlog.Logger
}

// NewConfigHandler creates a new handler for configuration endpoints.
func NewConfigHandler(layoutService services.LayoutService, logger customlog.Logger) *ConfigHandler {
	if layoutService == nil {
		panic("LayoutService cannot be nil in NewConfigHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewConfigHandler")
	}
	return &ConfigHandler{
		layoutService: layoutService,
		logger:        logger,
	}
}

// RegisterConfigRoutes registers the configuration API endpoints with the Fiber app.
func RegisterConfigRoutes(app *fiber.App, layoutService services.LayoutService, logger customlog.Logger) {
	h := NewConfigHandler(layoutService, logger)

	apiGroup := app.Group("/api/v1/config")
	apiGroup.Get("/layout", h.handleGetLayout)
	apiGroup.Put("/layout", h.handleUpdateLayout)

	logger.Infof("Registered layout configuration API endpoints under /api/v1/config")
}

// handleGetLayout returns the chart layout as YAML, or as JSON for
// ?format=json and Accept: application/json.
func (h *ConfigHandler) handleGetLayout(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/config/layout")

	if c.Query("format") == "json" || strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
		return c.JSON(h.layoutService.GetLayout())
	}

	yamlData, err := h.layoutService.GetLayoutYAML()
	if err != nil {
		h.logger.Errorf("Failed to get current layout YAML: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to retrieve layout: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}

// handleUpdateLayout handles PUT requests to replace the layout YAML.
func (h *ConfigHandler) handleUpdateLayout(c *fiber.Ctx) error {
	h.logger.Debugf("Handling PUT request for /api/v1/config/layout")

	switch c.Get(fiber.HeaderContentType) {
	case "application/x-yaml", "application/yaml", "text/yaml", "":
	default:
		h.logger.Warnf("Received PUT request with Content-Type %s, parsing as YAML anyway", c.Get(fiber.HeaderContentType))
	}

	newLayoutYAML := c.Body()
	if len(newLayoutYAML) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body cannot be empty.",
		})
	}

	if err := h.layoutService.UpdateLayout(newLayoutYAML); err != nil {
		h.logger.Errorf("Failed to update layout: %v", err)
		if strings.Contains(err.Error(), "invalid YAML format") || strings.Contains(err.Error(), "validation failed") {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Layout update failed: %v", err),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Internal server error during layout update: %v", err),
		})
	}

	layout := h.layoutService.GetLayout()
	h.logger.Infof("Layout updated to %s (version %s)", layout.LayoutID, layout.Version)
	return c.JSON(fiber.Map{
		"message":   "Layout updated successfully.",
		"layout_id": layout.LayoutID,
	})
}
