package zeromq

import (
	"github.com/rocket-telemetry/dashboard/pkg/config"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/processing"
)

// JSONPublisher is the part of ZeroMQService the layout publisher uses
type JSONPublisher interface {
	PublishJSON(topic string, messageType string, data interface{}) error
}

// LayoutPublisher announces layout changes to subscribers
type LayoutPublisher struct {
	service JSONPublisher
	logger  customlog.Logger
}

// NewLayoutPublisher creates a new publisher for layout updates
func NewLayoutPublisher(service JSONPublisher, logger customlog.Logger) *LayoutPublisher {
	return &LayoutPublisher{
		service: service,
		logger:  logger,
	}
}

// PublishLayoutUpdatedNotification publishes a notification that the layout has been updated
func (p *LayoutPublisher) PublishLayoutUpdatedNotification(layout *config.Layout) error {
	p.logger.Infof("Publishing layout update notification (ID: %s)", layout.LayoutID)

	notification := map[string]interface{}{
		"layout_id":    layout.LayoutID,
		"version":      layout.Version,
		"last_updated": layout.LastUpdated,
		"panels":       len(layout.Panels),
	}

	return p.service.PublishJSON(processing.TopicConfigNotify, MsgTypeLayoutUpdated, notification)
}

// RegisterHandlers registers the request handlers and returns the layout publisher
func RegisterHandlers(service *ZeroMQService, datasets DatasetLister, layouts LayoutSource, logger customlog.Logger) *LayoutPublisher {
	service.RegisterHandler(MsgTypeDatasetsRequest, NewDatasetsHandler(datasets, logger))
	service.RegisterHandler(MsgTypeLayoutRequest, NewLayoutHandler(layouts, logger))

	logger.Infof("Registered ZeroMQ request handlers and layout publisher")
	return NewLayoutPublisher(service, logger)
}
