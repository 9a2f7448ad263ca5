package zeromq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocket-telemetry/dashboard/pkg/config"
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
)

// DatasetLister is the catalog view the request handlers need
type DatasetLister interface {
	Summaries() []telemetry.Summary
}

// LayoutSource provides the current chart layout
type LayoutSource interface {
	GetLayout() *config.Layout
}

// DatasetsHandler handles DATASETS_REQUEST messages
type DatasetsHandler struct {
	datasets DatasetLister
	logger   customlog.Logger
}

// NewDatasetsHandler creates a new handler for dataset catalog requests
func NewDatasetsHandler(datasets DatasetLister, logger customlog.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		datasets: datasets,
		logger:   logger,
	}
}

// HandleMessage answers a DATASETS_REQUEST with the catalog summaries
func (h *DatasetsHandler) HandleMessage(data []byte) ([]byte, error) {
	if err := expectType(data, MsgTypeDatasetsRequest); err != nil {
		return nil, err
	}

	h.logger.Debugf("Processing datasets request")
	return respond(MsgTypeDatasetsResponse, h.datasets.Summaries())
}

// LayoutHandler handles LAYOUT_REQUEST messages
type LayoutHandler struct {
	layouts LayoutSource
	logger  customlog.Logger
}

// NewLayoutHandler creates a new handler for layout requests
func NewLayoutHandler(layouts LayoutSource, logger customlog.Logger) *LayoutHandler {
	return &LayoutHandler{
		layouts: layouts,
		logger:  logger,
	}
}

// HandleMessage answers a LAYOUT_REQUEST with the current layout
func (h *LayoutHandler) HandleMessage(data []byte) ([]byte, error) {
	if err := expectType(data, MsgTypeLayoutRequest); err != nil {
		return nil, err
	}

	h.logger.Debugf("Processing layout request")
	return respond(MsgTypeLayoutResponse, h.layouts.GetLayout())
}

func expectType(data []byte, want string) error {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type != want {
		return fmt.Errorf("%w: unexpected message type %s", ErrInvalidMessage, msg.Type)
	}
	return nil
}

func respond(messageType string, payload interface{}) ([]byte, error) {
	responseData, err := json.Marshal(ZeroMQMessage{
		Type:      messageType,
		Timestamp: float64(time.Now().Unix()),
		Data:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}
	return responseData, nil
}
