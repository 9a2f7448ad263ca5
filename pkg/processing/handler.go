package processing

import (
	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
)

// MessagePublisher defines the interface for publishing messages
type MessagePublisher interface {
	PublishMessage(topic string, data []byte) error
}

// PublishingResultHandler logs processing results and publishes them to ZMQ
type PublishingResultHandler struct {
	logger    customlog.Logger
	publisher MessagePublisher
}

// NewPublishingResultHandler creates a new publishing result handler
func NewPublishingResultHandler(logger customlog.Logger, publisher MessagePublisher) *PublishingResultHandler {
	return &PublishingResultHandler{
		logger:    logger,
		publisher: publisher,
	}
}

// HandleResult handles a processed frame
func (h *PublishingResultHandler) HandleResult(result *ProcessResult) {
	if result.Error != nil {
		h.logger.Errorf("Error processing frame %d for session %s: %v", result.Index, result.SessionID, result.Error)
		return
	}
	if len(result.Data) == 0 || h.publisher == nil {
		return
	}

	if err := h.publisher.PublishMessage(result.Topic, result.Data); err != nil {
		h.logger.Errorf("Failed to publish frame %d on topic '%s': %v", result.Index, result.Topic, err)
		return
	}
	h.logger.Debugf("Published frame %d for session %s on topic '%s'", result.Index, result.SessionID, result.Topic)
}

// CreateHandlerFunc creates a ResultHandler function for the ProcessingPool
func (h *PublishingResultHandler) CreateHandlerFunc() ResultHandler {
	return func(processResult *ProcessResult) {
		if processResult == nil {
			h.logger.Errorf("Received nil ProcessResult")
			return
		}
		h.HandleResult(processResult)
	}
}
