package api

import (
	"github.com/rocket-telemetry/dashboard/pkg/chart"
	"github.com/rocket-telemetry/dashboard/pkg/playback"
)

// SelectDatasetRequest switches the session to a bundled dataset.
type SelectDatasetRequest struct {
	Name string `json:"name"`
}

// SeekRequest moves the playback index. Out-of-range values are clamped.
type SeekRequest struct {
	Index int `json:"index"`
}

// Playback actions accepted over the websocket.
const (
	ActionPlay  = "play"
	ActionPause = "pause"
	ActionSeek  = "seek"
)

// PlaybackCommand is a client message on /ws/playback.
type PlaybackCommand struct {
	Action string `json:"action"`
	Index  int    `json:"index,omitempty"`
}

// Server message types on /ws/playback.
const (
	MessageDashboard = "dashboard"
	MessageWarning   = "warning"
	MessageError     = "error"
)

// PlaybackMessage is a server message on /ws/playback.
type PlaybackMessage struct {
	Type      string           `json:"type"`
	State     playback.State   `json:"state"`
	Dashboard *chart.Dashboard `json:"dashboard,omitempty"`
	Message   string           `json:"message,omitempty"`
}
