package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
	"gopkg.in/yaml.v3"
)

// Panel render modes
const (
	ModeLines   = "lines"
	ModeMarkers = "markers"
)

// Layout is the operational chart configuration: which columns feed the
// trajectory and which 2D panels are drawn below it.
type Layout struct {
	Version     string           `yaml:"version" json:"version"`
	LayoutID    string           `yaml:"layout_id" json:"layout_id"`
	LastUpdated string           `yaml:"lastUpdated" json:"lastUpdated"`
	Trajectory  TrajectoryLayout `yaml:"trajectory" json:"trajectory"`
	Panels      []PanelMapping   `yaml:"panels" json:"panels"`
	Defaults    PanelDefaults    `yaml:"defaults" json:"defaults"`
}

// TrajectoryLayout maps dataset columns onto the 3D scene.
type TrajectoryLayout struct {
	Title   string `yaml:"title" json:"title"`
	XColumn string `yaml:"x_column" json:"x_column"`
	YColumn string `yaml:"y_column" json:"y_column"`
	ZColumn string `yaml:"z_column" json:"z_column"`
	XTitle  string `yaml:"x_title" json:"x_title"`
	YTitle  string `yaml:"y_title" json:"y_title"`
	ZTitle  string `yaml:"z_title" json:"z_title"`
	// GroundOffset is how far below the lowest altitude the ground plane sits.
	GroundOffset float64 `yaml:"ground_offset" json:"ground_offset"`
	// Animation schedule: first frame, stride, and the ms label per record.
	FrameStart   int `yaml:"frame_start" json:"frame_start"`
	FrameStep    int `yaml:"frame_step" json:"frame_step"`
	FrameLabelMs int `yaml:"frame_label_ms" json:"frame_label_ms"`
}

// PanelMapping describes one 2D time-series chart.
type PanelMapping struct {
	PanelID string   `yaml:"panel_id" json:"panel_id"`
	Title   string   `yaml:"title" json:"title"`
	YLabel  string   `yaml:"y_label" json:"y_label"`
	Columns []string `yaml:"columns" json:"columns"`
	Mode    string   `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// PanelDefaults holds values applied to panels that leave them empty.
type PanelDefaults struct {
	Mode      string `yaml:"mode" json:"mode"`
	MaxFrames int    `yaml:"max_frames" json:"max_frames"`
}

// DefaultLayout mirrors the dashboard's stock panels.
func DefaultLayout() *Layout {
	return &Layout{
		Version:  "1.0",
		LayoutID: "default",
		Trajectory: TrajectoryLayout{
			Title:        "Live Rocket Trajectory",
			XColumn:      telemetry.ColLon,
			YColumn:      telemetry.ColLat,
			ZColumn:      telemetry.ColGPSAlt,
			XTitle:       "Longitude",
			YTitle:       "Latitude",
			ZTitle:       "Altitude (m)",
			GroundOffset: 10,
			FrameStart:   10,
			FrameStep:    5,
			FrameLabelMs: 50,
		},
		Panels: []PanelMapping{
			{PanelID: "altitude", Title: "Altitude over Time", YLabel: "Altitude", Columns: []string{telemetry.ColAlt}},
			{PanelID: "acceleration", Title: "Accelerometer Data", YLabel: "Acceleration", Columns: []string{telemetry.ColAccX, telemetry.ColAccY, telemetry.ColAccZ}},
			{PanelID: "orientation", Title: "Orientation (Euler Angles)", YLabel: "Orientation", Columns: []string{telemetry.ColEuX, telemetry.ColEuY, telemetry.ColEuZ}},
			{PanelID: "valves", Title: "Valve State over Time", YLabel: "Valve State", Columns: []string{telemetry.ColValveState}, Mode: ModeMarkers},
		},
		Defaults: PanelDefaults{
			Mode:      ModeLines,
			MaxFrames: 30,
		},
	}
}

// ParseLayout decodes and validates layout YAML.
func ParseLayout(data []byte) (*Layout, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("invalid YAML format: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// LoadLayout loads the layout file, falling back to DefaultLayout when it does
// not exist.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultLayout(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading layout file: %w", err)
	}

	layout, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing layout file: %w", err)
	}
	return layout, nil
}

// Validate checks required fields and that every column can be plotted.
func (l *Layout) Validate() error {
	if l.LayoutID == "" || l.Version == "" {
		return fmt.Errorf("validation failed: missing required fields (layout_id, version)")
	}
	for _, col := range []string{l.Trajectory.XColumn, l.Trajectory.YColumn, l.Trajectory.ZColumn} {
		if !telemetry.IsPlottableColumn(col) {
			return fmt.Errorf("validation failed: trajectory column %q is not plottable", col)
		}
	}
	seen := make(map[string]bool, len(l.Panels))
	for _, p := range l.Panels {
		if p.PanelID == "" {
			return fmt.Errorf("validation failed: panel without panel_id")
		}
		if seen[p.PanelID] {
			return fmt.Errorf("validation failed: duplicate panel_id %q", p.PanelID)
		}
		seen[p.PanelID] = true
		if len(p.Columns) == 0 {
			return fmt.Errorf("validation failed: panel %q has no columns", p.PanelID)
		}
		for _, col := range p.Columns {
			if !telemetry.IsPlottableColumn(col) {
				return fmt.Errorf("validation failed: panel %q column %q is not plottable", p.PanelID, col)
			}
		}
		if p.Mode != "" && p.Mode != ModeLines && p.Mode != ModeMarkers {
			return fmt.Errorf("validation failed: panel %q mode %q", p.PanelID, p.Mode)
		}
	}
	return nil
}

// GetPanels returns the panels with defaults applied.
func (l *Layout) GetPanels() []PanelMapping {
	result := make([]PanelMapping, 0, len(l.Panels))
	for _, p := range l.Panels {
		result = append(result, applyDefaults(p, l.Defaults))
	}
	return result
}

// GetPanelByID returns a panel with defaults applied.
func (l *Layout) GetPanelByID(panelID string) (PanelMapping, bool) {
	for _, p := range l.Panels {
		if p.PanelID == panelID {
			return applyDefaults(p, l.Defaults), true
		}
	}
	return PanelMapping{}, false
}

// FrameStride is the panel animation stride for a dataset of n records.
func (l *Layout) FrameStride(n int) int {
	maxFrames := l.Defaults.MaxFrames
	if maxFrames <= 0 {
		maxFrames = 30
	}
	if step := n / maxFrames; step > 1 {
		return step
	}
	return 1
}

// applyDefaults merges default values into a panel mapping where fields are empty
func applyDefaults(p PanelMapping, defaults PanelDefaults) PanelMapping {
	result := p
	if result.Mode == "" {
		result.Mode = defaults.Mode
	}
	if result.Mode == "" {
		result.Mode = ModeLines
	}
	if result.YLabel == "" {
		result.YLabel = result.Title
	}
	return result
}
