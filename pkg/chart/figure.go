package chart

// Figure is a Plotly figure description. The page hands it straight to
// Plotly.react, so field names follow Plotly's JSON schema.
type Figure struct {
	ID     string  `json:"id"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace (scatter, scatter3d or surface).
type Trace struct {
	Type         string          `json:"type"`
	Mode         string          `json:"mode,omitempty"`
	Name         string          `json:"name,omitempty"`
	X            any             `json:"x"`
	Y            any             `json:"y"`
	Z            any             `json:"z,omitempty"`
	Text         []string        `json:"text,omitempty"`
	TextPosition string          `json:"textposition,omitempty"`
	Line         *Line           `json:"line,omitempty"`
	Marker       *Marker         `json:"marker,omitempty"`
	Opacity      float64         `json:"opacity,omitempty"`
	ShowScale    *bool           `json:"showscale,omitempty"`
	Colorscale   [][]interface{} `json:"colorscale,omitempty"`
}

// Line styles a trace's line.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Marker styles a trace's points.
type Marker struct {
	Size   float64 `json:"size,omitempty"`
	Color  string  `json:"color,omitempty"`
	Symbol string  `json:"symbol,omitempty"`
}

// Layout is the subset of Plotly layout options the dashboard uses.
type Layout struct {
	Title      string  `json:"title"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	Scene      *Scene  `json:"scene,omitempty"`
	Shapes     []Shape `json:"shapes,omitempty"`
	DragMode   string  `json:"dragmode,omitempty"`
	UIRevision string  `json:"uirevision,omitempty"`
}

// Axis is a 2D or scene axis.
type Axis struct {
	Title string        `json:"title,omitempty"`
	Type  string        `json:"type,omitempty"`
	Range []interface{} `json:"range,omitempty"`
}

// Scene configures the 3D plot.
type Scene struct {
	XAxis  Axis   `json:"xaxis"`
	YAxis  Axis   `json:"yaxis"`
	ZAxis  Axis   `json:"zaxis"`
	Camera Camera `json:"camera"`
}

// Camera positions the 3D view.
type Camera struct {
	Up  Vector3 `json:"up"`
	Eye Vector3 `json:"eye"`
}

// Vector3 is a point in scene coordinates.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Shape is a layout annotation shape, used for the current-time marker.
type Shape struct {
	Type string `json:"type"`
	XRef string `json:"xref"`
	YRef string `json:"yref"`
	X0   any    `json:"x0"`
	X1   any    `json:"x1"`
	Y0   any    `json:"y0"`
	Y1   any    `json:"y1"`
	Line Line   `json:"line"`
}

// Dashboard is everything the page renders for one playback index.
type Dashboard struct {
	Dataset    string   `json:"dataset"`
	Source     string   `json:"source"`
	Records    int      `json:"records"`
	Index      int      `json:"index"`
	Time       string   `json:"time"`
	Elapsed    float64  `json:"elapsed"`
	Playing    bool     `json:"playing"`
	Trajectory Figure   `json:"trajectory"`
	Panels     []Figure `json:"panels"`
}

// Step is one position of an animation slider.
type Step struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// AnimationSteps holds the slider schedules for the trajectory and the panels.
type AnimationSteps struct {
	Trajectory []Step `json:"trajectory"`
	Panels     []Step `json:"panels"`
}
