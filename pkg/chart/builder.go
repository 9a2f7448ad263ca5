// Package chart turns a telemetry dataset and a playback index into chart
// figures. Builder methods are pure: output depends only on the
// layout, the dataset and the index.
package chart

import (
	"fmt"
	"time"

	"github.com/rocket-telemetry/dashboard/pkg/config"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
)

// Trace names in the trajectory figure.
const (
	TraceGround = "Ground"
	TracePath   = "Rocket Path"
	TraceRocket = "Rocket"
)

const timeLabelLayout = "15:04:05"

// Plotly accepts ISO-like strings for date axes.
const plotlyTimeLayout = "2006-01-02 15:04:05.000"

// palette follows Plotly's default colour cycle.
var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

// Builder maps dataset columns onto figures according to a layout.
type Builder struct {
	layout *config.Layout
}

// NewBuilder creates a builder; a nil layout means the default one.
func NewBuilder(layout *config.Layout) *Builder {
	if layout == nil {
		layout = config.DefaultLayout()
	}
	return &Builder{layout: layout}
}

// Layout returns the layout the builder was created with.
func (b *Builder) Layout() *config.Layout {
	return b.layout
}

// Build renders the dashboard for index, clamped to the dataset bounds.
func (b *Builder) Build(ds *telemetry.Dataset, index int) (Dashboard, error) {
	if ds.Len() == 0 {
		return Dashboard{}, telemetry.ErrNoDataset
	}
	index = ds.Clamp(index)
	rec := ds.At(index)

	d := Dashboard{
		Dataset:    ds.Name,
		Source:     string(ds.Source),
		Records:    ds.Len(),
		Index:      index,
		Time:       rec.Time.Format(timeLabelLayout),
		Elapsed:    rec.Elapsed,
		Trajectory: b.Trajectory(ds, index),
	}

	for _, p := range b.layout.GetPanels() {
		d.Panels = append(d.Panels, b.Panel(ds, p, index))
	}
	return d, nil
}

// Trajectory renders the 3D path up to and including index, the rocket
// marker at index, and a ground plane under the whole flight.
func (b *Builder) Trajectory(ds *telemetry.Dataset, index int) Figure {
	t := b.layout.Trajectory
	index = ds.Clamp(index)

	xMin, xMax := ds.Bounds(t.XColumn)
	yMin, yMax := ds.Bounds(t.YColumn)
	zMin, _ := ds.Bounds(t.ZColumn)
	ground := zMin - t.GroundOffset

	noScale := false
	rec := ds.At(index)
	mx, _ := rec.Value(t.XColumn)
	my, _ := rec.Value(t.YColumn)
	mz, _ := rec.Value(t.ZColumn)

	return Figure{
		ID: "trajectory",
		Data: []Trace{
			{
				Type:       "surface",
				Name:       TraceGround,
				X:          [][]float64{{xMin, xMax}, {xMin, xMax}},
				Y:          [][]float64{{yMin, yMin}, {yMax, yMax}},
				Z:          [][]float64{{ground, ground}, {ground, ground}},
				Opacity:    0.3,
				ShowScale:  &noScale,
				Colorscale: [][]interface{}{{0, "green"}, {1, "darkgreen"}},
			},
			{
				Type: "scatter3d",
				Mode: "lines",
				Name: TracePath,
				X:    ds.Series(t.XColumn, index),
				Y:    ds.Series(t.YColumn, index),
				Z:    ds.Series(t.ZColumn, index),
				Line: &Line{Color: "blue", Width: 4},
			},
			{
				Type:         "scatter3d",
				Mode:         "text+markers",
				Name:         TraceRocket,
				X:            []float64{mx},
				Y:            []float64{my},
				Z:            []float64{mz},
				Text:         []string{"🚀"},
				TextPosition: "middle center",
				Marker:       &Marker{Size: 4, Color: "red", Symbol: "circle"},
			},
		},
		Layout: Layout{
			Title: t.Title,
			Scene: &Scene{
				XAxis: Axis{Title: t.XTitle},
				YAxis: Axis{Title: t.YTitle},
				ZAxis: Axis{Title: t.ZTitle},
				Camera: Camera{
					Up:  Vector3{X: 0, Y: 0, Z: 1},
					Eye: Vector3{X: 3, Y: 0.3, Z: 0.3},
				},
			},
			DragMode:   "turntable",
			UIRevision: ds.Name,
		},
	}
}

// Panel renders one 2D time series truncated at index, with a vertical line
// at the current record's time. Columns the dataset lacks (optional valve
// flags) are left out.
func (b *Builder) Panel(ds *telemetry.Dataset, p config.PanelMapping, index int) Figure {
	index = ds.Clamp(index)

	times := ds.Times(index)
	xs := make([]string, len(times))
	for i, ts := range times {
		xs[i] = ts.Format(plotlyTimeLayout)
	}

	fig := Figure{
		ID:   p.PanelID,
		Data: []Trace{},
		Layout: Layout{
			Title:      p.Title,
			XAxis:      &Axis{Title: "Time", Type: "date", Range: timeRange(ds)},
			YAxis:      &Axis{Title: p.YLabel},
			UIRevision: ds.Name,
		},
	}

	for i, col := range p.Columns {
		if !ds.HasColumn(col) {
			continue
		}
		tr := Trace{
			Type: "scatter",
			Mode: p.Mode,
			Name: col,
			X:    xs,
			Y:    ds.Series(col, index),
		}
		color := palette[i%len(palette)]
		if p.Mode == config.ModeMarkers {
			tr.Marker = &Marker{Size: 6, Color: color}
		} else {
			tr.Line = &Line{Color: color, Width: 2}
		}
		fig.Data = append(fig.Data, tr)
	}

	now := xs[len(xs)-1]
	fig.Layout.Shapes = []Shape{{
		Type: "line",
		XRef: "x",
		YRef: "paper",
		X0:   now,
		X1:   now,
		Y0:   0,
		Y1:   1,
		Line: Line{Color: "red", Width: 1, Dash: "dot"},
	}}
	return fig
}

// timeRange pins the x axis to the whole flight so the view does not jump
// while the series grows.
func timeRange(ds *telemetry.Dataset) []interface{} {
	first := ds.Records[0].Time
	last := ds.Records[ds.Len()-1].Time
	if !last.After(first) {
		last = first.Add(time.Second)
	}
	return []interface{}{first.Format(plotlyTimeLayout), last.Format(plotlyTimeLayout)}
}

// AnimationSteps returns the slider schedules: trajectory frames every
// FrameStep records from FrameStart, labelled in milliseconds, and panel
// frames at FrameStride, labelled with the record time. A dataset no longer
// than FrameStart has no trajectory frames.
func (b *Builder) AnimationSteps(ds *telemetry.Dataset) AnimationSteps {
	t := b.layout.Trajectory
	n := ds.Len()
	steps := AnimationSteps{Trajectory: []Step{}, Panels: []Step{}}

	start, stride := t.FrameStart, t.FrameStep
	if stride <= 0 {
		stride = 1
	}
	if start < 0 {
		start = 0
	}
	for k := start; k < n; k += stride {
		steps.Trajectory = append(steps.Trajectory, Step{
			Index: k,
			Label: fmt.Sprintf("%d ms", k*t.FrameLabelMs),
		})
	}

	panelStride := b.layout.FrameStride(n)
	for k := panelStride; k <= n; k += panelStride {
		steps.Panels = append(steps.Panels, Step{
			Index: k - 1,
			Label: ds.Records[k-1].Time.Format(timeLabelLayout),
		})
	}
	return steps
}
