package chart

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rocket-telemetry/dashboard/pkg/config"
	"github.com/rocket-telemetry/dashboard/pkg/telemetry"
)

// ErrUnknownPanel is returned for a panel id the layout does not define.
var ErrUnknownPanel = errors.New("unknown panel")

// Default PNG size for the "all data" graphs.
const (
	DefaultPNGWidth  = 900
	DefaultPNGHeight = 360
)

// pointStyle draws markers only, for valve-like step data.
func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// RenderPNG draws the whole-flight graph for one panel. The x axis is
// elapsed seconds since the first record.
func (b *Builder) RenderPNG(w io.Writer, ds *telemetry.Dataset, panelID string, width, height int) error {
	if ds.Len() == 0 {
		return telemetry.ErrNoDataset
	}
	p, ok := b.layout.GetPanelByID(panelID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, panelID)
	}
	if width <= 0 {
		width = DefaultPNGWidth
	}
	if height <= 0 {
		height = DefaultPNGHeight
	}

	last := ds.Len() - 1
	xs := ds.Series(telemetry.ColElapsed, last)

	var series []gochart.Series
	yMin, yMax := 0.0, 0.0
	haveY := false
	for i, col := range p.Columns {
		if !ds.HasColumn(col) {
			continue
		}
		ys := ds.Series(col, last)
		lo, hi := ds.Bounds(col)
		if !haveY || lo < yMin {
			yMin = lo
		}
		if !haveY || hi > yMax {
			yMax = hi
		}
		haveY = true

		color := drawing.ColorFromHex(strings.TrimPrefix(palette[i%len(palette)], "#"))
		st := lineStyle(color)
		if p.Mode == config.ModeMarkers {
			st = pointStyle(color)
		}

		sx, sy := xs, ys
		// Pad to at least two X values for go-chart
		if len(sx) == 1 {
			sx = []float64{xs[0], xs[0] + 1}
			sy = []float64{ys[0], ys[0]}
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    col,
			XValues: sx,
			YValues: sy,
			Style:   st,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("panel %q: %w", panelID, telemetry.ErrMissingColumn)
	}

	// go-chart refuses a zero-height range
	if yMax <= yMin {
		yMin, yMax = yMin-1, yMax+1
	}
	xMax := xs[len(xs)-1]
	if xMax <= 0 {
		xMax = 1
	}

	ch := gochart.Chart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 12, Bottom: 28}},
		XAxis:      gochart.XAxis{Name: "Elapsed (s)", Range: &gochart.ContinuousRange{Min: 0, Max: xMax}},
		YAxis:      gochart.YAxis{Name: p.YLabel, Range: &gochart.ContinuousRange{Min: yMin, Max: yMax}},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render panel %q: %w", panelID, err)
	}
	return nil
}
