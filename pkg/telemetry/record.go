package telemetry

import (
	"math"
	"strings"
	"time"
)

// Source tells where a Dataset came from.
type Source string

const (
	SourceBundled Source = "bundled"
	SourceUpload  Source = "upload"
)

// Column names of the flight recorder CSV export.
const (
	ColDate       = "date"
	ColTime       = "time"
	ColLat        = "lat"
	ColLon        = "lon"
	ColGPSAlt     = "gps_alt"
	ColAlt        = "alt"
	ColAccX       = "acc_x"
	ColAccY       = "acc_y"
	ColAccZ       = "acc_z"
	ColEuX        = "eu_x"
	ColEuY        = "eu_y"
	ColEuZ        = "eu_z"
	ColValveState = "valve_state"

	// ColElapsed is derived, not read from the file.
	ColElapsed = "elapsed"
)

// valvePrefix marks every column treated as a valve flag.
const valvePrefix = "valve"

// RequiredColumns is the header every dataset must carry. Order does not matter.
var RequiredColumns = []string{
	ColDate, ColTime,
	ColLat, ColLon, ColGPSAlt,
	ColAlt,
	ColAccX, ColAccY, ColAccZ,
	ColEuX, ColEuY, ColEuZ,
	ColValveState,
}

// numericColumns are the plottable float columns of a Record.
var numericColumns = []string{
	ColLat, ColLon, ColGPSAlt, ColAlt,
	ColAccX, ColAccY, ColAccZ,
	ColEuX, ColEuY, ColEuZ,
	ColElapsed,
}

// IsPlottableColumn reports whether column can be used as a chart series.
func IsPlottableColumn(column string) bool {
	if IsValveColumn(column) {
		return true
	}
	for _, c := range numericColumns {
		if c == column {
			return true
		}
	}
	return false
}

// IsValveColumn reports whether column holds a valve flag.
func IsValveColumn(column string) bool {
	return strings.HasPrefix(column, valvePrefix)
}

// Record is one timestamped row of rocket sensor and state data.
type Record struct {
	Time    time.Time `json:"time"`
	Elapsed float64   `json:"elapsed"` // seconds since the first record

	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	GPSAlt float64 `json:"gps_alt"` // metres, GPS
	Alt    float64 `json:"alt"`     // metres, barometric

	AccX float64 `json:"acc_x"` // m/s²
	AccY float64 `json:"acc_y"`
	AccZ float64 `json:"acc_z"`

	EuX float64 `json:"eu_x"` // Euler angles, degrees
	EuY float64 `json:"eu_y"`
	EuZ float64 `json:"eu_z"`

	ValveState int                `json:"valve_state"`
	Valves     map[string]float64 `json:"valves,omitempty"` // every valve* column, valve_state included
}

// Value returns the named column of the record.
func (r *Record) Value(column string) (float64, bool) {
	switch column {
	case ColLat:
		return r.Lat, true
	case ColLon:
		return r.Lon, true
	case ColGPSAlt:
		return r.GPSAlt, true
	case ColAlt:
		return r.Alt, true
	case ColAccX:
		return r.AccX, true
	case ColAccY:
		return r.AccY, true
	case ColAccZ:
		return r.AccZ, true
	case ColEuX:
		return r.EuX, true
	case ColEuY:
		return r.EuY, true
	case ColEuZ:
		return r.EuZ, true
	case ColElapsed:
		return r.Elapsed, true
	case ColValveState:
		return float64(r.ValveState), true
	}
	v, ok := r.Valves[column]
	return v, ok
}

// Dataset is an ordered sequence of Records representing one flight.
// It is immutable once parsed and may be shared between sessions.
type Dataset struct {
	Name     string    `json:"name"`
	Source   Source    `json:"source"`
	Columns  []string  `json:"columns"`
	Records  []Record  `json:"-"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Clamp bounds i to [0, Len()-1]. An empty dataset clamps to 0.
func (d *Dataset) Clamp(i int) int {
	if i >= d.Len() {
		i = d.Len() - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// At returns the record at the clamped index.
func (d *Dataset) At(i int) Record {
	return d.Records[d.Clamp(i)]
}

// Value returns column of the record at the clamped index.
func (d *Dataset) Value(i int, column string) (float64, bool) {
	if d.Len() == 0 {
		return 0, false
	}
	rec := d.At(i)
	return rec.Value(column)
}

// HasColumn reports whether the dataset can serve column.
func (d *Dataset) HasColumn(column string) bool {
	if column == ColElapsed {
		return true
	}
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Series returns column values for records [0, upTo], upTo inclusive.
func (d *Dataset) Series(column string, upTo int) []float64 {
	if d.Len() == 0 {
		return nil
	}
	upTo = d.Clamp(upTo)
	out := make([]float64, 0, upTo+1)
	for i := 0; i <= upTo; i++ {
		v, _ := d.Records[i].Value(column)
		out = append(out, v)
	}
	return out
}

// Times returns record timestamps for [0, upTo], upTo inclusive.
func (d *Dataset) Times(upTo int) []time.Time {
	if d.Len() == 0 {
		return nil
	}
	upTo = d.Clamp(upTo)
	out := make([]time.Time, 0, upTo+1)
	for i := 0; i <= upTo; i++ {
		out = append(out, d.Records[i].Time)
	}
	return out
}

// Bounds returns the minimum and maximum of column over the whole dataset.
func (d *Dataset) Bounds(column string) (min, max float64) {
	if d.Len() == 0 {
		return 0, 0
	}
	min, max = math.Inf(1), math.Inf(-1)
	for i := range d.Records {
		v, _ := d.Records[i].Value(column)
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max
}

// ValveColumns lists the valve flag columns in header order.
func (d *Dataset) ValveColumns() []string {
	var out []string
	for _, c := range d.Columns {
		if IsValveColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// Duration is the time span between the first and last record.
func (d *Dataset) Duration() time.Duration {
	if d.Len() < 2 {
		return 0
	}
	return d.Records[d.Len()-1].Time.Sub(d.Records[0].Time)
}
