package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "date,time,lat,lon,gps_alt,alt,acc_x,acc_y,acc_z,eu_x,eu_y,eu_z,valve_state"

func csvRows(n int) string {
	var b strings.Builder
	b.WriteString(testHeader + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2024-06-14,12:30:%02d:%03d,32.99,-106.97,%d,%d,0.1,0.2,%d,1,2,3,%d\n",
			i/20, (i%20)*50, 1400+i, i*2, 40-i, i%3)
	}
	return b.String()
}

func TestParseRowCountMatchesInput(t *testing.T) {
	for _, n := range []int{1, 2, 17, 240} {
		ds, err := Parse("flight", SourceUpload, strings.NewReader(csvRows(n)))
		require.NoError(t, err)
		assert.Equal(t, n, ds.Len(), "rows=%d", n)
		assert.Equal(t, SourceUpload, ds.Source)
	}
}

func TestParseFixesMillisecondColon(t *testing.T) {
	ds, err := Parse("flight", SourceUpload, strings.NewReader(csvRows(3)))
	require.NoError(t, err)

	want := time.Date(2024, 6, 14, 12, 30, 0, 50*int(time.Millisecond), time.UTC)
	assert.Equal(t, want, ds.Records[1].Time)
	assert.InDelta(t, 0.05, ds.Records[1].Elapsed, 1e-9)
	assert.InDelta(t, 0.10, ds.Records[2].Elapsed, 1e-9)
}

func TestParseAcceptsDotMillisAndReorderedColumns(t *testing.T) {
	input := "valve_state,eu_z,eu_y,eu_x,acc_z,acc_y,acc_x,alt,gps_alt,lon,lat,time,date,notes\n" +
		"1,3,2,1,9.8,0,0,10,1410,-106.9,32.9,12:00:01.500,2024/06/14,ok\n"

	ds, err := Parse("reordered", SourceUpload, strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	rec := ds.Records[0]
	assert.Equal(t, 1, rec.ValveState)
	assert.Equal(t, 1410.0, rec.GPSAlt)
	assert.Equal(t, 9.8, rec.AccZ)
	assert.Equal(t, 500*int(time.Millisecond), rec.Time.Nanosecond())
}

func TestParseMissingColumn(t *testing.T) {
	input := strings.Replace(csvRows(2), ",gps_alt", ",altitude_gps", 1)

	_, err := Parse("broken", SourceUpload, strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "gps_alt")
	assert.True(t, IsUserError(err))
}

func TestParseInvalidNumber(t *testing.T) {
	input := testHeader + "\n" +
		"2024-06-14,12:30:00:000,32.99,-106.97,1400,0,0.1,0.2,40,1,2,3,0\n" +
		"2024-06-14,12:30:00:050,32.99,-106.97,1400,high,0.1,0.2,40,1,2,3,0\n"

	_, err := Parse("broken", SourceUpload, strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Row)
	assert.Equal(t, ColAlt, perr.Column)
	assert.Equal(t, "high", perr.Value)
}

func TestParseRejectsNaNAndFractionalValveState(t *testing.T) {
	nan := testHeader + "\n2024-06-14,12:30:00:000,NaN,-106.97,1400,0,0.1,0.2,40,1,2,3,0\n"
	_, err := Parse("nan", SourceUpload, strings.NewReader(nan))
	assert.True(t, errors.Is(err, ErrInvalidValue))

	frac := testHeader + "\n2024-06-14,12:30:00:000,32.9,-106.97,1400,0,0.1,0.2,40,1,2,3,1.5\n"
	_, err = Parse("frac", SourceUpload, strings.NewReader(frac))
	assert.True(t, errors.Is(err, ErrInvalidValue))
}

func TestParseBadTimestamp(t *testing.T) {
	input := testHeader + "\n2024-06-14,noon,32.99,-106.97,1400,0,0.1,0.2,40,1,2,3,0\n"

	_, err := Parse("broken", SourceUpload, strings.NewReader(input))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ColTime, perr.Column)
}

func TestParseEmptyInputs(t *testing.T) {
	_, err := Parse("empty", SourceUpload, strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	_, err = Parse("header-only", SourceUpload, strings.NewReader(testHeader+"\n"))
	assert.True(t, errors.Is(err, ErrEmptyDataset))
}

func TestParseRaggedRow(t *testing.T) {
	input := testHeader + "\n2024-06-14,12:30:00:000,32.99,-106.97\n"

	_, err := Parse("ragged", SourceUpload, strings.NewReader(input))
	assert.True(t, errors.Is(err, ErrMalformedCSV))
}

func TestParseValveColumns(t *testing.T) {
	input := testHeader + ",valve_vent,valve_main\n" +
		"2024-06-14,12:30:00:000,32.99,-106.97,1400,0,0.1,0.2,40,1,2,3,2,open,false\n"

	ds, err := Parse("valves", SourceUpload, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"valve_state", "valve_vent", "valve_main"}, ds.ValveColumns())
	v, ok := ds.Records[0].Value("valve_vent")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	v, _ = ds.Records[0].Value("valve_main")
	assert.Equal(t, 0.0, v)
	v, _ = ds.Records[0].Value(ColValveState)
	assert.Equal(t, 2.0, v)
}

func TestDatasetSeriesAndClamp(t *testing.T) {
	ds, err := Parse("flight", SourceUpload, strings.NewReader(csvRows(10)))
	require.NoError(t, err)

	assert.Equal(t, 0, ds.Clamp(-4))
	assert.Equal(t, 9, ds.Clamp(99))
	assert.Len(t, ds.Series(ColAlt, 4), 5)
	assert.Len(t, ds.Series(ColAlt, 1000), 10)
	assert.Len(t, ds.Times(0), 1)

	lo, hi := ds.Bounds(ColGPSAlt)
	assert.Equal(t, 1400.0, lo)
	assert.Equal(t, 1409.0, hi)

	v, ok := ds.Value(50, ColAlt)
	assert.True(t, ok)
	assert.Equal(t, 18.0, v)
	_, ok = ds.Value(0, "thrust")
	assert.False(t, ok)

	var empty *Dataset
	_, ok = empty.Value(0, ColAlt)
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, empty.Clamp(5))
}

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload("flight.csv", "text/csv"))
	assert.NoError(t, ValidateUpload("FLIGHT.CSV", "application/vnd.ms-excel"))
	assert.NoError(t, ValidateUpload("flight.csv", ""))

	for _, ct := range []string{"text/x-csv", "application/x-csv", "text/comma-separated-values", "text/csv; charset=utf-8"} {
		assert.NoError(t, ValidateUpload("launch.csv", ct), ct)
	}

	err := ValidateUpload("flight.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))

	err = ValidateUpload("flight.csv", "image/png")
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
}
