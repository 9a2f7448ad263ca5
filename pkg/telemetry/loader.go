package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The flight computer writes milliseconds after a colon: 12:30:01:250.
var millisColon = regexp.MustCompile(`:(\d{3})$`)

// Fractional seconds are accepted by time.Parse even without a layout hint.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// allowedUploadTypes are the content types browsers send for .csv files.
var allowedUploadTypes = []string{
	"",
	"text/csv",
	"text/x-csv",
	"text/comma-separated-values",
	"text/plain",
	"application/csv",
	"application/x-csv",
	"application/vnd.ms-excel",
	"application/octet-stream",
}

// ValidateUpload rejects anything that is not a .csv file.
func ValidateUpload(filename, contentType string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return fmt.Errorf("%w: %q (expected .csv)", ErrUnsupportedFileType, filename)
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, t := range allowedUploadTypes {
		if mediaType == t {
			return nil
		}
	}
	return fmt.Errorf("%w: content type %q", ErrUnsupportedFileType, contentType)
}

// Parse reads a CSV flight recording into a Dataset.
// Either every row converts or an error is returned; there is no partial result.
func Parse(name string, source Source, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedCSV, err)
	}

	columns := make([]string, len(header))
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		columns[i] = h
		pos[h] = i
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var valveCols []string
	for _, c := range columns {
		if IsValveColumn(c) {
			valveCols = append(valveCols, c)
		}
	}

	var records []Record
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedCSV, row, err)
		}

		rec, err := parseRecord(row, fields, pos, valveCols)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	start := records[0].Time
	for i := range records {
		records[i].Elapsed = records[i].Time.Sub(start).Seconds()
	}

	return &Dataset{
		Name:     name,
		Source:   source,
		Columns:  columns,
		Records:  records,
		LoadedAt: time.Now(),
	}, nil
}

func parseRecord(row int, fields []string, pos map[string]int, valveCols []string) (Record, error) {
	var rec Record

	field := func(col string) string {
		return strings.TrimSpace(fields[pos[col]])
	}

	ts, err := parseTimestamp(field(ColDate), field(ColTime))
	if err != nil {
		return rec, &ParseError{Row: row, Column: ColTime, Value: field(ColDate) + " " + field(ColTime), Err: err}
	}
	rec.Time = ts

	targets := []struct {
		col string
		dst *float64
	}{
		{ColLat, &rec.Lat},
		{ColLon, &rec.Lon},
		{ColGPSAlt, &rec.GPSAlt},
		{ColAlt, &rec.Alt},
		{ColAccX, &rec.AccX},
		{ColAccY, &rec.AccY},
		{ColAccZ, &rec.AccZ},
		{ColEuX, &rec.EuX},
		{ColEuY, &rec.EuY},
		{ColEuZ, &rec.EuZ},
	}
	for _, t := range targets {
		raw := field(t.col)
		v, err := parseFloat(raw)
		if err != nil {
			return rec, &ParseError{Row: row, Column: t.col, Value: raw, Err: err}
		}
		*t.dst = v
	}

	rec.Valves = make(map[string]float64, len(valveCols))
	for _, col := range valveCols {
		raw := field(col)
		v, err := parseValve(raw)
		if err != nil {
			return rec, &ParseError{Row: row, Column: col, Value: raw, Err: err}
		}
		rec.Valves[col] = v
	}

	state := rec.Valves[ColValveState]
	if state != math.Trunc(state) {
		raw := field(ColValveState)
		return rec, &ParseError{Row: row, Column: ColValveState, Value: raw, Err: errors.New("valve state must be a whole number")}
	}
	rec.ValveState = int(state)

	return rec, nil
}

func parseTimestamp(date, clock string) (time.Time, error) {
	clock = millisColon.ReplaceAllString(clock, ".$1")
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, date+" "+clock, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// parseValve accepts numeric states and boolean spellings.
func parseValve(raw string) (float64, error) {
	switch strings.ToLower(raw) {
	case "true", "open", "on":
		return 1, nil
	case "false", "closed", "off":
		return 0, nil
	}
	return parseFloat(raw)
}
