package telemetry

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn       = errors.New("missing required column")
	ErrInvalidValue        = errors.New("invalid value")
	ErrMalformedCSV        = errors.New("malformed csv")
	ErrEmptyDataset        = errors.New("no data found in dataset")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnknownDataset      = errors.New("unknown dataset")
	ErrNoDataset           = errors.New("no dataset loaded")
)

// ParseError locates a field that could not be converted.
// Row is the 1-based data row, not counting the header.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

// Unwrap lets errors.Is match ErrInvalidValue.
func (e *ParseError) Unwrap() error {
	return ErrInvalidValue
}

// IsUserError reports whether err was caused by the dataset contents rather
// than by the server.
func IsUserError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrMalformedCSV) ||
		errors.Is(err, ErrEmptyDataset)
}
