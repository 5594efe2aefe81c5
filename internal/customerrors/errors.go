package customerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the upload pipeline. Match them with errors.Is.
var (
	ErrBadExtension   = errors.New("file must be a CSV")
	ErrMissingColumns = errors.New("missing required columns")
	ErrParseFailure   = errors.New("cell could not be parsed")
	ErrMalformedFile  = errors.New("file is not valid delimited text")
	ErrUploadTooLarge = errors.New("upload exceeds the maximum allowed size")
)

// MissingColumnsError reports a schema validation failure
type MissingColumnsError struct {
	Label    string
	Required []string
	Found    []string
	Missing  []string
}

func (e *MissingColumnsError) Error() string {
	msg := fmt.Sprintf("%s CSV must contain columns: %s. Found: %s",
		e.Label, strings.Join(e.Required, ", "), strings.Join(e.Found, ", "))
	if len(e.Missing) > 0 {
		msg += ". Missing: " + strings.Join(e.Missing, ", ")
	}
	return msg
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// ParseError locates a cell that failed to parse. Row is the 1-based data row, header excluded.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Type   string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("row %d: column %s: cannot parse %q as %s", e.Row, e.Column, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SideError tags an error with the upload it came from in a combined request
type SideError struct {
	Side string
	Err  error
}

func (e *SideError) Error() string {
	return e.Side + " file: " + e.Err.Error()
}

func (e *SideError) Unwrap() error {
	return e.Err
}

// Malformed wraps err as ErrMalformedFile
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFile, fmt.Sprintf(format, args...))
}

// Side returns the side name recorded in err, if any
func Side(err error) (string, bool) {
	var se *SideError
	if errors.As(err, &se) {
		return se.Side, true
	}
	return "", false
}
