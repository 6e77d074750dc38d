package section

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrDuplicateSection is returned when a name is registered twice, or when
	// a scanned file opens the same section twice.
	ErrDuplicateSection = errors.New("duplicate user section")

	// ErrUnterminatedSection is returned when a begin marker has no matching
	// end marker before the next begin marker or end of file.
	ErrUnterminatedSection = errors.New("unterminated user section")

	// ErrUnmatchedEnd is returned when an end marker appears outside any section.
	ErrUnmatchedEnd = errors.New("user section end without begin")

	// ErrUnknownSection is returned when resolving or emitting a name that was
	// never registered.
	ErrUnknownSection = errors.New("unknown user section")

	// ErrMalformedMarker is returned for a line that looks like a marker but
	// is not one, such as a marker followed by other text.
	ErrMalformedMarker = errors.New("malformed user section marker")

	// ErrInvalidName is returned when a name cannot be written as a marker.
	ErrInvalidName = errors.New("invalid user section name")

	// ErrInvalidDescription is returned when a description would break the
	// comment it is written in.
	ErrInvalidDescription = errors.New("invalid user section description")
)

// ScanError reports where a scan failed.
type ScanError struct {
	Err    error  // One of the sentinel errors
	Name   string // Section the error is about, or the malformed line
	Line   int    // 1-based line of the offending marker
	Offset int    // Byte offset of the offending marker line
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("line %d: %v '%s'", e.Line, e.Err, e.Name)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

func unknownSection(name string) error {
	return fmt.Errorf("%w: '%s'", ErrUnknownSection, name)
}
