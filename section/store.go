package section

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Origin says where a resolved body came from.
type Origin int

const (
	OriginEmpty Origin = iota
	OriginDefault
	OriginCaptured
)

// String returns the lower-case origin name.
func (o Origin) String() string {
	switch o {
	case OriginCaptured:
		return "captured"
	case OriginDefault:
		return "default"
	default:
		return "empty"
	}
}

// Resolved is the body a section will be emitted with.
type Resolved struct {
	Name    string
	Content string
	Origin  Origin
}

// Store merges a registry with the sections captured from a previous file.
type Store struct {
	registry *Registry
	format   Format
	capture  *Capture
}

// NewStore creates a store for USER CODE sections registered in reg.
func NewStore(reg *Registry) *Store {
	return NewStoreWithFormat(reg, UserCode)
}

// NewStoreWithFormat creates a store that scans and emits with format.
func NewStoreWithFormat(reg *Registry, format Format) *Store {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Store{
		registry: reg,
		format:   format,
		capture:  &Capture{sections: make(map[string]Captured)},
	}
}

// Registry returns the registry the store resolves against.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Format returns the marker format used by the store.
func (s *Store) Format() Format {
	return s.format
}

// CaptureFrom scans text and replaces any earlier capture. On error the
// earlier capture is kept.
func (s *Store) CaptureFrom(text []byte) (*Capture, error) {
	c, err := s.format.Scan(text, s.registry.IsDefined)
	if err != nil {
		return nil, err
	}
	s.capture = c
	return c, nil
}

// CaptureFile captures from the file at path. A missing file is a first
// generation and clears earlier captures.
func (s *Store) CaptureFile(path string) (*Capture, error) {
	text, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.CaptureFrom(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	c, err := s.CaptureFrom(text)
	if err != nil {
		return nil, fmt.Errorf("failed to capture user sections from %s: %w", path, err)
	}
	return c, nil
}

// Captured returns the captured body for name, registered or not.
func (s *Store) Captured(name string) (Captured, bool) {
	return s.capture.Get(name)
}

// Orphans returns captured names that were not registered when the capture
// ran. Their bodies are never resolved; register the name before capturing
// to keep one.
func (s *Store) Orphans() []string {
	return s.capture.Orphans()
}

// Resolve picks the body for a registered section: captured, else default,
// else empty. A body only counts as captured if the name was registered
// before the capture ran.
func (s *Store) Resolve(name string) (Resolved, error) {
	def, ok := s.registry.Lookup(name)
	if !ok {
		return Resolved{}, unknownSection(name)
	}

	if c, ok := s.capture.Get(name); ok && c.Known {
		return Resolved{Name: name, Content: c.Content, Origin: OriginCaptured}, nil
	}
	if def.HasDefault {
		return Resolved{Name: name, Content: def.Default, Origin: OriginDefault}, nil
	}
	return Resolved{Name: name, Origin: OriginEmpty}, nil
}

// Content is Resolve without the origin.
func (s *Store) Content(name string) (string, error) {
	r, err := s.Resolve(name)
	return r.Content, err
}
