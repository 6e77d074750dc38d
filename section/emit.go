package section

import (
	"io"
	"strings"
)

// Emit writes a registered section to w: begin marker, resolved body, end
// marker, each marker on its own line.
func (s *Store) Emit(w io.Writer, name string) error {
	return s.EmitIndented(w, name, "")
}

// EmitIndented is Emit with indent in front of both marker lines. The body is
// written as is; a non-empty body without a trailing newline gets one so the
// end marker starts a line. Marker lines of a captured section keep the line
// ending its begin marker had; all other marker lines end in "\n".
func (s *Store) EmitIndented(w io.Writer, name, indent string) error {
	r, err := s.Resolve(name)
	if err != nil {
		return err
	}

	eol := "\n"
	if r.Origin == OriginCaptured {
		if c, ok := s.capture.Get(name); ok && c.LineEnding != "" {
			eol = c.LineEnding
		}
	}

	var b strings.Builder
	b.Grow(len(r.Content) + 2*(len(indent)+len(name)+32))

	b.WriteString(indent)
	b.WriteString(s.format.Begin(name))
	b.WriteString(eol)
	b.WriteString(terminated(r.Content))
	b.WriteString(indent)
	b.WriteString(s.format.End(name))
	b.WriteString(eol)

	_, err = io.WriteString(w, b.String())
	return err
}

// Block returns what Emit would write.
func (s *Store) Block(name string) (string, error) {
	var b strings.Builder
	if err := s.Emit(&b, name); err != nil {
		return "", err
	}
	return b.String(), nil
}
