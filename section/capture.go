package section

import "bytes"

// Span locates a captured body in the scanned text.
type Span struct {
	Start int // Byte offset of the first body byte
	End   int // Byte offset just past the last body byte
	Line  int // 1-based line of the begin marker
}

// Captured is one section body found by a scan.
type Captured struct {
	Name    string
	Content string
	Span    Span
	Known   bool // Whether the caller knew the name when the scan ran

	// LineEnding of the begin marker line, "\n" or "\r\n".
	LineEnding string
}

// Capture is the result of scanning one file.
type Capture struct {
	sections map[string]Captured
	order    []string
}

// Get returns the captured section for name.
func (c *Capture) Get(name string) (Captured, bool) {
	if c == nil {
		return Captured{}, false
	}
	s, ok := c.sections[name]
	return s, ok
}

// Names returns captured names in document order.
func (c *Capture) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Sections returns captured sections in document order.
func (c *Capture) Sections() []Captured {
	if c == nil {
		return nil
	}
	out := make([]Captured, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.sections[name])
	}
	return out
}

// Orphans returns, in document order, the captured names that were not known
// to the caller when the scan ran.
func (c *Capture) Orphans() []string {
	if c == nil {
		return nil
	}
	var orphans []string
	for _, name := range c.order {
		if !c.sections[name].Known {
			orphans = append(orphans, name)
		}
	}
	return orphans
}

// Len returns the number of captured sections.
func (c *Capture) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Scan captures USER CODE sections from text. See Format.Scan.
func Scan(text []byte, known func(name string) bool) (*Capture, error) {
	return UserCode.Scan(text, known)
}

// Scan walks text line by line and captures the body of every marker pair.
// known may be nil, in which case every capture is reported as an orphan.
//
// A line that mentions a BEGIN or END marker for the format without being
// an exact marker line is an error, wherever it appears.
//
// On error the returned Capture is nil: a file that cannot be read
// unambiguously yields nothing rather than a guess.
func (f Format) Scan(text []byte, known func(name string) bool) (*Capture, error) {
	c := &Capture{sections: make(map[string]Captured)}

	var (
		inside    bool
		current   string
		openLine  int
		openAt    int
		openEOL   string
		bodyStart int
	)

	offset := 0
	for lineNum := 1; offset < len(text); lineNum++ {
		lineStart := offset
		line := text[offset:]
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			offset += i + 1
		} else {
			offset = len(text)
		}

		kind, name := f.parse(string(line))
		switch kind {
		case notMarker:
			continue
		case malformedMarker:
			return nil, &ScanError{Err: ErrMalformedMarker, Name: name, Line: lineNum, Offset: lineStart}
		}

		if !inside {
			if kind == endMarker {
				return nil, &ScanError{Err: ErrUnmatchedEnd, Name: name, Line: lineNum, Offset: lineStart}
			}
			if _, dup := c.sections[name]; dup {
				return nil, &ScanError{Err: ErrDuplicateSection, Name: name, Line: lineNum, Offset: lineStart}
			}
			inside, current = true, name
			openLine, openAt, bodyStart = lineNum, lineStart, offset
			openEOL = "\n"
			if bytes.HasSuffix(line, []byte("\r")) {
				openEOL = "\r\n"
			}
			continue
		}

		switch {
		case kind == beginMarker && name == current:
			return nil, &ScanError{Err: ErrDuplicateSection, Name: name, Line: lineNum, Offset: lineStart}
		case kind == beginMarker:
			return nil, &ScanError{Err: ErrUnterminatedSection, Name: current, Line: openLine, Offset: openAt}
		case name != current:
			// An end marker for another name is body text.
			continue
		}

		c.sections[current] = Captured{
			Name:       current,
			Content:    string(text[bodyStart:lineStart]),
			Span:       Span{Start: bodyStart, End: lineStart, Line: openLine},
			Known:      known != nil && known(current),
			LineEnding: openEOL,
		}
		c.order = append(c.order, current)
		inside = false
	}

	if inside {
		return nil, &ScanError{Err: ErrUnterminatedSection, Name: current, Line: openLine, Offset: openAt}
	}
	return c, nil
}
