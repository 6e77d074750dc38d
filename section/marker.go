package section

import (
	"fmt"
	"strings"
)

// Format is a marker convention. The keyword sits between the comment opener
// and BEGIN/END, so different formats never recognise each other's markers.
type Format struct {
	Keyword string
}

var (
	// UserCode marks hand-written regions inside generated files.
	UserCode = Format{Keyword: "USER CODE"}

	// GeneratedCode marks generated regions inside hand-written files.
	GeneratedCode = Format{Keyword: "GENERATED CODE"}
)

const (
	commentOpen  = "/* "
	commentClose = " */"
)

// Begin returns the begin marker for name, without a line terminator.
func (f Format) Begin(name string) string {
	return commentOpen + f.Keyword + " BEGIN " + name + commentClose
}

// End returns the end marker for name, without a line terminator.
func (f Format) End(name string) string {
	return commentOpen + f.Keyword + " END " + name + commentClose
}

// markerKind is what a scanned line turned out to be.
type markerKind int

const (
	notMarker markerKind = iota
	beginMarker
	endMarker
	// malformedMarker mentions BEGIN or END for the keyword without being an
	// exact marker line.
	malformedMarker
)

// parse classifies a single line (without its '\n'). For a malformed marker
// the returned text is the trimmed line.
func (f Format) parse(line string) (markerKind, string) {
	s := strings.TrimSpace(line)
	if kind, name := f.exact(s); kind != notMarker {
		return kind, name
	}
	if f.nearMiss(s) {
		return malformedMarker, s
	}
	return notMarker, ""
}

func (f Format) exact(s string) (markerKind, string) {
	if !strings.HasPrefix(s, commentOpen) || !strings.HasSuffix(s, commentClose) {
		return notMarker, ""
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, commentOpen), commentClose)

	s, ok := strings.CutPrefix(s, f.Keyword+" ")
	if !ok {
		return notMarker, ""
	}

	kind := notMarker
	if rest, ok := strings.CutPrefix(s, "BEGIN "); ok {
		kind, s = beginMarker, rest
	} else if rest, ok := strings.CutPrefix(s, "END "); ok {
		kind, s = endMarker, rest
	}
	if kind == notMarker || ValidateName(s) != nil {
		return notMarker, ""
	}
	return kind, s
}

// nearMiss reports whether s contains "<Keyword> BEGIN" or "<Keyword> END",
// ignoring case and runs of whitespace.
func (f Format) nearMiss(s string) bool {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	keyword := strings.ToUpper(f.Keyword)
	return strings.Contains(norm, keyword+" BEGIN") || strings.Contains(norm, keyword+" END")
}

// ValidateName reports whether name can be written as a marker.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	for _, word := range strings.Split(name, " ") {
		if word == "" {
			return fmt.Errorf("%w: '%s' has leading, trailing or repeated spaces", ErrInvalidName, name)
		}
		for _, r := range word {
			if !isNameRune(r) {
				return fmt.Errorf("%w: '%s' contains %q", ErrInvalidName, name, r)
			}
		}
	}
	return nil
}

// ValidateDescription reports whether description can be written inside a
// one-line C comment.
func ValidateDescription(description string) error {
	if strings.ContainsAny(description, "\r\n") || strings.Contains(description, "*/") {
		return fmt.Errorf("%w: description %q must be one line without \"*/\"", ErrInvalidDescription, description)
	}
	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	}
	return false
}
