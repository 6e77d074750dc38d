package generator

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// DiffOptions configures diff output. Zero values mean defaults.
type DiffOptions struct {
	// ContextLines is the number of unchanged lines around each change.
	// Default: 3
	ContextLines int

	// TabWidth is the number of spaces a tab expands to.
	// Default: 4
	TabWidth int

	// Width truncates long lines. 0 uses the terminal width, or no limit when
	// stdout is not a terminal.
	Width int
}

// maxDiffLines guards against quadratic blowups on huge files.
const maxDiffLines = 10000

var (
	diffHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	diffHunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	diffAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	diffRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
)

type editKind int

const (
	editEqual editKind = iota
	editInsert
	editDelete
)

// edit is one line of an edit script. oldPos/newPos are the 0-based
// positions in each file just before this line.
type edit struct {
	kind   editKind
	text   string
	oldPos int
	newPos int
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	edits              []edit
}

// DiffGenerator computes unified diffs. It keeps its working buffers between
// calls, so reuse one when diffing many files.
type DiffGenerator struct {
	v     []int
	trace [][]int
}

// NewDiffGenerator creates a diff generator.
func NewDiffGenerator() *DiffGenerator {
	return &DiffGenerator{}
}

// Diff is a convenience wrapper around a one-off DiffGenerator.
func Diff(oldPath, newPath string, old, newer []byte, opts *DiffOptions) string {
	return NewDiffGenerator().Diff(oldPath, newPath, old, newer, opts)
}

// Diff returns a styled unified diff, or "" when the contents are equal.
func (g *DiffGenerator) Diff(oldPath, newPath string, old, newer []byte, opts *DiffOptions) string {
	o := DiffOptions{ContextLines: 3, TabWidth: 4}
	if opts != nil {
		if opts.ContextLines > 0 {
			o.ContextLines = opts.ContextLines
		}
		if opts.TabWidth > 0 {
			o.TabWidth = opts.TabWidth
		}
		o.Width = opts.Width
	}
	if o.Width == 0 {
		o.Width = terminalWidth()
	}

	if bytes.Equal(old, newer) {
		return ""
	}
	if bytes.IndexByte(old, 0) >= 0 || bytes.IndexByte(newer, 0) >= 0 {
		return "Binary files differ\n"
	}

	a, b := splitLines(old), splitLines(newer)
	if len(a) > maxDiffLines || len(b) > maxDiffLines {
		return fmt.Sprintf("Files too large for diff (%d and %d lines)\n", len(a), len(b))
	}

	hunks := groupHunks(g.editScript(a, b), o.ContextLines)
	if len(hunks) == 0 {
		// Only the final newline differs.
		return diffHeaderStyle.Render("--- "+oldPath) + "\n" +
			diffHeaderStyle.Render("+++ "+newPath) + "\n" +
			"\\ No newline at end of file\n"
	}

	var buf strings.Builder
	buf.WriteString(diffHeaderStyle.Render("--- "+oldPath) + "\n")
	buf.WriteString(diffHeaderStyle.Render("+++ "+newPath) + "\n")
	for _, h := range hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.oldStart, h.oldCount, h.newStart, h.newCount)
		buf.WriteString(diffHunkStyle.Render(header) + "\n")
		for _, e := range h.edits {
			line := truncate(expandTabs(e.text, o.TabWidth), o.Width-2)
			switch e.kind {
			case editInsert:
				buf.WriteString(diffAddedStyle.Render("+ "+line) + "\n")
			case editDelete:
				buf.WriteString(diffRemovedStyle.Render("- "+line) + "\n")
			default:
				buf.WriteString("  " + line + "\n")
			}
		}
	}
	return buf.String()
}

// editScript is Myers' O(ND) shortest edit script.
func (g *DiffGenerator) editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	total := n + m
	off := total + 1

	if cap(g.v) < 2*total+3 {
		g.v = make([]int, 2*total+3)
	}
	v := g.v[:2*total+3]
	for i := range v {
		v[i] = 0
	}
	g.trace = g.trace[:0]

search:
	for d := 0; d <= total; d++ {
		g.trace = append(g.trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[off+k-1] < v[off+k+1]) {
				x = v[off+k+1]
			} else {
				x = v[off+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[off+k] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	var script []edit
	x, y := n, m
	for d := len(g.trace) - 1; d >= 0; d-- {
		tv := g.trace[d]
		k := x - y

		prevK := k - 1
		if k == -d || (k != d && tv[off+k-1] < tv[off+k+1]) {
			prevK = k + 1
		}
		prevX := tv[off+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			script = append(script, edit{kind: editEqual, text: a[x], oldPos: x, newPos: y})
		}
		if d == 0 {
			break
		}
		if x == prevX {
			y--
			script = append(script, edit{kind: editInsert, text: b[y], oldPos: x, newPos: y})
		} else {
			x--
			script = append(script, edit{kind: editDelete, text: a[x], oldPos: x, newPos: y})
		}
	}

	for i, j := 0, len(script)-1; i < j; i, j = i+1, j-1 {
		script[i], script[j] = script[j], script[i]
	}
	return script
}

// groupHunks cuts an edit script into hunks with context lines around each
// change. Changes closer than 2*context lines share a hunk.
func groupHunks(script []edit, context int) []hunk {
	var hunks []hunk
	i := 0
	for i < len(script) {
		if script[i].kind == editEqual {
			i++
			continue
		}

		start := i - context
		if start < 0 {
			start = 0
		}
		end := i
		for j := i; j < len(script); j++ {
			if script[j].kind == editEqual {
				continue
			}
			if j-end > 2*context {
				break
			}
			end = j
		}
		stop := end + context + 1
		if stop > len(script) {
			stop = len(script)
		}

		h := hunk{edits: script[start:stop]}
		first := script[start]
		h.oldStart, h.newStart = first.oldPos+1, first.newPos+1
		for _, e := range h.edits {
			if e.kind != editInsert {
				h.oldCount++
			}
			if e.kind != editDelete {
				h.newCount++
			}
		}
		if h.oldCount == 0 {
			h.oldStart--
		}
		if h.newCount == 0 {
			h.newStart--
		}

		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// splitLines splits on '\n'; a trailing newline does not produce an empty line.
func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := width - col%width
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
// A width of zero or less disables truncation.
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
