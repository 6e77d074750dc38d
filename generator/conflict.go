package generator

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConflictResolution is what to do with a file whose regenerated content
// differs from what is on disk.
type ConflictResolution int

const (
	Skip ConflictResolution = iota
	Overwrite
	ShowDiff
	Cancel
)

// ErrCancelled is returned when the user cancels at a conflict prompt.
var ErrCancelled = errors.New("generation cancelled")

// ConflictStrategy decides what happens to a changed file.
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (ConflictResolution, error)
}

// ResolveOptions mirrors the conflict flags of `plume generate`.
type ResolveOptions struct {
	Force       bool // Overwrite without asking (the default when nothing is set)
	Skip        bool // Keep every changed file as it is
	Diff        bool // Print the diff, then ask
	Interactive bool // Ask
	Out         io.Writer
}

// Resolver applies a ConflictStrategy.
type Resolver struct {
	strategy ConflictStrategy
}

// NewResolver picks a strategy from opts. Force cannot be combined with the
// other modes, and Skip cannot be combined with Diff or Interactive.
func NewResolver(opts ResolveOptions) (*Resolver, error) {
	if opts.Force && (opts.Skip || opts.Diff || opts.Interactive) {
		return nil, fmt.Errorf("--force cannot be combined with --skip, --diff or --interactive")
	}
	if opts.Skip && (opts.Diff || opts.Interactive) {
		return nil, fmt.Errorf("--skip cannot be combined with --diff or --interactive")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Resolver{strategy: selectStrategy(opts)}, nil
}

// NewResolverWithStrategy wraps a custom strategy.
func NewResolverWithStrategy(s ConflictStrategy) *Resolver {
	return &Resolver{strategy: s}
}

// ResolveConflict decides what to do with path.
func (r *Resolver) ResolveConflict(path string, existing, newer []byte) (ConflictResolution, error) {
	return r.strategy.Resolve(path, existing, newer)
}

func selectStrategy(opts ResolveOptions) ConflictStrategy {
	switch {
	case opts.Skip:
		return &SkipStrategy{}
	case opts.Diff:
		return &DiffStrategy{
			diffGen: NewDiffGenerator(),
			out:     opts.Out,
			next:    &InteractiveStrategy{diffGen: NewDiffGenerator(), out: opts.Out},
		}
	case opts.Interactive:
		return &InteractiveStrategy{diffGen: NewDiffGenerator(), out: opts.Out}
	default:
		return &ForceStrategy{}
	}
}

// ForceStrategy always overwrites. User sections are carried over by capture,
// so this is the normal mode.
type ForceStrategy struct{}

func (s *ForceStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	return Overwrite, nil
}

// SkipStrategy always keeps the file on disk.
type SkipStrategy struct{}

func (s *SkipStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	return Skip, nil
}

// DiffStrategy prints the diff and hands the decision to next.
type DiffStrategy struct {
	diffGen *DiffGenerator
	out     io.Writer
	next    ConflictStrategy
}

func (s *DiffStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	fmt.Fprint(s.out, s.diffGen.Diff(path, path+" (regenerated)", existing, newer, nil))
	return s.next.Resolve(path, existing, newer)
}

// InteractiveStrategy shows a menu. Picking "Show diff" displays the diff and
// returns to the menu.
type InteractiveStrategy struct {
	diffGen *DiffGenerator
	out     io.Writer
}

// diffViewerThreshold is the diff length above which the scrolling viewer is
// used instead of printing inline.
const diffViewerThreshold = 20

func (s *InteractiveStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	for {
		final, err := tea.NewProgram(newConflictMenu(path, existing, newer)).Run()
		if err != nil {
			return Cancel, fmt.Errorf("failed to show menu: %w", err)
		}
		menu := final.(conflictMenu)
		if menu.selected == nil {
			return Cancel, nil
		}
		if *menu.selected != ShowDiff {
			return *menu.selected, nil
		}

		diff := s.diffGen.Diff(path, path+" (regenerated)", existing, newer, nil)
		if strings.Count(diff, "\n") <= diffViewerThreshold {
			fmt.Fprintln(s.out, diff)
			continue
		}
		if _, err := tea.NewProgram(newDiffViewer(path, diff), tea.WithAltScreen()).Run(); err != nil {
			return Cancel, fmt.Errorf("failed to show diff: %w", err)
		}
	}
}

var (
	conflictWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	conflictCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	conflictMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	viewerBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

var conflictChoices = []struct {
	label      string
	resolution ConflictResolution
}{
	{"Show diff and decide", ShowDiff},
	{"Keep the file on disk", Skip},
	{"Write the regenerated file", Overwrite},
	{"Cancel generation", Cancel},
}

// conflictMenu is the bubbletea model for the conflict menu.
type conflictMenu struct {
	path     string
	summary  string
	cursor   int
	selected *ConflictResolution
}

func newConflictMenu(path string, existing, newer []byte) conflictMenu {
	return conflictMenu{
		path: path,
		summary: fmt.Sprintf("%d → %d lines, %s → %s",
			len(splitLines(existing)), len(splitLines(newer)),
			formatFileSize(int64(len(existing))), formatFileSize(int64(len(newer)))),
	}
}

func (m conflictMenu) Init() tea.Cmd {
	return nil
}

func (m conflictMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(conflictChoices)-1 {
			m.cursor++
		}
	case "enter":
		r := conflictChoices[m.cursor].resolution
		m.selected = &r
		return m, tea.Quit
	}
	return m, nil
}

func (m conflictMenu) View() string {
	var b strings.Builder
	b.WriteString(conflictWarnStyle.Render("⚠️  Regenerated file differs: ") + m.path + "\n")
	b.WriteString(conflictMutedStyle.Render("    "+m.summary) + "\n\n")
	b.WriteString(conflictMutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Cancel") + "\n\n")

	for i, c := range conflictChoices {
		if i == m.cursor {
			b.WriteString("    " + conflictCursorStyle.Render("> "+c.label) + "\n")
		} else {
			b.WriteString("      " + c.label + "\n")
		}
	}
	return b.String()
}

// diffViewer is a full-screen scrolling diff.
type diffViewer struct {
	path     string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffViewer(path, diff string) diffViewer {
	return diffViewer{path: path, diff: diff}
}

func (m diffViewer) Init() tea.Cmd {
	return nil
}

func (m diffViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		// title line, border top and bottom, footer
		const chrome = 4
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-chrome)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - chrome
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewer) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	title := conflictWarnStyle.Render("Diff: " + m.path)
	footer := conflictMutedStyle.Render("[↑/↓/PgUp/PgDn] Scroll    [q] Back to menu")
	return title + "\n" + viewerBorderStyle.Render(m.viewport.View()) + "\n" + footer
}

// formatFileSize formats a byte count for humans.
func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
