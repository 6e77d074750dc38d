package hooks

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

const gutter = "  │ "

// prefixWriter writes each complete line behind a gutter. Flush writes a
// trailing partial line.
type prefixWriter struct {
	w   io.Writer
	buf []byte
}

func newPrefixWriter(w io.Writer) *prefixWriter {
	return &prefixWriter{w: w}
}

func (p *prefixWriter) Write(b []byte) (int, error) {
	p.buf = append(p.buf, b...)
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		if err := p.writeLine(p.buf[:i]); err != nil {
			return 0, err
		}
		p.buf = p.buf[i+1:]
	}
	return len(b), nil
}

func (p *prefixWriter) Flush() {
	if len(p.buf) > 0 {
		_ = p.writeLine(p.buf)
		p.buf = nil
	}
}

func (p *prefixWriter) writeLine(line []byte) error {
	_, err := fmt.Fprintln(p.w, gutterStyle.Render(gutter)+string(bytes.TrimSuffix(line, []byte("\r"))))
	return err
}

type spinnerDoneMsg struct {
	err error
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

// runSpinner shows a spinner on w until done delivers, and returns what it
// delivered.
func runSpinner(w io.Writer, message string, done <-chan error) error {
	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(w), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		// A failed program only loses the animation.
		_, _ = p.Run()
		close(finished)
	}()

	err := <-done
	p.Send(spinnerDoneMsg{err: err})
	<-finished
	return err
}
