package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
	out         io.Writer = os.Stdout
)

// SetVerbose enables or disables verbose output.
// The CLI calls this when --verbose is set.
func SetVerbose(v bool) {
	verboseMode = v
}

// SetWriter redirects all output. Passing nil restores stdout.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// Writer returns the current destination.
func Writer() io.Writer {
	return out
}

// Success prints a completed operation.
func Success(msg string) {
	fmt.Fprintln(out, successStyle.Render("🔥 "+msg))
}

// Error prints a failure that needs user attention.
func Error(msg string) {
	fmt.Fprintln(out, errorStyle.Render("❌ "+msg))
}

// Warn prints something the user should look at, such as an orphaned section.
func Warn(msg string) {
	fmt.Fprintln(out, warnStyle.Render("⚠️  "+msg))
}

// Info prints a status update.
func Info(msg string) {
	fmt.Fprintln(out, infoStyle.Render("ℹ️  "+msg))
}

// Step prints an indented sub-item.
func Step(msg string) {
	fmt.Fprintln(out, stepStyle.Render("   "+msg))
}

// Verbose prints a debug message only in verbose mode.
func Verbose(msg string) {
	if verboseMode {
		fmt.Fprintln(out, stepStyle.Render("🔍 "+msg))
	}
}
