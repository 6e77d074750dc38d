// Package input asks the user questions on the terminal.
//
// Plume only prompts when stdin is a terminal; non-interactive runs take the
// default answer.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	in  = bufio.NewReader(os.Stdin)
	out io.Writer = os.Stdout
)

// SetIO replaces stdin/stdout, mainly for tests. Nil restores the default.
func SetIO(r io.Reader, w io.Writer) {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	in = bufio.NewReader(r)
	out = w
}

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Prompt asks for text input. Enter on its own returns defaultValue.
//
//	path := input.Prompt("Output file", "include/example.h")
//	// Displays: Output file (include/example.h): _
func Prompt(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(out, promptStyle.Render(message)+" "+
			hintStyle.Render(fmt.Sprintf("(%s)", defaultValue))+": ")
	} else {
		fmt.Fprint(out, promptStyle.Render(message)+": ")
	}

	// A read error leaves whatever was typed before it.
	answer, _ := in.ReadString('\n')
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue
	}
	return answer
}

// Confirm asks a yes/no question. Enter on its own, or a read error, returns
// defaultYes.
//
//	if input.Confirm("Drop 2 orphaned sections?", false) {
//	    ...
//	}
//	// Displays: Drop 2 orphaned sections? [y/N]: _
func Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, _ := in.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}
