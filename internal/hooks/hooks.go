// Package hooks runs the commands a manifest lists under post_generate, such
// as a formatter over the files a generation pass wrote.
//
// A hook is a command line split on whitespace; no shell is involved. The
// word {files} expands to one argument per written file:
//
//	post_generate:
//	  - clang-format -i {files}
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// FilesPlaceholder expands to the paths written by the generation pass.
const FilesPlaceholder = "{files}"

// Command is one parsed hook.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Parse splits line into a Command, expanding {files}.
func Parse(line string, files []string) (Command, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return Command{}, errors.New("empty hook")
	}

	var args []string
	for _, w := range words[1:] {
		if w == FilesPlaceholder {
			args = append(args, files...)
			continue
		}
		args = append(args, w)
	}
	return Command{Name: words[0], Args: args}, nil
}

// Options configures an Executor.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string // working directory for every command
	// Spinner shows a spinner while a command runs and prints its output
	// only when it fails.
	Spinner bool
}

// Executor runs hook commands.
type Executor struct {
	stdout  io.Writer
	stderr  io.Writer
	dir     string
	spinner bool

	// replaced in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExecutor returns an Executor writing to stdout/stderr unless opts says
// otherwise.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	e := &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		dir:         opts.Dir,
		spinner:     opts.Spinner,
		commandFunc: exec.CommandContext,
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	return e
}

// RunAll runs each hook in order and stops at the first failure. Hooks are
// skipped when files is empty.
func (e *Executor) RunAll(ctx context.Context, lines, files []string) error {
	if len(files) == 0 {
		return nil
	}
	for _, line := range lines {
		cmd, err := Parse(line, files)
		if err != nil {
			return err
		}
		if e.spinner {
			err = e.RunWithSpinner(ctx, cmd.String(), cmd.Name, cmd.Args...)
		} else {
			err = e.Run(ctx, cmd.Name, cmd.Args...)
		}
		if err != nil {
			return fmt.Errorf("post_generate hook %q: %w", line, err)
		}
	}
	return nil
}

// Run executes one command, streaming its output with a gutter prefix.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	stdout := newPrefixWriter(e.stdout)
	stderr := newPrefixWriter(e.stderr)
	err := e.run(ctx, stdout, stderr, name, args...)
	stdout.Flush()
	stderr.Flush()
	return err
}

func (e *Executor) run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := e.commandFunc(ctx, name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if isCommandNotFound(err) {
			return fmt.Errorf("%w\n💡 Command '%s' not found. Install it or remove the hook", err, name)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func isCommandNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found") ||
		strings.Contains(err.Error(), "command not found")
}

// RunWithSpinner executes one command behind a spinner. Output is collected
// and written to stderr only if the command fails.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	var captured bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- e.run(ctx, &captured, &captured, name, args...)
	}()

	err := runSpinner(e.stderr, message, done)
	if err != nil && captured.Len() > 0 {
		w := newPrefixWriter(e.stderr)
		_, _ = w.Write(captured.Bytes())
		w.Flush()
	}
	return err
}
