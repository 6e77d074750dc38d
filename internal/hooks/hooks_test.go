package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommand re-runs the test binary as the named command.
func mockCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	switch args[0] {
	case "echo":
		fmt.Println(strings.Join(args[1:], " "))
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "formatting failed")
		os.Exit(1)
	}
	os.Exit(2)
}

func newTestExecutor(stdout, stderr *bytes.Buffer, spin bool) *Executor {
	e := NewExecutor(&Options{Stdout: stdout, Stderr: stderr, Spinner: spin})
	e.commandFunc = mockCommand
	return e
}

func TestParse(t *testing.T) {
	cmd, err := Parse("clang-format -i {files}", []string{"a.h", "b.c"})
	require.NoError(t, err)
	assert.Equal(t, "clang-format", cmd.Name)
	assert.Equal(t, []string{"-i", "a.h", "b.c"}, cmd.Args)
	assert.Equal(t, "clang-format -i a.h b.c", cmd.String())

	cmd, err = Parse("  make   fmt ", nil)
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "make", Args: []string{"fmt"}}, cmd)

	_, err = Parse("   ", nil)
	assert.Error(t, err)
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()

	t.Run("streams output behind a gutter", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		e := newTestExecutor(&stdout, &stderr, false)

		require.NoError(t, e.RunAll(ctx, []string{"echo formatted {files}"}, []string{"example.c"}))
		assert.Contains(t, stdout.String(), "│ formatted example.c\n")
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		e := newTestExecutor(&stdout, &stderr, false)

		err := e.RunAll(ctx, []string{"fail", "echo never"}, []string{"example.c"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `post_generate hook "fail"`)
		assert.Contains(t, stderr.String(), "formatting failed")
		assert.NotContains(t, stdout.String(), "never")
	})

	t.Run("nothing written, nothing run", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		e := newTestExecutor(&stdout, &stderr, false)

		require.NoError(t, e.RunAll(ctx, []string{"fail"}, nil))
		assert.Empty(t, stdout.String())
	})

	t.Run("missing command", func(t *testing.T) {
		e := NewExecutor(&Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

		err := e.Run(ctx, "plume-no-such-formatter")
		require.Error(t, err)
		assert.True(t, errors.Is(err, exec.ErrNotFound))
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestRunWithSpinner(t *testing.T) {
	ctx := context.Background()

	var stdout, stderr bytes.Buffer
	e := newTestExecutor(&stdout, &stderr, true)
	require.NoError(t, e.RunAll(ctx, []string{"echo quiet"}, []string{"example.c"}))
	assert.NotContains(t, stderr.String(), "│ quiet")

	stderr.Reset()
	require.Error(t, e.RunAll(ctx, []string{"fail"}, []string{"example.c"}))
	assert.Contains(t, stderr.String(), "│ formatting failed")
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("clang-format -i example.c")
	assert.Contains(t, m.View(), "clang-format -i example.c...")

	_, cmd := m.Update(spinner.TickMsg{})
	assert.NotNil(t, cmd)

	_, cmd = m.Update(spinnerDoneMsg{err: errors.New("boom")})
	assert.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.Equal(t, "❌ clang-format -i example.c\n", m.View())

	_, cmd = m.Update(spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestPrefixWriter(t *testing.T) {
	var buf bytes.Buffer
	w := newPrefixWriter(&buf)

	_, err := w.Write([]byte("one\r\ntw"))
	require.NoError(t, err)
	_, err = w.Write([]byte("o\nthree"))
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "│ one"))
	assert.True(t, strings.HasSuffix(lines[1], "│ two"))
	assert.True(t, strings.HasSuffix(lines[2], "│ three"))
}
