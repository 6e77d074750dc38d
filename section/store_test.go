package section_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/section"
)

func newScenarioStore(t *testing.T) *section.Store {
	t.Helper()
	reg := section.NewRegistry()
	require.NoError(t, reg.DefineWithDefault("Includes", "Additional includes", "// default\n"))
	require.NoError(t, reg.Define("Body"))
	return section.NewStore(reg)
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.Define("Includes"))

	err := reg.DefineWithDefault("Includes", "", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, section.ErrDuplicateSection))

	def, ok := reg.Lookup("Includes")
	require.True(t, ok)
	assert.False(t, def.HasDefault, "first definition is kept")
}

func TestRegistry_InvalidNames(t *testing.T) {
	reg := section.NewRegistry()
	for _, name := range []string{"", " A", "A ", "A  B", "A*/", "A\nB", "Ä"} {
		err := reg.Define(name)
		assert.True(t, errors.Is(err, section.ErrInvalidName), "name %q", name)
	}

	for _, name := range []string{"A", "init_fn", "v1.2", "tool-x purpose"} {
		assert.NoError(t, reg.Define(name), "name %q", name)
	}
	assert.Equal(t, []string{"A", "init_fn", "v1.2", "tool-x purpose"}, reg.Names())
	assert.True(t, reg.IsDefined("v1.2"))
	assert.False(t, reg.IsDefined("v1"))
}

func TestStore_ResolvePrecedence(t *testing.T) {
	store := newScenarioStore(t)

	prior := "/* USER CODE BEGIN Includes */\n#include <foo.h>\n/* USER CODE END Includes */\n"
	_, err := store.CaptureFrom([]byte(prior))
	require.NoError(t, err)

	includes, err := store.Resolve("Includes")
	require.NoError(t, err)
	assert.Equal(t, "#include <foo.h>\n", includes.Content)
	assert.Equal(t, section.OriginCaptured, includes.Origin)

	body, err := store.Resolve("Body")
	require.NoError(t, err)
	assert.Equal(t, "", body.Content)
	assert.Equal(t, section.OriginEmpty, body.Origin)
}

func TestStore_DefaultWithoutPriorFile(t *testing.T) {
	store := newScenarioStore(t)

	r, err := store.Resolve("Includes")
	require.NoError(t, err)
	assert.Equal(t, "// default\n", r.Content)
	assert.Equal(t, section.OriginDefault, r.Origin)
	assert.Equal(t, "default", r.Origin.String())
}

func TestStore_EmptyDefaultIsStillDefault(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.DefineWithDefault("Includes", "", ""))
	store := section.NewStore(reg)

	r, err := store.Resolve("Includes")
	require.NoError(t, err)
	assert.Equal(t, section.OriginDefault, r.Origin)
}

func TestStore_UnknownSection(t *testing.T) {
	store := newScenarioStore(t)

	_, err := store.Resolve("DoesNotExist")
	assert.True(t, errors.Is(err, section.ErrUnknownSection))

	_, err = store.CaptureFrom([]byte("/* USER CODE BEGIN DoesNotExist */\nx\n/* USER CODE END DoesNotExist */\n"))
	require.NoError(t, err)

	_, err = store.Resolve("DoesNotExist")
	assert.True(t, errors.Is(err, section.ErrUnknownSection))

	var buf bytes.Buffer
	err = store.Emit(&buf, "DoesNotExist")
	assert.True(t, errors.Is(err, section.ErrUnknownSection))
	assert.Zero(t, buf.Len(), "nothing written for unknown section")
}

func TestStore_MalformedCaptureKeepsPreviousState(t *testing.T) {
	store := newScenarioStore(t)

	_, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Includes */\nmine\n/* USER CODE END Includes */\n"))
	require.NoError(t, err)

	c, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Includes */\n#include <foo.h>\n"))
	require.Error(t, err)
	assert.Nil(t, c)
	assert.True(t, errors.Is(err, section.ErrUnterminatedSection))
	assert.Contains(t, err.Error(), "Includes")

	content, err := store.Content("Includes")
	require.NoError(t, err)
	assert.Equal(t, "mine\n", content)
}

func TestStore_MalformedFirstCaptureHasNoGuess(t *testing.T) {
	store := newScenarioStore(t)

	_, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Includes */\n#include <foo.h>\n"))
	require.Error(t, err)

	_, ok := store.Captured("Includes")
	assert.False(t, ok)

	r, err := store.Resolve("Includes")
	require.NoError(t, err)
	assert.Equal(t, section.OriginDefault, r.Origin)
}

func TestStore_LastCaptureWins(t *testing.T) {
	store := newScenarioStore(t)

	_, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Body */\nfirst\n/* USER CODE END Body */\n"))
	require.NoError(t, err)
	_, err = store.CaptureFrom([]byte("/* USER CODE BEGIN Includes */\nsecond\n/* USER CODE END Includes */\n"))
	require.NoError(t, err)

	body, err := store.Resolve("Body")
	require.NoError(t, err)
	assert.Equal(t, section.OriginEmpty, body.Origin)

	includes, err := store.Content("Includes")
	require.NoError(t, err)
	assert.Equal(t, "second\n", includes)
}

func TestStore_OrphanPreservation(t *testing.T) {
	store := newScenarioStore(t)
	prior := "/* USER CODE BEGIN Legacy */\nold_code();\n/* USER CODE END Legacy */\n"

	c, err := store.CaptureFrom([]byte(prior))
	require.NoError(t, err)
	assert.Equal(t, []string{"Legacy"}, c.Orphans())
	assert.Equal(t, []string{"Legacy"}, store.Orphans())

	_, err = store.Resolve("Legacy")
	assert.True(t, errors.Is(err, section.ErrUnknownSection))

	captured, ok := store.Captured("Legacy")
	require.True(t, ok)
	assert.Equal(t, "old_code();\n", captured.Content)

	// Registering after the capture does not bring the body back.
	require.NoError(t, store.Registry().Define("Legacy"))
	assert.Equal(t, []string{"Legacy"}, store.Orphans())

	r, err := store.Resolve("Legacy")
	require.NoError(t, err)
	assert.Empty(t, r.Content)
	assert.Equal(t, section.OriginEmpty, r.Origin)

	// A pass that registers it before capturing keeps it.
	_, err = store.CaptureFrom([]byte(prior))
	require.NoError(t, err)
	assert.Empty(t, store.Orphans())

	r, err = store.Resolve("Legacy")
	require.NoError(t, err)
	assert.Equal(t, "old_code();\n", r.Content)
	assert.Equal(t, section.OriginCaptured, r.Origin)
}

func TestStore_LateRegistrationFallsBackToDefault(t *testing.T) {
	store := section.NewStore(section.NewRegistry())
	_, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Extra */\nold\n/* USER CODE END Extra */\n"))
	require.NoError(t, err)

	require.NoError(t, store.Registry().DefineWithDefault("Extra", "", "fresh\n"))
	r, err := store.Resolve("Extra")
	require.NoError(t, err)
	assert.Equal(t, section.Resolved{Name: "Extra", Content: "fresh\n", Origin: section.OriginDefault}, r)
}

func TestStore_NearMissMarkerKeepsPreviousState(t *testing.T) {
	store := newScenarioStore(t)
	_, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Includes */\n#include <bar.h>\n/* USER CODE END Includes */\n"))
	require.NoError(t, err)

	_, err = store.CaptureFrom([]byte("/* USER CODE BEGIN Includes */ // keep me\n#include <foo.h>\n/* USER CODE END Includes */ // end\n"))
	require.ErrorIs(t, err, section.ErrMalformedMarker)

	r, err := store.Resolve("Includes")
	require.NoError(t, err)
	assert.Equal(t, "#include <bar.h>\n", r.Content)
	assert.Equal(t, section.OriginCaptured, r.Origin)
}

func TestStore_RegisteredBeforeCaptureIsNotOrphan(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.Define("Legacy"))
	store := section.NewStore(reg)

	c, err := store.CaptureFrom([]byte("/* USER CODE BEGIN Legacy */\nx\n/* USER CODE END Legacy */\n"))
	require.NoError(t, err)
	assert.Empty(t, c.Orphans())
}

func TestStore_CaptureFile(t *testing.T) {
	dir := t.TempDir()
	store := newScenarioStore(t)

	c, err := store.CaptureFile(filepath.Join(dir, "missing.h"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	path := filepath.Join(dir, "example.h")
	require.NoError(t, os.WriteFile(path, []byte("/* USER CODE BEGIN Body */\nint x;\n/* USER CODE END Body */\n"), 0644))

	c, err = store.CaptureFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Body"}, c.Names())

	// A missing file clears what was captured before.
	_, err = store.CaptureFile(filepath.Join(dir, "missing.h"))
	require.NoError(t, err)
	_, ok := store.Captured("Body")
	assert.False(t, ok)
}

func TestStore_CaptureFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.h")
	require.NoError(t, os.WriteFile(path, []byte("/* USER CODE BEGIN Body */\n"), 0644))

	_, err := newScenarioStore(t).CaptureFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, section.ErrUnterminatedSection))
	assert.Contains(t, err.Error(), path)
}

func TestStore_CaptureFileReadError(t *testing.T) {
	dir := t.TempDir()
	_, err := newScenarioStore(t).CaptureFile(dir) // a directory cannot be read as a file
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestEmit_Markers(t *testing.T) {
	store := newScenarioStore(t)

	var buf bytes.Buffer
	require.NoError(t, store.Emit(&buf, "Includes"))
	require.NoError(t, store.Emit(&buf, "Body"))

	expected := "/* USER CODE BEGIN Includes */\n// default\n/* USER CODE END Includes */\n" +
		"/* USER CODE BEGIN Body */\n/* USER CODE END Body */\n"
	assert.Equal(t, expected, buf.String())
}

func TestEmit_Indented(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.DefineWithDefault("Init", "", "    g_count = 0;"))
	store := section.NewStore(reg)

	var buf bytes.Buffer
	require.NoError(t, store.EmitIndented(&buf, "Init", "    "))

	expected := "    /* USER CODE BEGIN Init */\n    g_count = 0;\n    /* USER CODE END Init */\n"
	assert.Equal(t, expected, buf.String())
}

func TestEmit_KeepsCRLFMarkers(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.Define("A"))
	require.NoError(t, reg.DefineWithDefault("B", "", "b\n"))
	store := section.NewStore(reg)

	prior := "/* USER CODE BEGIN A */\r\nbody\r\n/* USER CODE END A */\r\n"
	_, err := store.CaptureFrom([]byte(prior))
	require.NoError(t, err)

	a, err := store.Block("A")
	require.NoError(t, err)
	assert.Equal(t, prior, a)

	b, err := store.Block("B")
	require.NoError(t, err)
	assert.Equal(t, "/* USER CODE BEGIN B */\nb\n/* USER CODE END B */\n", b)
}

func TestRegistry_RejectsDescriptionsThatBreakComments(t *testing.T) {
	reg := section.NewRegistry()
	err := reg.DefineWithDescription("Includes", "closes */ the comment")
	assert.ErrorIs(t, err, section.ErrInvalidDescription)
	assert.False(t, reg.IsDefined("Includes"))

	assert.ErrorIs(t, reg.DefineWithDefault("Body", "two\nlines", ""), section.ErrInvalidDescription)
}

func TestEmit_WriterError(t *testing.T) {
	store := newScenarioStore(t)
	err := store.Emit(failingWriter{}, "Body")
	assert.ErrorIs(t, err, errWrite)
}

func TestRoundTrip_ByteStable(t *testing.T) {
	generate := func(store *section.Store) string {
		var b strings.Builder
		b.WriteString("/* generated */\n#ifndef EXAMPLE_H\n")
		require.NoError(t, store.Emit(&b, "Body"))
		b.WriteString("int generated(void);\n")
		require.NoError(t, store.EmitIndented(&b, "Includes", "  "))
		b.WriteString("#endif\n")
		return b.String()
	}

	first := generate(newScenarioStore(t))

	// A user edits both sections, including odd whitespace and a body
	// without trailing newline handling of its own.
	edited := strings.Replace(first,
		"/* USER CODE BEGIN Body */\n",
		"/* USER CODE BEGIN Body */\n\tint  custom = 1;   \r\n\n", 1)
	edited = strings.Replace(edited, "// default\n", "#include <foo.h>\n/* a comment */\n", 1)

	store := newScenarioStore(t)
	_, err := store.CaptureFrom([]byte(edited))
	require.NoError(t, err)
	second := generate(store)
	assert.Equal(t, edited, second)

	store = newScenarioStore(t)
	_, err = store.CaptureFrom([]byte(second))
	require.NoError(t, err)
	assert.Equal(t, second, generate(store), "regenerating an unchanged file is a no-op")
}

func TestRoundTrip_DefaultWithoutNewlineStabilises(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.DefineWithDefault("A", "", "no newline"))
	store := section.NewStore(reg)

	first, err := store.Block("A")
	require.NoError(t, err)

	_, err = store.CaptureFrom([]byte(first))
	require.NoError(t, err)
	second, err := store.Block("A")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

var errWrite = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}
