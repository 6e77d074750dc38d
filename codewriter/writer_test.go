package codewriter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/section"
)

func TestWriter_Basic(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Line("// This is a test")
	w.Line("int main() {")
	w.Indent()
	w.Line(`printf("Hello, World!\n");`)
	w.Line("return 0;")
	w.Dedent()
	w.Line("}")
	require.NoError(t, w.Flush())

	expected := "// This is a test\nint main() {\n    printf(\"Hello, World!\\n\");\n    return 0;\n}\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_Functions(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Include("stdio.h", true)
	w.Newline()
	w.BeginFunction("int", "add", Param{"int", "a"}, Param{"int", "b"})
	w.Indent()
	w.Line("return a + b;")
	w.Dedent()
	w.EndFunction()
	w.FunctionDecl("void", "reset")
	require.NoError(t, w.Flush())

	expected := "#include <stdio.h>\n\nint add(int a, int b) {\n    return a + b;\n}\nvoid reset(void);\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_Directives(t *testing.T) {
	var buf bytes.Buffer
	w := NewWithIndent(&buf, 2)

	w.Ifndef("EXAMPLE_H")
	w.Define("EXAMPLE_H", "")
	w.Define("VERSION", `"1.0.0"`)
	w.Include("example.h", false)
	w.Ifdef("DEBUG")
	w.Endif("")
	w.TypedefStruct("Point")
	w.BeginStruct("Point")
	w.Indent()
	w.Variable("int", "x", "Horizontal")
	w.Dedent()
	w.EndStruct()
	w.BeginEnum("Kind")
	w.Indent()
	w.EnumMember("KIND_A", "")
	w.EnumMember("KIND_B", "4")
	w.Dedent()
	w.EndStruct()
	w.Endif("EXAMPLE_H")
	require.NoError(t, w.Flush())

	expected := "#ifndef EXAMPLE_H\n" +
		"#define EXAMPLE_H\n" +
		"#define VERSION \"1.0.0\"\n" +
		"#include \"example.h\"\n" +
		"#ifdef DEBUG\n" +
		"#endif\n" +
		"typedef struct Point Point;\n" +
		"struct Point {\n" +
		"  // Horizontal\n" +
		"  int x;\n" +
		"};\n" +
		"enum Kind {\n" +
		"  KIND_A,\n" +
		"  KIND_B = 4,\n" +
		"};\n" +
		"#endif // EXAMPLE_H\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_Comment(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Comment("single")
	w.Comment("first\n\nthird")
	require.NoError(t, w.Flush())

	assert.Equal(t, "// single\n/*\n * first\n *\n * third\n */\n", buf.String())
}

func TestWriter_DedentStopsAtZero(t *testing.T) {
	w := New(&bytes.Buffer{})
	w.Dedent()
	assert.Equal(t, 0, w.Level())
	w.Indent()
	assert.Equal(t, "    ", w.Prefix())
}

func TestWriter_Section(t *testing.T) {
	reg := section.NewRegistry()
	require.NoError(t, reg.DefineWithDescription("Header", "File header"))
	require.NoError(t, reg.DefineWithDefault("Includes", "System includes", "#include <stdio.h>\n"))
	require.NoError(t, reg.DefineWithDefault("Init", "", "    g_count = 0;\n"))
	store := section.NewStore(reg)

	var buf bytes.Buffer
	w := New(&buf)
	w.Section(store, "Header")
	w.Section(store, "Includes")
	w.BeginFunction("void", "init")
	w.Indent()
	w.Section(store, "Init")
	w.Dedent()
	w.EndFunction()
	require.NoError(t, w.Flush())

	expected := "/* File header */\n" +
		"/* USER CODE BEGIN Header */\n" +
		"/* USER CODE END Header */\n" +
		"/* System includes */\n" +
		"/* USER CODE BEGIN Includes */\n" +
		"#include <stdio.h>\n" +
		"/* USER CODE END Includes */\n" +
		"void init(void) {\n" +
		"    /* USER CODE BEGIN Init */\n" +
		"    g_count = 0;\n" +
		"    /* USER CODE END Init */\n" +
		"}\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriter_SectionUnknownStopsWriting(t *testing.T) {
	store := section.NewStore(section.NewRegistry())

	var buf bytes.Buffer
	w := New(&buf)
	w.Line("before")
	w.Section(store, "Missing")
	w.Line("after")

	err := w.Flush()
	require.Error(t, err)
	assert.True(t, errors.Is(err, section.ErrUnknownSection))
	assert.Empty(t, buf.String(), "nothing is flushed after an error")
}
