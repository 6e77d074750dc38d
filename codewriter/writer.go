// Package codewriter writes C source text with indentation and user sections.
//
// Writer keeps the first error it hits and turns every later call into a
// no-op, so generators can write a whole file and check once:
//
//	w := codewriter.New(f)
//	w.Ifndef("EXAMPLE_H")
//	w.Define("EXAMPLE_H", "")
//	w.Section(store, "Includes")
//	w.Endif("EXAMPLE_H")
//	if err := w.Flush(); err != nil {
//	    return err
//	}
package codewriter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/simonhull/firebird-suite/plume/section"
)

// DefaultIndentSize is the number of spaces per indentation level.
const DefaultIndentSize = 4

// Param is a function parameter.
type Param struct {
	Type string
	Name string
}

// Writer writes indented C code.
type Writer struct {
	out        *bufio.Writer
	level      int
	indentSize int
	err        error
}

// New creates a writer with 4-space indentation.
func New(w io.Writer) *Writer {
	return NewWithIndent(w, DefaultIndentSize)
}

// NewWithIndent creates a writer with indentSize spaces per level.
func NewWithIndent(w io.Writer, indentSize int) *Writer {
	if indentSize < 0 {
		indentSize = 0
	}
	return &Writer{
		out:        bufio.NewWriter(w),
		indentSize: indentSize,
	}
}

// Indent increases the indentation level.
func (w *Writer) Indent() {
	w.level++
}

// Dedent decreases the indentation level, stopping at zero.
func (w *Writer) Dedent() {
	if w.level > 0 {
		w.level--
	}
}

// Level returns the current indentation level.
func (w *Writer) Level() int {
	return w.level
}

// Prefix returns the whitespace for the current indentation level.
func (w *Writer) Prefix() string {
	return strings.Repeat(" ", w.level*w.indentSize)
}

// Err returns the first error the writer hit.
func (w *Writer) Err() error {
	return w.err
}

// Write writes p verbatim. It makes Writer an io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.out.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.out.WriteString(s); err != nil {
		w.err = err
	}
}

// Line writes every line of s at the current indentation, each terminated by
// a newline. Empty lines get no indentation.
func (w *Writer) Line(s string) {
	prefix := w.Prefix()
	for _, line := range strings.Split(strings.TrimSuffix(s, "\n"), "\n") {
		if line != "" {
			w.raw(prefix)
			w.raw(line)
		}
		w.raw("\n")
	}
}

// Linef formats and writes a line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Newline writes an empty line.
func (w *Writer) Newline() {
	w.raw("\n")
}

// Comment writes a // comment, or a block comment for multi-line text.
func (w *Writer) Comment(text string) {
	if !strings.Contains(text, "\n") {
		w.Line("// " + text)
		return
	}
	w.Line("/*")
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		w.Line(strings.TrimRight(" * "+line, " "))
	}
	w.Line(" */")
}

// Separator writes a one-line block comment used as a heading.
func (w *Writer) Separator(title string) {
	w.Line("/* " + title + " */")
}

// Section writes a registered user section: its description as a heading if
// it has one, then the markers at the current indentation around the body.
func (w *Writer) Section(store *section.Store, name string) {
	if w.err != nil {
		return
	}
	if _, err := store.Resolve(name); err != nil {
		w.err = err
		return
	}
	if def, _ := store.Registry().Lookup(name); def.Description != "" {
		w.Separator(def.Description)
	}
	if w.err != nil {
		return
	}
	if err := store.EmitIndented(w.out, name, w.Prefix()); err != nil {
		w.err = err
	}
}

// Include writes an #include directive.
func (w *Writer) Include(header string, system bool) {
	if system {
		w.Linef("#include <%s>", header)
		return
	}
	w.Linef("#include \"%s\"", header)
}

// Define writes a #define, with a value if one is given.
func (w *Writer) Define(name, value string) {
	if value == "" {
		w.Linef("#define %s", name)
		return
	}
	w.Linef("#define %s %s", name, value)
}

// Ifdef writes #ifdef name.
func (w *Writer) Ifdef(name string) {
	w.Linef("#ifdef %s", name)
}

// Ifndef writes #ifndef name.
func (w *Writer) Ifndef(name string) {
	w.Linef("#ifndef %s", name)
}

// Endif writes #endif with an optional trailing comment.
func (w *Writer) Endif(comment string) {
	if comment == "" {
		w.Line("#endif")
		return
	}
	w.Linef("#endif // %s", comment)
}

// BeginStruct opens a struct definition.
func (w *Writer) BeginStruct(name string) {
	w.Linef("struct %s {", name)
}

// EndStruct closes a struct or enum definition.
func (w *Writer) EndStruct() {
	w.Line("};")
}

// BeginEnum opens an enum definition.
func (w *Writer) BeginEnum(name string) {
	w.Linef("enum %s {", name)
}

// EnumMember writes an enum member, with a value if one is given.
func (w *Writer) EnumMember(name, value string) {
	if value == "" {
		w.Linef("%s,", name)
		return
	}
	w.Linef("%s = %s,", name, value)
}

// TypedefStruct writes typedef struct name name;
func (w *Writer) TypedefStruct(name string) {
	w.Linef("typedef struct %s %s;", name, name)
}

// Variable writes a declaration, preceded by a comment if one is given.
func (w *Writer) Variable(typ, name, comment string) {
	if comment != "" {
		w.Comment(comment)
	}
	w.Linef("%s %s;", typ, name)
}

// BeginFunction opens a function definition.
func (w *Writer) BeginFunction(ret, name string, params ...Param) {
	w.Linef("%s %s%s {", ret, name, paramList(params))
}

// EndFunction closes a function definition.
func (w *Writer) EndFunction() {
	w.Line("}")
}

// FunctionDecl writes a function prototype.
func (w *Writer) FunctionDecl(ret, name string, params ...Param) {
	w.Linef("%s %s%s;", ret, name, paramList(params))
}

func paramList(params []Param) string {
	if len(params) == 0 {
		return "(void)"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type + " " + p.Name
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Flush writes buffered output and returns the first error, if any.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.out.Flush(); err != nil {
		w.err = err
	}
	return w.err
}
