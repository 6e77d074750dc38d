package cgen

import (
	"io"

	"github.com/simonhull/firebird-suite/plume/codewriter"
	"github.com/simonhull/firebird-suite/plume/section"
)

func exampleParams(n Names) []codewriter.Param {
	return []codewriter.Param{{Type: n.Type + "*", Name: "data"}, {Type: "uint32_t", Name: "size"}}
}

// NewRegistry returns a registry holding a layout's sections for names.
func NewRegistry(l Layout, names Names) (*section.Registry, error) {
	reg := section.NewRegistry()
	if _, err := Register(reg, l.Sections(names), nil); err != nil {
		return nil, err
	}
	return reg, nil
}

// WriteHeader writes the example header. Registered sections that are not
// part of the header layout are written just before the closing guard.
func WriteHeader(out io.Writer, store *section.Store, names Names) error {
	w := codewriter.New(out)

	w.Section(store, "Header")
	w.Ifndef(names.Guard)
	w.Define(names.Guard, "")
	w.Newline()

	w.Section(store, "Includes")
	w.Newline()
	w.Section(store, "Typedefs")
	w.Newline()
	w.Section(store, "Constants")
	w.Newline()

	w.Separator("Struct definitions")
	w.TypedefStruct(names.Type)
	w.BeginStruct(names.Type)
	w.Indent()
	w.Variable("int", "id", "Unique identifier")
	w.Variable("char*", "name", "Name string")
	w.Variable("uint32_t", "flags", "Bit flags")
	w.Dedent()
	w.EndStruct()
	w.Newline()

	w.Separator("Function declarations")
	w.FunctionDecl("void", names.Prefix+"_init")
	w.FunctionDecl("int", names.Prefix+"_process", exampleParams(names)...)
	w.FunctionDecl("void", names.Prefix+"_cleanup")
	w.Newline()

	w.Section(store, "Functions")
	for _, name := range extraSections(store, headerSections(names)) {
		w.Section(store, name)
	}
	w.Endif(names.Guard)

	return w.Flush()
}

// WriteSource writes the example source. Registered sections that are not
// part of the source layout follow the last function.
func WriteSource(out io.Writer, store *section.Store, names Names) error {
	w := codewriter.New(out)

	w.Section(store, "Header")
	w.Include(names.Header, false)
	w.Include("string.h", true)
	w.Section(store, "Includes")
	w.Newline()

	w.Section(store, "Globals")
	w.Newline()

	w.Separator("Function implementations")
	writeFunction(w, store, "void", names.Prefix+"_init", "InitFunction")
	w.Newline()
	writeFunction(w, store, "int", names.Prefix+"_process", "ProcessFunction", exampleParams(names)...)
	w.Newline()
	writeFunction(w, store, "void", names.Prefix+"_cleanup", "CleanupFunction")

	for _, name := range extraSections(store, sourceSections(names)) {
		w.Newline()
		w.Section(store, name)
	}

	return w.Flush()
}

func writeFunction(w *codewriter.Writer, store *section.Store, ret, name, body string, params ...codewriter.Param) {
	w.BeginFunction(ret, name, params...)
	w.Indent()
	w.Section(store, body)
	w.Dedent()
	w.EndFunction()
}

// extraSections lists registered names that layout does not place.
func extraSections(store *section.Store, layout []section.Definition) []string {
	placed := make(map[string]bool, len(layout))
	for _, d := range layout {
		placed[d.Name] = true
	}
	var extra []string
	for _, name := range store.Registry().Names() {
		if !placed[name] {
			extra = append(extra, name)
		}
	}
	return extra
}
