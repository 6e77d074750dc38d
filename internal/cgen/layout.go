// Package cgen generates C headers and sources whose user sections survive
// regeneration.
package cgen

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/simonhull/firebird-suite/plume/generator"
	"github.com/simonhull/firebird-suite/plume/section"
)

// Built-in template names.
const (
	TemplateHeader = "c-header"
	TemplateSource = "c-source"
)

// Layout is a built-in file shape: its template and the user sections the
// template places.
type Layout struct {
	Template string
	File     string
	Sections func(names Names) []section.Definition
}

var layouts = map[string]Layout{
	TemplateHeader: {Template: TemplateHeader, File: "templates/c-header.tmpl", Sections: headerSections},
	TemplateSource: {Template: TemplateSource, File: "templates/c-source.tmpl", Sections: sourceSections},
}

// LookupLayout returns the built-in layout for a template name.
func LookupLayout(name string) (Layout, bool) {
	l, ok := layouts[name]
	return l, ok
}

// Names are the identifiers a file's generated code uses, derived from its
// path: example.c declares ExampleStruct and example_init.
type Names struct {
	Prefix string // example
	Type   string // ExampleStruct
	Guard  string // EXAMPLE_H
	Header string // example.h
}

// NamesFor derives Names from a file path.
func NamesFor(path string) Names {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	prefix := Identifier(generator.SnakeCase(stem))
	return Names{
		Prefix: prefix,
		Type:   generator.PascalCase(prefix) + "Struct",
		Guard:  generator.MacroCase(stem + ".h"),
		Header: stem + ".h",
	}
}

// Identifier turns s into a valid C identifier: characters that cannot
// appear in one become underscores, and a leading digit gets an underscore
// in front.
func Identifier(s string) string {
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func headerSections(n Names) []section.Definition {
	return []section.Definition{
		{Name: "Header", Description: "File header comment"},
		{Name: "Includes", Description: "Additional includes", HasDefault: true,
			Default: "#include <stdio.h>\n#include <stdlib.h>\n"},
		{Name: "Typedefs", Description: "User-defined types", HasDefault: true,
			Default: "typedef unsigned int uint32_t;\ntypedef unsigned char uint8_t;\n"},
		{Name: "Constants", Description: "User-defined constants", HasDefault: true,
			Default: "#define MAX_BUFFER_SIZE 1024\n#define VERSION \"1.0.0\"\n"},
		{Name: "Functions"},
	}
}

func sourceSections(n Names) []section.Definition {
	return []section.Definition{
		{Name: "Header", Description: "File header comment"},
		{Name: "Includes", Description: "Additional includes", HasDefault: true},
		{Name: "Globals", Description: "Global variables", HasDefault: true,
			Default: fmt.Sprintf("static %s g_%ss[MAX_BUFFER_SIZE];\nstatic int g_count = 0;\n", n.Type, n.Prefix)},
		{Name: "InitFunction", Description: "Initialization function implementation", HasDefault: true,
			Default: fmt.Sprintf("    // Initialize the %[1]s system\n    g_count = 0;\n    memset(g_%[1]ss, 0, sizeof(g_%[1]ss));\n", n.Prefix)},
		{Name: "ProcessFunction", Description: "Processing function implementation", HasDefault: true,
			Default: fmt.Sprintf("    // Process the data\n"+
				"    if (data == NULL || size == 0) {\n"+
				"        return -1;\n"+
				"    }\n"+
				"    \n"+
				"    // Copy data to global storage\n"+
				"    if (g_count < MAX_BUFFER_SIZE) {\n"+
				"        g_%ss[g_count++] = *data;\n"+
				"        return 0;\n"+
				"    }\n"+
				"    \n"+
				"    return -1;\n", n.Prefix)},
		{Name: "CleanupFunction", Description: "Cleanup function implementation", HasDefault: true,
			Default: "    // Clean up resources\n    g_count = 0;\n"},
	}
}

// Register adds defs to reg. Overrides replace a definition of the same
// name in place and add the rest at the end. It returns the names that came
// from overrides only.
func Register(reg *section.Registry, defs, overrides []section.Definition) ([]string, error) {
	byName := make(map[string]section.Definition, len(overrides))
	for _, o := range overrides {
		byName[o.Name] = o
	}

	builtin := make(map[string]bool, len(defs))
	for _, d := range defs {
		builtin[d.Name] = true
		if o, ok := byName[d.Name]; ok {
			d = merge(d, o)
		}
		if err := define(reg, d); err != nil {
			return nil, err
		}
	}

	var extra []string
	for _, o := range overrides {
		if builtin[o.Name] {
			continue
		}
		if err := define(reg, o); err != nil {
			return nil, err
		}
		extra = append(extra, o.Name)
	}
	return extra, nil
}

// merge keeps base's description and default unless o sets its own.
func merge(base, o section.Definition) section.Definition {
	if o.Description != "" {
		base.Description = o.Description
	}
	if o.HasDefault {
		base.Default, base.HasDefault = o.Default, true
	}
	return base
}

func define(reg *section.Registry, d section.Definition) error {
	if d.HasDefault {
		return reg.DefineWithDefault(d.Name, d.Description, d.Default)
	}
	return reg.DefineWithDescription(d.Name, d.Description)
}
