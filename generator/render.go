package generator

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"github.com/simonhull/firebird-suite/plume/section"
)

// Renderer handles template parsing and rendering with caching.
//
// Templates reach user sections through two functions bound to the Store
// passed at render time:
//
//	{{ section "Includes" -}}
//	{{ sectionIndent "    " "InitFunction" -}}
//
// Both emit the section's description comment, if it has one, then the
// markers around the resolved body, ending in a newline.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex // Protect cache for concurrent access
}

// NewRenderer creates a renderer with built-in helper functions
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders a template from a string.
// The name is used for caching and error messages.
func (r *Renderer) RenderString(name, templateStr string, data any, store *section.Store) ([]byte, error) {
	tmpl, err := r.load("string:"+name, name, func() ([]byte, error) {
		return []byte(templateStr), nil
	})
	if err != nil {
		return nil, err
	}
	return r.executeTemplate(tmpl, data, store)
}

// RenderFS renders a template from a filesystem, usually an embed.FS.
func (r *Renderer) RenderFS(fsys fs.FS, path string, data any, store *section.Store) ([]byte, error) {
	tmpl, err := r.load("fs:"+path, path, func() ([]byte, error) {
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template from fs '%s': %w", path, err)
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return r.executeTemplate(tmpl, data, store)
}

// RenderFile renders a template from a file path (custom templates in the
// manifest).
func (r *Renderer) RenderFile(path string, data any, store *section.Store) ([]byte, error) {
	tmpl, err := r.load("file:"+path, path, func() ([]byte, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template file '%s': %w", path, err)
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return r.executeTemplate(tmpl, data, store)
}

// ClearCache clears the template cache
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

// load returns the cached template for key, parsing it on a miss.
func (r *Renderer) load(key, name string, read func() ([]byte, error)) (*template.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	text, err := read()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(r.funcMap).Funcs(sectionFuncs(nil)).Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
	}

	r.mu.Lock()
	r.cache[key] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

// executeTemplate runs a clone of tmpl with the section functions bound to
// store, so cached templates can be shared between renders.
func (r *Renderer) executeTemplate(tmpl *template.Template, data any, store *section.Store) ([]byte, error) {
	bound, err := tmpl.Clone()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare template '%s': %w", tmpl.Name(), err)
	}
	bound.Funcs(sectionFuncs(store))

	var buf bytes.Buffer
	if err := bound.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

// sectionFuncs writes a section the way codewriter.Writer.Section does: the
// description as a comment line when there is one, then the block.
func sectionFuncs(store *section.Store) template.FuncMap {
	sectionIndent := func(indent, name string) (string, error) {
		if store == nil {
			return "", fmt.Errorf("no user sections available for '%s'", name)
		}
		var b strings.Builder
		if def, ok := store.Registry().Lookup(name); ok && def.Description != "" {
			b.WriteString(indent + "/* " + def.Description + " */\n")
		}
		if err := store.EmitIndented(&b, name, indent); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	return template.FuncMap{
		"section": func(name string) (string, error) {
			return sectionIndent("", name)
		},
		"sectionIndent": sectionIndent,
	}
}

// defaultFuncMap returns the default template function map
func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		// Case conversion
		"pascalCase": PascalCase, // sensor_driver → SensorDriver
		"camelCase":  CamelCase,  // sensor_driver → sensorDriver
		"snakeCase":  SnakeCase,  // SensorDriver → sensor_driver
		"macroCase":  MacroCase,  // sensor-driver.h → SENSOR_DRIVER_H

		// String manipulation
		"quote":     Quote, // test → "test"
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"split":     strings.Split,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,

		// Utilities
		"dict":    Dict,    // Create map for passing multiple values
		"default": Default, // Provide default value if nil/empty
	}
}

// PascalCase converts snake_case or camelCase to PascalCase.
// Examples: sensor_driver → SensorDriver, uartPort → UartPort
func PascalCase(s string) string {
	if s == "" {
		return ""
	}

	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			parts[i] = capitalize(part)
		}
		return strings.Join(parts, "")
	}
	return capitalize(s)
}

// CamelCase converts snake_case or PascalCase to camelCase.
// Examples: sensor_driver → sensorDriver, SensorDriver → sensorDriver
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// SnakeCase converts PascalCase or camelCase to snake_case.
// Examples: SensorDriver → sensor_driver, UARTPort → uart_port
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "_") {
		return strings.ToLower(s)
	}

	runes := []rune(s)
	var result strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

// MacroCase turns a name or file name into a C macro identifier. Every run
// of characters that cannot appear in an identifier becomes one underscore.
// Examples: sensor-driver.h → SENSOR_DRIVER_H, SensorDriver → SENSOR_DRIVER
func MacroCase(s string) string {
	var result strings.Builder
	pendingSep := false
	for _, r := range SnakeCase(s) {
		if r == '_' || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pendingSep = result.Len() > 0
			continue
		}
		if pendingSep {
			result.WriteRune('_')
			pendingSep = false
		}
		result.WriteRune(unicode.ToUpper(r))
	}
	out := result.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Quote wraps a string in double quotes, escaping as C and Go agree on.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Dict creates a map from alternating key-value pairs.
// Usage in template: {{ template "partial" (dict "key1" val1 "key2" val2) }}
func Dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires an even number of arguments")
	}

	result := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T at position %d", values[i], i)
		}
		result[key] = values[i+1]
	}
	return result, nil
}

// Default returns defaultVal if val is nil, an empty string or an empty
// collection. Numeric zero is kept.
func Default(defaultVal, val any) any {
	switch v := val.(type) {
	case nil:
		return defaultVal
	case string:
		if v == "" {
			return defaultVal
		}
	case []any:
		if len(v) == 0 {
			return defaultVal
		}
	case []string:
		if len(v) == 0 {
			return defaultVal
		}
	case map[string]any:
		if len(v) == 0 {
			return defaultVal
		}
	}
	return val
}
