package cgen

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/plume/generator"
	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/section"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// FileData is what templates see.
type FileData struct {
	Path string
	Names
	// Extra lists manifest sections the layout does not place.
	Extra []string
}

// Orphan is a captured section whose name is no longer registered. Its
// content is dropped if generation goes ahead.
type Orphan struct {
	Path string
	Name string
	Line int
}

// Plan is the result of preparing a manifest.
type Plan struct {
	Operations []generator.Operation
	Orphans    []Orphan
}

// Generator turns a manifest into file operations.
type Generator struct {
	manifest *config.Manifest
	renderer *generator.Renderer
	resolver *generator.Resolver
}

// NewGenerator creates a generator. resolver may be nil to overwrite
// changed files without asking.
func NewGenerator(m *config.Manifest, resolver *generator.Resolver) *Generator {
	return &Generator{
		manifest: m,
		renderer: generator.NewRenderer(),
		resolver: resolver,
	}
}

// Plan captures every file's user sections and renders its new content.
// Nothing is written.
func (g *Generator) Plan() (*Plan, error) {
	plan := &Plan{}

	for _, f := range g.manifest.Files {
		op, orphans, err := g.planFile(f)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", f.Path, err)
		}
		plan.Operations = append(plan.Operations, op)
		plan.Orphans = append(plan.Orphans, orphans...)
	}

	for _, e := range g.manifest.Embeds {
		op, err := g.planEmbed(e)
		if err != nil {
			return nil, fmt.Errorf("embedding into %s: %w", e.Path, err)
		}
		plan.Operations = append(plan.Operations, op)
	}

	return plan, nil
}

// FileRegistry builds the registry for a manifest entry: the sections of its
// built-in layout, if any, merged with the entry's own. It also returns the
// template data for the entry.
func FileRegistry(f config.FileSpec) (*section.Registry, FileData, error) {
	names := NamesFor(f.Path)
	if f.Guard != "" {
		names.Guard = f.Guard
	}
	if f.Header != "" {
		names.Header = f.Header
	}

	var base []section.Definition
	if layout, ok := LookupLayout(f.Template); ok {
		base = layout.Sections(names)
	}

	reg := section.NewRegistry()
	extra, err := Register(reg, base, Overrides(f.Sections))
	if err != nil {
		return nil, FileData{}, err
	}
	return reg, FileData{Path: f.Path, Names: names, Extra: extra}, nil
}

func (g *Generator) planFile(f config.FileSpec) (generator.Operation, []Orphan, error) {
	path := g.manifest.Resolve(f.Path)
	reg, data, err := FileRegistry(f)
	if err != nil {
		return nil, nil, err
	}

	store := section.NewStore(reg)
	capture, err := store.CaptureFile(path)
	if err != nil {
		return nil, nil, err
	}

	var orphans []Orphan
	for _, name := range store.Orphans() {
		c, _ := capture.Get(name)
		orphans = append(orphans, Orphan{Path: path, Name: name, Line: c.Span.Line})
	}

	var content []byte
	if layout, builtin := LookupLayout(f.Template); builtin {
		content, err = g.renderer.RenderFS(templatesFS, layout.File, data, store)
	} else {
		content, err = g.renderer.RenderFile(g.manifest.Resolve(f.Template), data, store)
	}
	if err != nil {
		return nil, nil, err
	}

	return &generator.RegenerateFileOp{
		Path:     path,
		Content:  content,
		Mode:     0644,
		Resolver: g.resolver,
	}, orphans, nil
}

func (g *Generator) planEmbed(e config.EmbedSpec) (generator.Operation, error) {
	emb := section.NewEmbedder()
	for _, b := range e.Blocks {
		if err := emb.Set(b.Tool, b.Purpose, b.Content); err != nil {
			return nil, err
		}
	}
	return &generator.EmbedFileOp{
		Path:     g.manifest.Resolve(e.Path),
		Embedder: emb,
		Resolver: g.resolver,
	}, nil
}

// Overrides converts manifest section entries to definitions.
func Overrides(specs []config.SectionSpec) []section.Definition {
	defs := make([]section.Definition, 0, len(specs))
	for _, s := range specs {
		d := section.Definition{Name: s.Name, Description: s.Description}
		if s.Default != nil {
			d.Default, d.HasDefault = *s.Default, true
		}
		defs = append(defs, d)
	}
	return defs
}

// Example plans the example header and source in dir, written with
// codewriter rather than a template. User sections of a previous version are
// kept; a section the example does not define is an error.
func Example(dir, name string) ([]generator.Operation, error) {
	writers := []struct {
		layout Layout
		ext    string
		write  func(io.Writer, *section.Store, Names) error
	}{
		{layouts[TemplateHeader], ".h", WriteHeader},
		{layouts[TemplateSource], ".c", WriteSource},
	}

	var ops []generator.Operation
	for _, wr := range writers {
		path := filepath.Join(dir, name+wr.ext)
		names := NamesFor(path)

		reg, err := NewRegistry(wr.layout, names)
		if err != nil {
			return nil, err
		}
		store := section.NewStore(reg)
		if _, err := store.CaptureFile(path); err != nil {
			return nil, err
		}
		if orphans := store.Orphans(); len(orphans) > 0 {
			return nil, fmt.Errorf("%s has sections the example does not define: %s",
				path, strings.Join(orphans, ", "))
		}

		var buf bytes.Buffer
		if err := wr.write(&buf, store, names); err != nil {
			return nil, fmt.Errorf("generating %s: %w", path, err)
		}
		ops = append(ops, &generator.RegenerateFileOp{Path: path, Content: buf.Bytes(), Mode: 0644})
	}
	return ops, nil
}
