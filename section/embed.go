package section

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Embedder places generated blocks inside a hand-written file. It is the
// mirror image of Store: the file belongs to the user and only the regions
// between GENERATED CODE markers are rewritten.
//
//	/* GENERATED CODE BEGIN protogen messages */
//	...
//	/* GENERATED CODE END protogen messages */
type Embedder struct {
	registry *Registry
	store    *Store
}

// NewEmbedder creates an embedder with no blocks.
func NewEmbedder() *Embedder {
	reg := NewRegistry()
	return &Embedder{
		registry: reg,
		store:    NewStoreWithFormat(reg, GeneratedCode),
	}
}

// BlockName is the marker name for a tool's block.
func BlockName(tool, purpose string) string {
	return tool + " " + purpose
}

// Set registers the content for the block owned by tool for purpose.
func (e *Embedder) Set(tool, purpose, content string) error {
	for _, word := range []string{tool, purpose} {
		if strings.Contains(word, " ") {
			return fmt.Errorf("%w: '%s' must be a single word", ErrInvalidName, word)
		}
	}
	return e.registry.DefineWithDefault(BlockName(tool, purpose), "", content)
}

// Apply returns existing with every block replaced in place, and blocks that
// are not in the file yet appended at the end in the order they were set.
// A nil existing means the file does not exist yet.
func (e *Embedder) Apply(existing []byte) ([]byte, error) {
	capture, err := GeneratedCode.Scan(existing, e.registry.IsDefined)
	if err != nil {
		return nil, err
	}

	type replacement struct {
		span Span
		body string
	}
	var replacements []replacement
	var missing []string

	for _, name := range e.registry.Names() {
		c, found := capture.Get(name)
		if !found {
			missing = append(missing, name)
			continue
		}
		def, _ := e.registry.Lookup(name)
		replacements = append(replacements, replacement{span: c.Span, body: terminated(def.Default)})
	}

	sort.Slice(replacements, func(i, j int) bool {
		return replacements[i].span.Start < replacements[j].span.Start
	})

	var out bytes.Buffer
	out.Grow(len(existing))
	last := 0
	for _, r := range replacements {
		out.Write(existing[last:r.span.Start])
		out.WriteString(r.body)
		last = r.span.End
	}
	out.Write(existing[last:])

	for i, name := range missing {
		if out.Len() > 0 {
			if !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
				out.WriteByte('\n')
			}
			if existing != nil || i > 0 {
				out.WriteByte('\n')
			}
		}
		if err := e.store.Emit(&out, name); err != nil {
			return nil, err
		}
	}

	return out.Bytes(), nil
}

func terminated(body string) string {
	if body != "" && !strings.HasSuffix(body, "\n") {
		return body + "\n"
	}
	return body
}
