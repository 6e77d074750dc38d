package section

import "fmt"

// Definition is a registered section.
type Definition struct {
	Name        string
	Description string // Optional comment written above the section by callers
	Default     string // Body used when nothing was captured
	HasDefault  bool
}

// Registry holds the sections known to one generation pass.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]Definition),
	}
}

// Define registers a section with no description and no default.
func (r *Registry) Define(name string) error {
	return r.add(Definition{Name: name})
}

// DefineWithDescription registers a section with a description and no default.
func (r *Registry) DefineWithDescription(name, description string) error {
	return r.add(Definition{Name: name, Description: description})
}

// DefineWithDefault registers a section with default content. An empty
// defaultContent is still a default: the section resolves with OriginDefault.
func (r *Registry) DefineWithDefault(name, description, defaultContent string) error {
	return r.add(Definition{
		Name:        name,
		Description: description,
		Default:     defaultContent,
		HasDefault:  true,
	})
}

func (r *Registry) add(def Definition) error {
	if err := ValidateName(def.Name); err != nil {
		return err
	}
	if err := ValidateDescription(def.Description); err != nil {
		return err
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("%w: '%s' is already defined", ErrDuplicateSection, def.Name)
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// IsDefined reports whether name has been registered.
func (r *Registry) IsDefined(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered sections.
func (r *Registry) Len() int {
	return len(r.order)
}
