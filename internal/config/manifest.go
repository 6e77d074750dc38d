// Package config loads and writes plume.yml, the generation manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/plume/section"
)

// DefaultFile is the manifest looked for when no --config is given.
const DefaultFile = "plume.yml"

// Manifest lists the files plume generates.
type Manifest struct {
	// PruneOrphans drops captured sections that are no longer registered
	// instead of aborting generation.
	PruneOrphans bool `mapstructure:"prune_orphans" yaml:"prune_orphans"`

	Files  []FileSpec  `mapstructure:"files" yaml:"files"`
	Embeds []EmbedSpec `mapstructure:"embeds" yaml:"embeds,omitempty"`

	// PostGenerate commands run after files were written. {files} expands to
	// the written paths.
	PostGenerate []string `mapstructure:"post_generate" yaml:"post_generate,omitempty"`

	// Dir is the directory relative paths resolve against.
	Dir string `mapstructure:"-" yaml:"-"`
}

// FileSpec is one generated file.
type FileSpec struct {
	Path string `mapstructure:"path" yaml:"path"`
	// Template is a built-in template name (c-header, c-source) or a path to a
	// template file.
	Template string `mapstructure:"template" yaml:"template"`
	// Guard is the include guard for headers. Derived from Path when empty.
	Guard string `mapstructure:"guard" yaml:"guard,omitempty"`
	// Header is the header a source file includes. Derived from Path when empty.
	Header   string        `mapstructure:"header" yaml:"header,omitempty"`
	Sections []SectionSpec `mapstructure:"sections" yaml:"sections,omitempty"`
}

// SectionSpec registers or overrides a user section.
type SectionSpec struct {
	Name        string  `mapstructure:"name" yaml:"name"`
	Description string  `mapstructure:"description" yaml:"description,omitempty"`
	Default     *string `mapstructure:"default" yaml:"default,omitempty"`
}

// EmbedSpec is a hand-written file with generated blocks inside it.
type EmbedSpec struct {
	Path   string      `mapstructure:"path" yaml:"path"`
	Blocks []BlockSpec `mapstructure:"blocks" yaml:"blocks"`
}

// BlockSpec is one generated block.
type BlockSpec struct {
	Tool    string `mapstructure:"tool" yaml:"tool"`
	Purpose string `mapstructure:"purpose" yaml:"purpose"`
	Content string `mapstructure:"content" yaml:"content"`
}

// Load reads a manifest in any format viper understands (yaml, toml, json).
// PLUME_PRUNE_ORPHANS overrides prune_orphans.
func Load(path string) (*Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found. Run 'plume init' to create one", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("PLUME")
	v.AutomaticEnv()
	v.SetDefault("prune_orphans", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := v.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Save writes m as YAML.
func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultManifest is what `plume init` writes: the example header and
// source pair.
func DefaultManifest() *Manifest {
	return &Manifest{
		Files: []FileSpec{
			{Path: "example.h", Template: "c-header"},
			{Path: "example.c", Template: "c-source", Header: "example.h"},
		},
	}
}

// Validate reports every problem in the manifest at once.
func (m *Manifest) Validate() error {
	var errs []error
	if len(m.Files) == 0 && len(m.Embeds) == 0 {
		errs = append(errs, errors.New("no files or embeds to generate"))
	}

	paths := make(map[string]bool)
	claim := func(what, p string) {
		key := filepath.Clean(p)
		if paths[key] {
			errs = append(errs, fmt.Errorf("%s: %s is listed more than once", what, p))
		}
		paths[key] = true
	}

	for i, f := range m.Files {
		what := fmt.Sprintf("files[%d]", i)
		if strings.TrimSpace(f.Path) == "" {
			errs = append(errs, fmt.Errorf("%s: path is required", what))
		} else {
			claim(what, f.Path)
		}
		if strings.TrimSpace(f.Template) == "" {
			errs = append(errs, fmt.Errorf("%s: template is required", what))
		}

		names := make(map[string]bool)
		for j, s := range f.Sections {
			if err := section.ValidateName(s.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s.sections[%d]: %w", what, j, err))
				continue
			}
			if err := section.ValidateDescription(s.Description); err != nil {
				errs = append(errs, fmt.Errorf("%s.sections[%d]: %w", what, j, err))
			}
			if names[s.Name] {
				errs = append(errs, fmt.Errorf("%s.sections[%d]: %w: '%s'", what, j, section.ErrDuplicateSection, s.Name))
			}
			names[s.Name] = true
		}
	}

	for i, e := range m.Embeds {
		what := fmt.Sprintf("embeds[%d]", i)
		if strings.TrimSpace(e.Path) == "" {
			errs = append(errs, fmt.Errorf("%s: path is required", what))
		} else {
			claim(what, e.Path)
		}
		if len(e.Blocks) == 0 {
			errs = append(errs, fmt.Errorf("%s: no blocks", what))
		}
		for j, b := range e.Blocks {
			if b.Tool == "" || b.Purpose == "" || strings.Contains(b.Tool+b.Purpose, " ") {
				errs = append(errs, fmt.Errorf("%s.blocks[%d]: tool and purpose must be single words", what, j))
				continue
			}
			if err := section.ValidateName(section.BlockName(b.Tool, b.Purpose)); err != nil {
				errs = append(errs, fmt.Errorf("%s.blocks[%d]: %w", what, j, err))
			}
		}
	}

	for i, h := range m.PostGenerate {
		if strings.TrimSpace(h) == "" {
			errs = append(errs, fmt.Errorf("post_generate[%d]: empty command", i))
		}
	}

	return errors.Join(errs...)
}

// Resolve returns p relative to the manifest's directory.
func (m *Manifest) Resolve(p string) string {
	if filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
