package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume/input"
	"github.com/simonhull/firebird-suite/plume/internal/cgen"
	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/output"
)

// InitCmd creates and returns the 'init' command
func InitCmd() *cobra.Command {
	var configPath, name string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a plume.yml manifest",
		Long: `Create a manifest for a header and source pair built from the
c-header and c-source templates.

Example:
  plume init --name sensor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			}

			if name == "" {
				name = "example"
				if interactive() {
					name = input.Prompt("Base name for the generated files", name)
				}
			}

			m := config.DefaultManifest()
			if name != "example" {
				header := name + ".h"
				m.Files = []config.FileSpec{
					{Path: header, Template: cgen.TemplateHeader},
					{Path: name + ".c", Template: cgen.TemplateSource, Header: header},
				}
			}
			if err := m.Validate(); err != nil {
				return err
			}

			if err := config.Save(configPath, m); err != nil {
				return err
			}

			paths := make([]string, len(m.Files))
			for i, f := range m.Files {
				paths[i] = f.Path
			}
			output.Success(fmt.Sprintf("Created %s", configPath))
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("plume generate    # writes %s", strings.Join(paths, ", ")))
			output.Step("add sections under files[].sections to extend the templates")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Path of the manifest to create")
	cmd.Flags().StringVar(&name, "name", "", "Base name of the generated files (default \"example\")")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing manifest")

	return cmd
}
