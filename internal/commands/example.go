package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume/generator"
	"github.com/simonhull/firebird-suite/plume/internal/cgen"
	"github.com/simonhull/firebird-suite/plume/output"
)

// ExampleCmd creates and returns the 'example' command
func ExampleCmd() *cobra.Command {
	var name string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "example [dir]",
		Short: "Write the example C header and source",
		Long: `Write <name>.h and <name>.c into dir (default: the current directory).

Run it again after editing the USER CODE sections to see them kept.

Examples:
  plume example
  plume example demo --name sensor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			ops, err := cgen.Example(dir, name)
			if err != nil {
				return err
			}

			if err := generator.Execute(context.Background(), ops, generator.ExecuteOptions{
				DryRun: dryRun,
				Writer: output.Writer(),
			}); err != nil {
				return err
			}

			if !dryRun {
				output.Success(fmt.Sprintf("Example written: %s.h, %s.c", name, name))
				output.Info("Edit a USER CODE section and run this again; your edit stays.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "example", "Base name of the generated files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")

	return cmd
}
