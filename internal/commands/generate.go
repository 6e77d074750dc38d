package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume/generator"
	"github.com/simonhull/firebird-suite/plume/input"
	"github.com/simonhull/firebird-suite/plume/internal/cgen"
	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/internal/hooks"
	"github.com/simonhull/firebird-suite/plume/output"
)

// ErrOrphans stops generation when captured sections would be dropped.
var ErrOrphans = errors.New("orphaned user sections")

// GenerateCmd creates and returns the 'generate' command
func GenerateCmd() *cobra.Command {
	var configPath string
	var dryRun, force, skip, diff, interactiveFlag, prune, noHooks bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate every file in the manifest",
		Long: `Regenerate the files listed in plume.yml.

Each file's user sections are captured first and written back into the
regenerated file. Files whose bytes would not change are left alone.

A section found in a file but no longer defined in the manifest is an
orphan. Generation stops when there are orphans, unless --prune is given,
prune_orphans is set in the manifest, or you confirm at the prompt.

After writing, the manifest's post_generate commands run over the files that
changed (for example "clang-format -i {files}").

Conflict handling for changed files:
  (default)      overwrite, user sections are carried over
  --skip         keep every changed file as it is
  --diff         show the diff, then ask
  --interactive  ask for each changed file

Examples:
  plume generate
  plume generate --dry-run
  plume generate -c firmware/plume.yml --diff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := config.Load(configPath)
			if err != nil {
				return err
			}
			output.Verbose(fmt.Sprintf("Loaded %s: %s, %s", configPath,
				plural(len(m.Files), "file"), plural(len(m.Embeds), "embed")))

			resolver, err := generator.NewResolver(generator.ResolveOptions{
				Force:       force,
				Skip:        skip,
				Diff:        diff,
				Interactive: interactiveFlag,
				Out:         output.Writer(),
			})
			if err != nil {
				return err
			}

			plan, err := cgen.NewGenerator(m, resolver).Plan()
			if err != nil {
				return err
			}

			if err := checkOrphans(plan.Orphans, prune || m.PruneOrphans); err != nil {
				return err
			}

			ctx := context.Background()
			err = generator.Execute(ctx, plan.Operations, generator.ExecuteOptions{
				DryRun: dryRun,
				Force:  force,
				Writer: output.Writer(),
			})
			if errors.Is(err, generator.ErrCancelled) {
				output.Warn("Generation cancelled, nothing was written")
				return nil
			}
			if err != nil {
				return err
			}

			if dryRun {
				output.Info(fmt.Sprintf("Dry run: %s checked", plural(len(plan.Operations), "file")))
				return nil
			}

			if len(m.PostGenerate) > 0 && !noHooks {
				runner := hooks.NewExecutor(&hooks.Options{
					Stdout:  output.Writer(),
					Stderr:  output.Writer(),
					Spinner: interactive(),
				})
				if err := runner.RunAll(ctx, m.PostGenerate, generator.ChangedPaths(plan.Operations)); err != nil {
					return err
				}
			}

			output.Success(fmt.Sprintf("Generated %s", plural(len(plan.Operations), "file")))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Path to the manifest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite changed files without asking")
	cmd.Flags().BoolVar(&skip, "skip", false, "Keep changed files as they are")
	cmd.Flags().BoolVar(&diff, "diff", false, "Show a diff for each changed file, then ask")
	cmd.Flags().BoolVar(&interactiveFlag, "interactive", false, "Ask what to do with each changed file")
	cmd.Flags().BoolVar(&prune, "prune", false, "Drop orphaned user sections")
	cmd.Flags().BoolVar(&noHooks, "no-hooks", false, "Do not run the manifest's post_generate commands")

	return cmd
}

// checkOrphans lists orphans and decides whether generation may drop them.
func checkOrphans(orphans []cgen.Orphan, prune bool) error {
	if len(orphans) == 0 {
		return nil
	}

	for _, o := range orphans {
		output.Warn(fmt.Sprintf("%s:%d: user section '%s' is no longer defined", o.Path, o.Line, o.Name))
	}

	switch {
	case prune:
		output.Info(fmt.Sprintf("Dropping %s", plural(len(orphans), "orphaned section")))
		return nil
	case interactive() && input.Confirm(fmt.Sprintf("Drop %s?", plural(len(orphans), "orphaned section")), false):
		return nil
	}

	output.Step("Define them in the manifest again to keep them, or rerun with --prune")
	return fmt.Errorf("%w: %d would be lost", ErrOrphans, len(orphans))
}
