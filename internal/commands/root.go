package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume"
	"github.com/simonhull/firebird-suite/plume/output"
)

// RootCmd creates and returns the root command for the Plume CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "plume",
		Short: "Regenerate C code without losing hand-written sections",
		Long: `Plume generates C headers and sources from a manifest (plume.yml).

Code you write between USER CODE markers survives every regeneration:

  /* USER CODE BEGIN Includes */
  #include "board.h"
  /* USER CODE END Includes */

Plume can also keep GENERATED CODE blocks up to date inside files you own.

Learn more: https://github.com/simonhull/firebird-suite`,
		Version:       plume.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}

// VersionCmd prints the plume version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the plume version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plume version %s\n", plume.Version)
		},
	}
}

// NewApp returns the root command with every subcommand attached.
func NewApp() *cobra.Command {
	root := RootCmd()
	root.AddCommand(GenerateCmd())
	root.AddCommand(CheckCmd())
	root.AddCommand(ExampleCmd())
	root.AddCommand(InitCmd())
	root.AddCommand(VersionCmd())
	return root
}
