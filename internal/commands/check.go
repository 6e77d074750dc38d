package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/plume/internal/cgen"
	"github.com/simonhull/firebird-suite/plume/internal/config"
	"github.com/simonhull/firebird-suite/plume/internal/sources"
	"github.com/simonhull/firebird-suite/plume/output"
	"github.com/simonhull/firebird-suite/plume/section"
)

// ErrCheckFailed is returned when at least one file has malformed markers.
var ErrCheckFailed = errors.New("check failed")

type checkReport struct {
	Files []fileReport `yaml:"files"`
}

type fileReport struct {
	Path     string          `yaml:"path"`
	Error    string          `yaml:"error,omitempty"`
	Sections []sectionReport `yaml:"sections,omitempty"`
}

type sectionReport struct {
	Name   string `yaml:"name"`
	Line   int    `yaml:"line"`
	Bytes  int    `yaml:"bytes"`
	Status string `yaml:"status"`
}

// CheckCmd creates and returns the 'check' command
func CheckCmd() *cobra.Command {
	var configPath string
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "List the user sections in files without changing them",
		Long: `Scan files for USER CODE sections and report what a regeneration would keep.

With no arguments every file in the manifest is checked. A directory argument
is searched for C and C++ files, skipping build and hidden directories. Sections are
reported as known (defined in the manifest), orphan (would be dropped), or
unchecked (the file is not in the manifest). Malformed markers fail the check.

Examples:
  plume check
  plume check src/example.c --yaml
  plume check src include`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registries, err := manifestRegistries(configPath, len(args) == 0)
			if err != nil {
				return err
			}

			paths := registries.paths
			if len(args) > 0 {
				paths = nil
				for _, arg := range args {
					found, err := sources.Find(arg, sources.Options{})
					if err != nil {
						return err
					}
					paths = append(paths, found...)
				}
			}

			report := checkFiles(paths, registries)

			if asYAML {
				data, err := yaml.Marshal(report)
				if err != nil {
					return fmt.Errorf("marshaling report: %w", err)
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}

			var failed int
			for _, f := range report.Files {
				if f.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %s with malformed markers", ErrCheckFailed, plural(failed, "file"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile, "Path to the manifest")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the report as YAML")

	return cmd
}

// registrySet maps cleaned file paths to their registries, remembering
// manifest order.
type registrySet struct {
	byPath map[string]*section.Registry
	paths  []string
}

func (r *registrySet) lookup(path string) (*section.Registry, bool) {
	reg, ok := r.byPath[filepath.Clean(path)]
	return reg, ok
}

// manifestRegistries loads the manifest when there is one. required makes a
// missing manifest an error.
func manifestRegistries(configPath string, required bool) (*registrySet, error) {
	set := &registrySet{byPath: make(map[string]*section.Registry)}

	m, err := config.Load(configPath)
	if err != nil {
		if required {
			return nil, err
		}
		output.Verbose(fmt.Sprintf("No manifest used: %v", err))
		return set, nil
	}

	for _, f := range m.Files {
		reg, _, err := cgen.FileRegistry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		path := filepath.Clean(m.Resolve(f.Path))
		set.byPath[path] = reg
		set.paths = append(set.paths, path)
	}
	return set, nil
}

func checkFiles(paths []string, registries *registrySet) checkReport {
	var report checkReport
	for _, path := range paths {
		reg, inManifest := registries.lookup(path)
		if !inManifest {
			reg = section.NewRegistry()
		}

		store := section.NewStore(reg)
		fr := fileReport{Path: path}
		capture, err := store.CaptureFile(path)
		if err != nil {
			fr.Error = err.Error()
			report.Files = append(report.Files, fr)
			continue
		}

		for _, c := range capture.Sections() {
			status := "unchecked"
			if inManifest {
				status = "orphan"
				if reg.IsDefined(c.Name) {
					status = "known"
				}
			}
			fr.Sections = append(fr.Sections, sectionReport{
				Name:   c.Name,
				Line:   c.Span.Line,
				Bytes:  len(c.Content),
				Status: status,
			})
		}
		report.Files = append(report.Files, fr)
	}
	return report
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	orphanCellStyle  = tableCellStyle.Foreground(lipgloss.Color("yellow"))
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fileTitleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	fileErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red"))
)

func printReport(w io.Writer, report checkReport) {
	for _, f := range report.Files {
		fmt.Fprintln(w, fileTitleStyle.Render(f.Path))
		if f.Error != "" {
			fmt.Fprintln(w, fileErrorStyle.Render("  "+f.Error))
			continue
		}
		if len(f.Sections) == 0 {
			fmt.Fprintln(w, "  no user sections")
			continue
		}

		rows := make([][]string, 0, len(f.Sections))
		for _, s := range f.Sections {
			rows = append(rows, []string{s.Name, strconv.Itoa(s.Line), strconv.Itoa(s.Bytes), s.Status})
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tableBorderStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return tableHeaderStyle
				case rows[row][3] == "orphan":
					return orphanCellStyle
				}
				return tableCellStyle
			}).
			Headers("SECTION", "LINE", "BYTES", "STATUS").
			Rows(rows...)
		fmt.Fprintln(w, t.Render())
	}
}
