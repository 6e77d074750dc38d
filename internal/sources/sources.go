// Package sources finds C and C++ files in a directory tree.
package sources

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultIgnoreDirs are skipped unless Options.IgnoreDirs says otherwise.
var DefaultIgnoreDirs = []string{
	".git", ".svn", ".hg",
	"build", "out", "bin", "obj", "dist",
	".idea", ".vscode", ".vs",
}

// DefaultExtensions are the file extensions Find returns by default.
var DefaultExtensions = []string{".c", ".h", ".cc", ".cpp", ".cxx", ".hh", ".hpp", ".hxx"}

// Options configures Find.
type Options struct {
	IgnoreDirs     []string // default: DefaultIgnoreDirs
	Extensions     []string // default: DefaultExtensions
	IgnorePatterns []string // file name globs to skip, e.g. "*_test.c"
	IncludeHidden  bool
}

// Find returns the matching files under root in lexical order. A root that
// is a file is returned as is.
func Find(root string, opts Options) ([]string, error) {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	exts := opts.Extensions
	if exts == nil {
		exts = DefaultExtensions
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root && !d.IsDir() {
			found = append(found, path)
			return nil
		}

		name := d.Name()
		if path != root && !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && slices.Contains(ignoreDirs, name) {
				return filepath.SkipDir
			}
			return nil
		}

		if !slices.Contains(exts, strings.ToLower(filepath.Ext(name))) {
			return nil
		}
		for _, pattern := range opts.IgnorePatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				return nil
			}
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}
