package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/plume/section"
)

// Operation represents a file system operation that can be validated and executed.
//
// Validate checks if the operation would succeed without executing it, and
// settles any conflict with the file on disk. Parent directories are created
// as a side effect. force=true overwrites without consulting the resolver.
//
// Execute performs the operation. Only call it after Validate succeeds.
//
// Description returns a human-readable line for output
// (e.g. "Update src/example.c (812 bytes)").
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
}

// Targeted is implemented by operations that write a single file. The
// executor snapshots the target before Execute so it can roll back.
type Targeted interface {
	TargetPath() string
}

// Changer is implemented by operations that know, after Validate, whether
// Execute will change the file system.
type Changer interface {
	Changed() bool
}

// ChangedPaths returns the targets of ops that create or update their file.
// Call it after Validate.
func ChangedPaths(ops []Operation) []string {
	var paths []string
	for _, op := range ops {
		c, ok := op.(Changer)
		if !ok || !c.Changed() {
			continue
		}
		if t, ok := op.(Targeted); ok {
			paths = append(paths, t.TargetPath())
		}
	}
	return paths
}

type fileAction int

const (
	actionCreate fileAction = iota
	actionUpdate
	actionUnchanged
	actionSkip
)

// RegenerateFileOp writes regenerated content over a file.
//
// Validation behavior:
//   - Creates parent directories if they don't exist
//   - Rejects nil content (empty is OK)
//   - Marks the file unchanged when the bytes on disk already match
//   - Asks Resolver about a differing file unless force=true; a nil
//     Resolver overwrites
//
// Execution writes the file only for a create or update.
type RegenerateFileOp struct {
	Path     string
	Content  []byte
	Mode     fs.FileMode
	Resolver *Resolver

	action fileAction
}

func (op *RegenerateFileOp) Validate(ctx context.Context, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}

	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	existing, err := os.ReadFile(op.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		op.action = actionCreate
		return nil
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", op.Path, err)
	}

	if bytes.Equal(existing, op.Content) {
		op.action = actionUnchanged
		return nil
	}

	op.action = actionUpdate
	if force || op.Resolver == nil {
		return nil
	}

	resolution, err := op.Resolver.ResolveConflict(op.Path, existing, op.Content)
	if err != nil {
		return err
	}
	switch resolution {
	case Skip:
		op.action = actionSkip
	case Cancel:
		return ErrCancelled
	}
	return nil
}

func (op *RegenerateFileOp) Execute(ctx context.Context) error {
	if op.action == actionUnchanged || op.action == actionSkip {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mode := op.Mode
	if mode == 0 {
		mode = 0644
	}
	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(op.Path, op.Content, mode)
}

func (op *RegenerateFileOp) Description() string {
	switch op.action {
	case actionUpdate:
		return fmt.Sprintf("Update %s (%d bytes)", op.Path, len(op.Content))
	case actionUnchanged:
		return fmt.Sprintf("Unchanged %s", op.Path)
	case actionSkip:
		return fmt.Sprintf("Skip %s", op.Path)
	default:
		return fmt.Sprintf("Create %s (%d bytes)", op.Path, len(op.Content))
	}
}

func (op *RegenerateFileOp) TargetPath() string {
	return op.Path
}

func (op *RegenerateFileOp) Changed() bool {
	return op.action == actionCreate || op.action == actionUpdate
}

// EmbedFileOp refreshes the generated-code blocks of a hand-written file.
// The rest of the file is left untouched, and a missing file is created
// holding only the blocks.
type EmbedFileOp struct {
	Path     string
	Embedder *section.Embedder
	Mode     fs.FileMode
	Resolver *Resolver

	write *RegenerateFileOp
}

func (op *EmbedFileOp) Validate(ctx context.Context, force bool) error {
	if op.Embedder == nil {
		return fmt.Errorf("no embedder for file: %s", op.Path)
	}

	existing, err := os.ReadFile(op.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", op.Path, err)
	}

	content, err := op.Embedder.Apply(existing)
	if err != nil {
		return fmt.Errorf("failed to embed generated code in %s: %w", op.Path, err)
	}

	mode := op.Mode
	if info, statErr := os.Stat(op.Path); statErr == nil && mode == 0 {
		mode = info.Mode().Perm()
	}
	op.write = &RegenerateFileOp{Path: op.Path, Content: content, Mode: mode, Resolver: op.Resolver}
	return op.write.Validate(ctx, force)
}

func (op *EmbedFileOp) Execute(ctx context.Context) error {
	if op.write == nil {
		return fmt.Errorf("embed operation for %s was not validated", op.Path)
	}
	return op.write.Execute(ctx)
}

func (op *EmbedFileOp) Description() string {
	if op.write == nil {
		return fmt.Sprintf("Embed into %s", op.Path)
	}
	return op.write.Description()
}

func (op *EmbedFileOp) TargetPath() string {
	return op.Path
}

func (op *EmbedFileOp) Changed() bool {
	return op.write != nil && op.write.Changed()
}
