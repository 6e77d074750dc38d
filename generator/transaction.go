package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Transaction remembers the state of files before they are overwritten so a
// failed generation run can put them back.
type Transaction struct {
	snapshots []snapshot
	seen      map[string]bool
	committed bool
}

// snapshot is a file as it was before the transaction touched it.
type snapshot struct {
	path    string
	content []byte
	mode    fs.FileMode
	existed bool
}

// NewTransaction creates an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{seen: make(map[string]bool)}
}

// Snapshot records path's current content. Only the first snapshot of a
// path counts.
func (t *Transaction) Snapshot(path string) error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}
	if t.seen[path] {
		return nil
	}

	s := snapshot{path: path}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", path, err)
	default:
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		s.content, s.mode, s.existed = content, info.Mode().Perm(), true
	}

	t.seen[path] = true
	t.snapshots = append(t.snapshots, s)
	return nil
}

// WriteFile snapshots path, then writes content to it.
func (t *Transaction) WriteFile(path string, content []byte, mode fs.FileMode) error {
	if err := t.Snapshot(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// Commit keeps every change. Rollback is a no-op afterwards.
func (t *Transaction) Commit() error {
	if t.committed {
		return fmt.Errorf("transaction already committed")
	}
	t.committed = true
	return nil
}

// Rollback restores every snapshotted file, newest first: prior content is
// written back and files that did not exist are removed. It returns the
// first restore error but keeps restoring the rest.
func (t *Transaction) Rollback() error {
	if t.committed {
		return nil
	}

	var first error
	for i := len(t.snapshots) - 1; i >= 0; i-- {
		s := t.snapshots[i]
		var err error
		if s.existed {
			err = os.WriteFile(s.path, s.content, s.mode)
		} else if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = rmErr
		}
		if err != nil && first == nil {
			first = fmt.Errorf("failed to restore %s: %w", s.path, err)
		}
	}
	t.snapshots = nil
	t.seen = make(map[string]bool)
	return first
}
