package generator

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun bool
	Force  bool
	Writer io.Writer // Where to write output (defaults to os.Stdout)
}

// Execute runs operations with validation. Nothing is written unless every
// operation validates; if one fails to execute, files written so far are
// restored.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	// Phase 1: Validate all operations
	for _, op := range ops {
		if err := op.Validate(ctx, opts.Force); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	if opts.DryRun {
		for _, op := range ops {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
		}
		return nil
	}

	// Phase 2: Execute inside a transaction
	tx := NewTransaction()
	for _, op := range ops {
		if t, ok := op.(Targeted); ok {
			if err := tx.Snapshot(t.TargetPath()); err != nil {
				return rollback(tx, fmt.Errorf("execution failed: %w", err))
			}
		}
		if err := op.Execute(ctx); err != nil {
			return rollback(tx, fmt.Errorf("execution failed: %w", err))
		}
		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}

	return tx.Commit()
}

func rollback(tx *Transaction, cause error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("%w (rollback: %v)", cause, err)
	}
	return cause
}
