// Package generator turns rendered content into files on disk.
//
// # Features
//
//   - Template rendering with helper functions and user-section functions
//   - Conflict resolution (interactive, --force, --skip, --diff)
//   - Myers diff algorithm for file comparison
//   - Transactions that restore files when a run fails halfway
//
// # Regenerating a file
//
// Capture the user sections of the current file, render, then write:
//
//	store := section.NewStore(reg)
//	if _, err := store.CaptureFile(path); err != nil {
//	    return err
//	}
//	content, err := renderer.RenderFS(templates.FS, "c-source.tmpl", data, store)
//	if err != nil {
//	    return err
//	}
//	ops := []generator.Operation{
//	    &generator.RegenerateFileOp{Path: path, Content: content, Mode: 0644},
//	}
//	return generator.Execute(ctx, ops, generator.ExecuteOptions{})
//
// Execute validates every operation before writing anything. If a write
// fails, files already written in the run get their previous bytes back.
package generator
