// Package output provides styled terminal output for Plume.
//
// # Usage
//
//	output.Success("Regenerated include/example.h")
//	output.Warn("Orphaned section: Legacy")
//	output.Step("plume generate --prune")
//	output.Error("Failed to capture user sections")
//
// # Verbose Mode
//
// Enable verbose output for debugging:
//
//	output.SetVerbose(true)
//	output.Verbose("Captured 4 sections from include/example.h")
//
// # Styling
//
// Styling follows the rest of the Firebird Suite:
//
//   - Success: 🔥 green bold
//   - Error: ❌ red bold
//   - Warn: ⚠️ yellow bold
//   - Info: ℹ️ cyan
//   - Step: indented gray
//   - Verbose: 🔍 gray (when enabled)
package output
