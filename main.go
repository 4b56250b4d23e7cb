// =============================================================================
// Invoice Regrouper - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Invoice Regrouper CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   regrouper process       - Regroup the newest invoice into a per-group PDF
//   regrouper analyze       - Compare subscriber usage against all plans
//   regrouper verify        - Check invoice consistency without output
//   regrouper version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/telcobill/invoice-regroup/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
