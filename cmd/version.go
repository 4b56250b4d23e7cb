// =============================================================================
// Invoice Regrouper - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   regrouper version
//
// OUTPUT:
//   Invoice Regrouper
//   Version:    1.0.0
//   Commit:     3f9c2d1
//   Build Date: 2024-01-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags, e.g.:
//   go build -ldflags "-X 'cmd.Version=1.0.0' -X 'cmd.GitCommit=$(git rev-parse --short HEAD)'"

// Version is the application version.
var Version = "1.0.0"

// GitCommit is the abbreviated hash of the commit the binary was built from.
var GitCommit = "unknown"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, source commit, build date, and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Invoice Regrouper")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Commit:     %s\n", GitCommit)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
	},
}

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}
