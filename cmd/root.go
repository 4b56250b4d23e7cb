// =============================================================================
// Invoice Regrouper - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (regrouper)
//   ├── processCmd (regrouper process)
//   ├── analyzeCmd (regrouper analyze)
//   ├── verifyCmd  (regrouper verify)
//   └── versionCmd (regrouper version)
//
// The root command owns the global flags (--config, --verbose) and the viper
// initialization that reads config.yaml before any subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/telcobill/invoice-regroup/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "regrouper",

	Short: "Invoice Regrouper - Rebuild provider invoices around customer groups",

	Long: `Invoice Regrouper is a CLI tool for resellers of a telecom provider's
subscriptions. It reads the provider's per-period invoice XML together with
the matching paginated PDF, regroups the subscriber charges into configured
customer groups, and writes a new PDF whose pages are reordered per group
with summary pages and group labels added.

Key Features:
  - Customer-group categorization with exact tax rounding-error correction
  - Per-subscriber recomputation of usage under every configured plan
  - Page location by phone number in the provider's paginated PDF
  - Single-pass document assembly with copied, overlaid and synthesized pages
  - Verification of invoice totals before any document is produced

Example Usage:
  regrouper process                    # Process the newest invoice in the data directory
  regrouper process --all              # Process every invoice in the data directory
  regrouper analyze --xlsx             # Cross-invoice plan comparison with an XLSX report
  regrouper verify                     # Check invoice totals without producing output`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig points viper at the configuration file and the environment.
// Reading is deferred to loadMainConfig so that a missing default file is
// only an error when a subcommand actually needs configuration.
func initConfig() {
	viper.SetConfigFile(cfgFile)
	viper.SetEnvPrefix("REGROUPER")
	viper.AutomaticEnv()

	// Boolean options with a true default cannot go through ApplyDefaults,
	// which cannot tell an explicit false from an unset field.
	viper.SetDefault("print_group_summary", true)
}

// =============================================================================
// CONFIGURATION LOADING HELPERS
// =============================================================================

// loadMainConfig reads config.yaml through viper and returns the validated
// main configuration. A missing file at the default path falls back to the
// documented defaults; an explicitly requested file must exist.
func loadMainConfig() (*config.MainConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) || cfgFile != "config.yaml" {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	var cfg config.MainConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", cfgFile, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadTables loads the customer-group and plan tables named by the main
// configuration.
func loadTables(cfg *config.MainConfig) (*config.Customers, config.Plans, error) {
	customers, err := config.LoadCustomers(cfg.CustomersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load customer groups: %w", err)
	}

	plans, err := config.LoadPlans(cfg.PlansFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load plans: %w", err)
	}

	return customers, plans, nil
}
