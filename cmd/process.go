// =============================================================================
// Invoice Regrouper - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the full pipeline for
// one or more invoices: parse, verify, categorize, plan-compare, locate
// pages, assemble the regrouped PDF, archive.
//
// COMMAND USAGE:
//   regrouper process [flags]
//
// FLAGS:
//   --all    : Process every invoice in the data directory
//   --file   : Process a single named invoice file instead of discovering
//
// Without flags only the newest invoice (the last in lexicographic order,
// which the date-stamped provider naming makes the most recent period) is
// processed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/telcobill/invoice-regroup/internal/processor"
	"github.com/telcobill/invoice-regroup/internal/report"
	"github.com/telcobill/invoice-regroup/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processAll selects every discovered invoice instead of only the newest.
var processAll bool

// processFile names a single invoice file to process.
var processFile string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Regroup invoices into per-customer-group PDF documents",
	Long: `The process command scans the data directory for provider invoice XML
files, and for each selected invoice produces a regrouped PDF next to the
provider's paginated source PDF.

By default only the newest invoice is processed. Use --all to process every
invoice in the directory, or --file to name one explicitly.

On successful processing:
  - The regrouped PDF is written next to the source PDF
  - The invoice XML is moved to the archive directory (when configured)

On error:
  - Verification issues are written to a log file in the report directory
  - The invoice XML stays in place
  - Processing continues with the remaining invoices`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&processAll,
		"all",
		false,
		"Process every invoice in the data directory, not just the newest",
	)

	processCmd.Flags().StringVar(
		&processFile,
		"file",
		"",
		"Path to a specific invoice XML file to process",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess selects the invoices to work on and runs the pipeline over each
// of them in turn, printing a per-invoice status line and a final summary.
func runProcess() error {
	startTime := time.Now()

	fmt.Println("=== Invoice Regrouper ===")
	fmt.Println("Loading configuration...")

	cfg, err := loadMainConfig()
	if err != nil {
		return err
	}
	customers, plans, err := loadTables(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d customer group(s) and %d plan(s)\n", len(customers.Groups), len(plans))

	invoices, err := selectInvoices(cfg.DataDir, cfg.ArchiveDir, cfg.InvoiceSuffix)
	if err != nil {
		return err
	}
	if len(invoices) == 0 {
		fmt.Println("No invoice files found in the data directory.")
		return nil
	}

	fmt.Printf("Processing %d invoice(s)...\n\n", len(invoices))

	logger := processor.NewLogger(cfg.LogLevel, verbose)
	reporter := report.New(os.Stdout)

	var successCount, errorCount int
	for _, path := range invoices {
		result := processor.New(path, cfg, customers, plans, logger, reporter).Run()
		if result.Success {
			successCount++
			fmt.Printf("  ✓ %s -> %s (%d pages, %d subscribers)\n",
				filepath.Base(result.FilePath),
				filepath.Base(result.OutputFile),
				result.Stats.OutputPages,
				result.Stats.Subscribers,
			)
		} else {
			errorCount++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total invoices:  %d\n", len(invoices))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	if errorCount > 0 {
		return fmt.Errorf("%d of %d invoice(s) failed", errorCount, len(invoices))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// selectInvoices resolves the set of invoice files to process according to
// the --file and --all flags. Discovery returns paths in ascending name
// order, so the last entry is the newest billing period.
func selectInvoices(dataDir, archiveDir, invoiceSuffix string) ([]string, error) {
	if processFile != "" {
		if !utils.FileExists(processFile) {
			return nil, fmt.Errorf("invoice file %s does not exist", processFile)
		}
		return []string{processFile}, nil
	}

	fm := utils.NewFileManager(dataDir, archiveDir)
	invoices, err := fm.DiscoverInvoices(invoiceSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to discover invoices: %w", err)
	}
	if len(invoices) == 0 || processAll {
		return invoices, nil
	}
	return invoices[len(invoices)-1:], nil
}
