// =============================================================================
// Invoice Regrouper - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, which recomputes every
// subscriber's usage under every configured plan across all invoices in the
// data directory and prints the cross-invoice comparison. With --xlsx the
// same comparison is written as a workbook into the report directory.
//
// COMMAND USAGE:
//   regrouper analyze [flags]
//
// Analysis is read-only: no PDF is produced and no invoice is archived.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/telcobill/invoice-regroup/internal/plancompare"
	"github.com/telcobill/invoice-regroup/internal/report"
	"github.com/telcobill/invoice-regroup/internal/xmlparser"
	"github.com/telcobill/invoice-regroup/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// writeXLSX additionally writes the comparison as an XLSX workbook.
var writeXLSX bool

// =============================================================================
// ANALYZE COMMAND DEFINITION
// =============================================================================

// analyzeCmd represents the 'analyze' command.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare every subscriber's real cost against all configured plans",
	Long: `The analyze command parses every invoice in the data directory and, for
each subscriber and month, recomputes the usage charges under every
configured plan. The accumulated per-number totals are printed per customer
group together with the cheapest plan and the potential saving.

Subscribers whose plan cannot be determined (no plan fee row, or a plan
switch inside one invoice) are reported and skipped. With --xlsx the full
comparison matrix is also written to the report directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(
		&writeXLSX,
		"xlsx",
		false,
		"Write the comparison matrix as an XLSX workbook to the report directory",
	)
}

// =============================================================================
// MAIN ANALYSIS FUNCTION
// =============================================================================

// runAnalyze accumulates plan projections over every invoice and renders
// the comparison.
func runAnalyze() error {
	cfg, err := loadMainConfig()
	if err != nil {
		return err
	}
	customers, plans, err := loadTables(cfg)
	if err != nil {
		return err
	}

	fm := utils.NewFileManager(cfg.DataDir, cfg.ArchiveDir)
	invoices, err := fm.DiscoverInvoices(cfg.InvoiceSuffix)
	if err != nil {
		return fmt.Errorf("failed to discover invoices: %w", err)
	}
	if len(invoices) == 0 {
		fmt.Println("No invoice files found in the data directory.")
		return nil
	}

	fmt.Printf("Analyzing %d invoice(s)...\n\n", len(invoices))

	engine := plancompare.New(plans)
	reporter := report.New(os.Stdout)
	history := plancompare.History{}

	for _, path := range invoices {
		inv, err := xmlparser.ParseFile(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}

		reporter.Period(inv.Period())
		for i := range inv.Subscribers {
			proj, warnings := engine.Project(&inv.Subscribers[i])
			reporter.Warnings(warnings)
			history.Add(proj)
		}
	}

	fmt.Println()
	reporter.PlanComparison(history, customers, plans)

	if writeXLSX {
		if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		path := filepath.Join(cfg.ReportDir, utils.GenerateReportFileName("plan-comparison", ".xlsx"))
		if err := report.WritePlanMatrix(path, history, customers, plans); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("\nReport written to %s\n", path)
	}

	return nil
}
