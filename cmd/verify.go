// =============================================================================
// Invoice Regrouper - Verify Command
// =============================================================================
//
// This file defines the 'verify' command, which checks every invoice's
// internal consistency (per-subscriber totals against the sum of the line
// items, unrecognized priced rows) without producing any output document.
//
// COMMAND USAGE:
//   regrouper verify
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/telcobill/invoice-regroup/internal/validation"
	"github.com/telcobill/invoice-regroup/internal/xmlparser"
	"github.com/telcobill/invoice-regroup/pkg/utils"
)

// =============================================================================
// VERIFY COMMAND DEFINITION
// =============================================================================

// verifyCmd represents the 'verify' command.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check invoice consistency without producing documents",
	Long: `The verify command parses every invoice in the data directory and checks
each subscriber's declared total against the sum of its charge lines, and
flags priced rows with unrecognized row codes.

Nothing is written; the command exits with an error when any invoice fails
the total check.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// =============================================================================
// MAIN VERIFICATION FUNCTION
// =============================================================================

func runVerify() error {
	cfg, err := loadMainConfig()
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

	var fatalCount int
	for _, path := range invoices {
		inv, err := xmlparser.ParseFile(path)
		if err != nil {
			fatalCount++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(path), err)
			continue
		}

		issues := validation.Verify(inv)
		if len(issues) == 0 {
			fmt.Printf("  ✓ %s (%s): %d subscriber(s) consistent\n",
				filepath.Base(path), inv.Period(), len(inv.Subscribers))
			continue
		}

		if validation.HasFatal(issues) {
			fatalCount++
			fmt.Printf("  ✗ %s (%s):\n", filepath.Base(path), inv.Period())
		} else {
			fmt.Printf("  ⚠ %s (%s):\n", filepath.Base(path), inv.Period())
		}
		fmt.Print(validation.FormatIssues(issues))
	}

	if fatalCount > 0 {
		return fmt.Errorf("%d of %d invoice(s) failed verification", fatalCount, len(invoices))
	}
	return nil
}
