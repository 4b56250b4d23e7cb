// =============================================================================
// Invoice Regrouper - Structural Verification
// =============================================================================
//
// This module checks parsed invoices for internal consistency before any
// output is produced. Two kinds of findings exist:
//
//   - fatal: the invoice contradicts itself (a subscriber's reported total
//     disagrees with the sum of its line items). Processing of that invoice
//     stops; partial output is never written.
//   - warning: the invoice uses a chargeable tariff row this program does
//     not model. The run continues; these findings exist to catch silent
//     billing-model drift over time.
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/telcobill/invoice-regroup/internal/invoice"
)

// TotalTolerance is the allowed disagreement between a subscriber's
// reported pre-tax total and the recomputed sum of its line items. The
// provider rounds the reported total to two decimals, so exact equality is
// not guaranteed.
var TotalTolerance = decimal.RequireFromString("0.01")

// Severity partitions findings into fatal errors and log-only warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single verification finding.
type Issue struct {
	Severity Severity

	// PhoneNumber identifies the subscriber the finding belongs to.
	PhoneNumber string

	// RowCode is set when the finding concerns a specific charge line.
	RowCode string

	// Message is the human-readable description.
	Message string
}

// Error implements the error interface so issues can travel as errors.
func (i *Issue) Error() string {
	if i.RowCode != "" {
		return fmt.Sprintf("[%s] subscriber %s, row %s: %s",
			strings.ToUpper(string(i.Severity)), i.PhoneNumber, i.RowCode, i.Message)
	}
	return fmt.Sprintf("[%s] subscriber %s: %s",
		strings.ToUpper(string(i.Severity)), i.PhoneNumber, i.Message)
}

// HasFatal reports whether any issue in the list is fatal.
func HasFatal(issues []*Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// =============================================================================
// VERIFICATION
// =============================================================================

// Verify checks one invoice and returns every finding.
func Verify(inv *invoice.Invoice) []*Issue {
	var issues []*Issue
	for i := range inv.Subscribers {
		issues = append(issues, verifySubscriber(&inv.Subscribers[i])...)
	}
	return issues
}

func verifySubscriber(sub *invoice.Subscriber) []*Issue {
	var issues []*Issue

	// The reported pre-tax total must be reproducible from the line items.
	sum := decimal.Zero
	for _, line := range sub.ChargeLines() {
		sum = sum.Add(line.PriceWithoutTax)
	}
	if sub.TotalWithoutTax.Sub(sum).Abs().GreaterThan(TotalTolerance) {
		issues = append(issues, &Issue{
			Severity:    SeverityError,
			PhoneNumber: sub.PhoneNumber,
			Message: fmt.Sprintf("reported total %s disagrees with line-item sum %s",
				sub.TotalWithoutTax, sum),
		})
	}

	// Chargeable rows outside the known enumeration signal an unmodeled
	// tariff component.
	for _, line := range sub.ChargeLines() {
		if invoice.Classify(line.RowCode) == invoice.ClassUnrecognized && !line.PriceWithoutTax.IsZero() {
			issues = append(issues, &Issue{
				Severity:    SeverityWarning,
				PhoneNumber: sub.PhoneNumber,
				RowCode:     line.RowCode,
				Message: fmt.Sprintf("unrecognized chargeable %s row %q (%s)",
					line.Kind, line.Name, line.PriceWithoutTax),
			})
		}
	}

	return issues
}

// =============================================================================
// REPORTING HELPERS
// =============================================================================

// FormatIssues renders findings one per line for console diagnostics.
func FormatIssues(issues []*Issue) string {
	var b strings.Builder
	for _, issue := range issues {
		b.WriteString(issue.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// WriteIssueLog writes findings to a timestamped log file inside dir and
// returns the file path. Best effort: callers must not let a failure here
// mask the finding itself.
func WriteIssueLog(issues []*Issue, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("issues_%s.log", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(FormatIssues(issues)), 0644); err != nil {
		return "", fmt.Errorf("failed to write issue log: %w", err)
	}
	return path, nil
}
