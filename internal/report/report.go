// =============================================================================
// Invoice Regrouper - Console Diagnostics
// =============================================================================
//
// This module renders the per-invoice and cross-invoice diagnostics as
// human-readable lines over an injected writer. The lines are
// observational only: no exit code or machine-readable schema hangs off
// them, and a failed write must never mask a processing error, so every
// method here is best-effort and returns nothing.
//
// =============================================================================

package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/telcobill/invoice-regroup/internal/categorize"
	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/plancompare"
	"github.com/telcobill/invoice-regroup/internal/validation"
)

var hundred = decimal.NewFromInt(100)

// Reporter writes diagnostic lines to one destination.
type Reporter struct {
	w io.Writer
}

// New builds a reporter over w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format, args...)
}

// Period announces the invoice's billing period.
func (r *Reporter) Period(period string) {
	r.printf("%s\n", period)
}

// GroupSums lists every present group's aggregate, in configuration order,
// with the synthetic unknown group last.
func (r *Reporter) GroupSums(cat *categorize.Result, customers *config.Customers) {
	for _, group := range customers.Groups {
		if g := cat.Groups[group.Name]; g != nil {
			r.printf("  %-24s %s\n", group.Name, g.Sum.StringFixed(2))
		}
	}
	if g := cat.Groups[categorize.UnknownGroup]; g != nil {
		r.printf("  %-24s %s\n", categorize.UnknownGroup, g.Sum.StringFixed(2))
	}
}

// UnknownNumbers reports phone numbers that belong to no configured group.
func (r *Reporter) UnknownNumbers(numbers []string) {
	for _, n := range numbers {
		r.printf("unknown phone number %q\n", n)
	}
}

// Notes prints plan-builder diagnostics (absent groups, unlocated
// numbers).
func (r *Reporter) Notes(notes []string) {
	for _, n := range notes {
		r.printf("%s\n", n)
	}
}

// Issues prints structural verification findings.
func (r *Reporter) Issues(issues []*validation.Issue) {
	for _, issue := range issues {
		r.printf("%s\n", issue.Error())
	}
}

// Warnings prints plan-comparison findings.
func (r *Reporter) Warnings(warnings []plancompare.Warning) {
	for _, w := range warnings {
		r.printf("warning: %s\n", w)
	}
}

// =============================================================================
// PLAN COMPARISON
// =============================================================================

// PlanComparison renders the cross-invoice comparison: per customer group
// and per number, the real cost, every plan's projected cost, and the
// saving against the best plan, absolute and as a percentage of the real
// cost.
func (r *Reporter) PlanComparison(history plancompare.History, customers *config.Customers, plans config.Plans) {
	planNames := plans.Names()

	for _, group := range customers.Groups {
		r.printf("%s\n", group.Name)
		groupDiff := decimal.Zero
		groupReal := decimal.Zero

		for _, number := range group.Numbers {
			if len(history[number]) == 0 {
				continue
			}
			real := history.RealTotal(number)
			r.printf("  %s\n", number)
			r.printf("    real price %s\n", real.StringFixed(0))

			best := decimal.Zero
			for i, plan := range planNames {
				total := history.PlanTotal(number, plan)
				r.printf("    all %-20s %s\n", plan, total.StringFixed(0))
				if i == 0 || total.LessThan(best) {
					best = total
				}
			}

			diff := real.Sub(best)
			r.printf("    diff %s %s\n", diff.StringFixed(0), percentOf(diff, real))
			groupDiff = groupDiff.Add(diff)
			groupReal = groupReal.Add(real)
		}

		r.printf("  total diff %s %s\n", groupDiff.StringFixed(0), percentOf(groupDiff, groupReal))
	}
}

// percentOf renders part/whole as a percentage, guarding a zero whole.
func percentOf(part, whole decimal.Decimal) string {
	if whole.IsZero() {
		return "-"
	}
	return part.Div(whole).Mul(hundred).StringFixed(0) + "%"
}
