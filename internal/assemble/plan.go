// =============================================================================
// Invoice Regrouper - Page Plan Builder
// =============================================================================
//
// BuildPlan turns the categorization result and the located page ranges
// into the ordered directive list that fully determines the output
// document:
//
//   page 1: synthesized invoice summary (one row per present group)
//   then, per configured group in configuration order:
//     - a synthesized group summary page, or (when group summaries are
//       disabled) a group-label overlay on the group's first copied page
//     - the group's source pages, per phone number in configuration order
//
// Groups with no phone number in the invoice are skipped and reported, as
// are configured numbers never located in the source document. Neither is
// fatal: the plan covers everything that was found.
//
// =============================================================================

package assemble

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/telcobill/invoice-regroup/internal/categorize"
	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/pagelocate"
)

// PlanOptions carries the per-invoice inputs of the plan builder.
type PlanOptions struct {
	// Period is the billing period, drawn on synthesized pages.
	Period string

	// PrintGroupSummary selects synthesized group pages over label
	// overlays.
	PrintGroupSummary bool

	// Sentinel is the rounding-correction phone number; it never has
	// source pages and is rendered last on group summaries.
	Sentinel string
}

// BuildPlan assembles the directive list. The returned notes are
// diagnostics for the console: configuration gaps and identifiers missing
// from the source document.
func BuildPlan(cat *categorize.Result, customers *config.Customers, ranges map[string]pagelocate.PageRange, opts PlanOptions) ([]Directive, []string) {
	var directives []Directive
	var notes []string

	// Groups present on this invoice, in configuration order.
	var present []config.CustomerGroup
	for _, group := range customers.Groups {
		if cat.Groups[group.Name] != nil {
			present = append(present, group)
		} else {
			notes = append(notes, fmt.Sprintf("no phone number of group %q appeared on this invoice", group.Name))
		}
	}

	// Invoice summary page.
	var rows []SummaryRow
	total := decimal.Zero
	for _, group := range present {
		sum := cat.Groups[group.Name].Sum
		rows = append(rows, SummaryRow{AccountRef: group.AccountRef, Sum: sum, Name: group.Name})
		total = total.Add(sum)
	}
	directives = append(directives, NewPage(SummaryPage(opts.Period, rows, total)))

	// Per-group pages.
	for _, group := range present {
		prices := cat.Groups[group.Name]

		if opts.PrintGroupSummary {
			directives = append(directives,
				NewPage(GroupSummaryPage(group.Name, opts.Period, groupEntries(group, prices, opts.Sentinel), prices.Sum)))
		}

		located := make([]pagelocate.PageRange, 0, len(group.Numbers))
		for _, number := range group.Numbers {
			r, ok := ranges[number]
			if !ok {
				if number != opts.Sentinel {
					notes = append(notes, fmt.Sprintf("number %s of group %q was not found in the source document", number, group.Name))
				}
				continue
			}
			located = append(located, r)
		}

		for numberPos, r := range located {
			for i := 0; i < r.Count; i++ {
				if opts.PrintGroupSummary {
					directives = append(directives, CopyPage(r.First+i))
					continue
				}
				var sum *decimal.Decimal
				if numberPos == 0 && i == 0 {
					s := prices.Sum
					sum = &s
				}
				directives = append(directives, CopyPageWith(r.First+i, GroupLabel(group.Name, sum)))
			}
		}
	}

	return directives, notes
}

// groupEntries orders a group's per-number prices for its summary page:
// configured number order first, the sentinel correction entry always
// last.
func groupEntries(group config.CustomerGroup, prices *categorize.GroupTotal, sentinel string) []NumberPrice {
	entries := make([]NumberPrice, 0, len(prices.Numbers))
	for _, number := range group.Numbers {
		if number == sentinel {
			continue
		}
		if price, ok := prices.Numbers[number]; ok {
			entries = append(entries, NumberPrice{PhoneNumber: number, Price: price})
		}
	}
	if correction, ok := prices.Numbers[sentinel]; ok {
		entries = append(entries, NumberPrice{PhoneNumber: sentinel, Price: correction})
	}
	return entries
}
