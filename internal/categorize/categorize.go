// =============================================================================
// Invoice Regrouper - Categorization Engine
// =============================================================================
//
// This module aggregates per-subscriber invoice totals into customer-group
// totals and reconciles the invoice-wide tax rounding discrepancy.
//
// The provider rounds tax per line, so the reported tax amounts drift from
// an exact recomputation by a few hundredths per invoice. That drift is
// accumulated across every tax tuple and, when a configured group claims
// the sentinel phone number, injected back as a negative correction entry
// under that number. The invoice then reconciles to the penny by
// construction instead of carrying an unexplained remainder.
//
// =============================================================================

package categorize

import (
	"github.com/shopspring/decimal"

	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/invoice"
)

// UnknownGroup collects every phone number absent from the configured
// groups. Its presence signals a configuration gap; entries are surfaced
// for manual review, never silently dropped.
const UnknownGroup = "_Unknown_"

// GroupTotal is the aggregate for one customer group.
type GroupTotal struct {
	// Sum is the group's aggregate post-tax price, including the rounding
	// correction when injected into this group.
	Sum decimal.Decimal

	// Numbers maps each phone number to its signed price contribution.
	// The sentinel number's entry, when present, is the rounding
	// correction.
	Numbers map[string]decimal.Decimal
}

// Result is the outcome of categorizing one invoice.
type Result struct {
	// Groups maps group name (or UnknownGroup) to its aggregate.
	Groups map[string]*GroupTotal

	// RoundingError is the accumulated discrepancy between reported tax
	// and exact recomputation across the whole invoice.
	RoundingError decimal.Decimal

	// UnknownNumbers lists phone numbers that belong to no configured
	// group, in invoice order, for manual review.
	UnknownNumbers []string
}

// Engine categorizes invoices against one immutable customer configuration.
type Engine struct {
	numberToGroup map[string]string
	sentinel      string
}

// New builds an engine from the customer-group configuration.
func New(customers *config.Customers) *Engine {
	return &Engine{
		numberToGroup: customers.NumberToGroup(),
		sentinel:      customers.SentinelNumber,
	}
}

// Categorize runs a single pass over the invoice's subscribers. It is a
// pure function of the engine configuration and the invoice: running it
// twice yields identical results.
func (e *Engine) Categorize(inv *invoice.Invoice) *Result {
	result := &Result{
		Groups:        make(map[string]*GroupTotal),
		RoundingError: decimal.Zero,
	}

	for i := range inv.Subscribers {
		sub := &inv.Subscribers[i]
		e.add(result, sub.PhoneNumber, sub.TotalWithTax)
		for _, tg := range sub.TaxGroups {
			result.RoundingError = result.RoundingError.Add(roundingError(tg))
		}
	}

	// Inject the correction only when a configured group claims the
	// sentinel; otherwise the remainder stays reported but unassigned.
	if _, ok := e.numberToGroup[e.sentinel]; ok {
		e.add(result, e.sentinel, result.RoundingError.Neg())
	}

	return result
}

// add books a signed price under the phone number's group. Numbers without
// a group route to UnknownGroup. A repeated number overwrites its previous
// per-number entry (last write wins) while both amounts stay in the sum.
func (e *Engine) add(result *Result, phoneNumber string, price decimal.Decimal) {
	groupName, ok := e.numberToGroup[phoneNumber]
	if !ok {
		groupName = UnknownGroup
		result.UnknownNumbers = append(result.UnknownNumbers, phoneNumber)
	}

	group := result.Groups[groupName]
	if group == nil {
		group = &GroupTotal{Numbers: make(map[string]decimal.Decimal)}
		result.Groups[groupName] = group
	}
	group.Numbers[phoneNumber] = price
	group.Sum = group.Sum.Add(price)
}

// roundingError is the gap between the reported tax amount and an exact
// recomputation from the pre-tax amount and rate.
func roundingError(tg invoice.TaxGroup) decimal.Decimal {
	exact := tg.PriceWithoutTax.Mul(tg.RatePercent).Div(decimal.NewFromInt(100))
	return tg.TaxAmount.Sub(exact)
}

// Total sums every group aggregate. With the correction injected it equals
// the sum of all subscribers' post-tax totals minus the rounding error of
// the invoice, which is exactly what the correction compensates.
func (r *Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, g := range r.Groups {
		total = total.Add(g.Sum)
	}
	return total
}
