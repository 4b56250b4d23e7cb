// =============================================================================
// Invoice Regrouper - Plan Comparison Engine
// =============================================================================
//
// This module recomputes every subscriber's usage cost under every
// configured pricing plan. Two things fall out of that:
//
//   - savings detection: comparing the billed plan's real cost against the
//     cheapest projection shows whether a subscriber should switch plans;
//   - billing-error detection: for the plan actually billed, each recomputed
//     voice/SMS line is compared against the reported line price. Deviations
//     beyond a small tolerance mean either a pricing-table error or a tariff
//     component this program does not model.
//
// The engine only builds projections and warnings. Ranking plans (best vs
// actual) is a read-only computation over the result, done by the report
// layer, never a mutation of it.
//
// =============================================================================

package plancompare

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/invoice"
)

// PriceTolerance is the allowed absolute deviation between a reported
// voice/SMS line price and its recomputation under the billed plan.
var PriceTolerance = decimal.RequireFromString("0.1")

var sixty = decimal.NewFromInt(60)

// Projection is one subscriber's monthly payment projection: what the month
// would have cost under every configured plan.
type Projection struct {
	// PhoneNumber identifies the subscriber.
	PhoneNumber string

	// PlanPrices maps plan name to the projected total (fixed fee plus
	// recomputed usage).
	PlanPrices map[string]decimal.Decimal

	// BilledPlan is the name of the plan the subscriber was actually
	// billed under this month.
	BilledPlan string
}

// RealPrice is the projected price under the billed plan. When the billed
// plan is missing from the plan table the zero decimal is returned.
func (p *Projection) RealPrice() decimal.Decimal {
	return p.PlanPrices[p.BilledPlan]
}

// Best returns the cheapest plan and its projected price.
func (p *Projection) Best() (string, decimal.Decimal) {
	var bestName string
	var bestPrice decimal.Decimal
	first := true
	for _, name := range sortedKeys(p.PlanPrices) {
		price := p.PlanPrices[name]
		if first || price.LessThan(bestPrice) {
			bestName, bestPrice = name, price
			first = false
		}
	}
	return bestName, bestPrice
}

// Warning is a non-fatal finding from the comparison pass.
type Warning struct {
	PhoneNumber string
	RowCode     string
	Message     string
}

func (w Warning) String() string {
	if w.RowCode != "" {
		return fmt.Sprintf("subscriber %s, row %s: %s", w.PhoneNumber, w.RowCode, w.Message)
	}
	return fmt.Sprintf("subscriber %s: %s", w.PhoneNumber, w.Message)
}

// Engine projects subscribers against one immutable plan table.
type Engine struct {
	plans config.Plans
}

// New builds an engine from the pricing-plan table.
func New(plans config.Plans) *Engine {
	return &Engine{plans: plans}
}

// =============================================================================
// PROJECTION
// =============================================================================

// Project builds the monthly payment projection for one subscriber.
//
// A subscriber with no plan-fee row, or with more than one (a mid-invoice
// plan switch), yields a nil projection: the provider bills such months in
// parts that this comparison cannot attribute to a single plan. The skip is
// reported as a warning so the discarded cost data stays visible.
func (e *Engine) Project(sub *invoice.Subscriber) (*Projection, []Warning) {
	var warnings []Warning

	var planFees []invoice.ChargeLine
	for _, line := range sub.RegularCharges {
		if line.IsPlanFee() {
			planFees = append(planFees, line)
		}
	}
	switch {
	case len(planFees) == 0:
		warnings = append(warnings, Warning{
			PhoneNumber: sub.PhoneNumber,
			Message:     "no plan selection found, skipping plan comparison",
		})
		return nil, warnings
	case len(planFees) > 1:
		warnings = append(warnings, Warning{
			PhoneNumber: sub.PhoneNumber,
			Message: fmt.Sprintf("plan switched mid-invoice (%d plan selections), skipping plan comparison",
				len(planFees)),
		})
		return nil, warnings
	}

	billedPlan := planFees[0].Name
	if _, known := e.plans[billedPlan]; !known {
		warnings = append(warnings, Warning{
			PhoneNumber: sub.PhoneNumber,
			Message:     fmt.Sprintf("billed plan %q is not in the pricing table", billedPlan),
		})
	}

	// Every plan starts at its fixed monthly fee.
	proj := &Projection{
		PhoneNumber: sub.PhoneNumber,
		PlanPrices:  make(map[string]decimal.Decimal, len(e.plans)),
		BilledPlan:  billedPlan,
	}
	for name, plan := range e.plans {
		proj.PlanPrices[name] = plan.FixedPrice
	}

	for _, line := range sub.UsageCharges {
		warnings = append(warnings, e.applyUsageLine(proj, line)...)
	}

	return proj, warnings
}

// applyUsageLine folds one usage charge line into every plan's running
// total and checks the billed plan's recomputation against the reported
// price.
func (e *Engine) applyUsageLine(proj *Projection, line invoice.ChargeLine) []Warning {
	var warnings []Warning

	switch invoice.Classify(line.RowCode) {
	case invoice.ClassVoice:
		// Units are seconds; plans price whole minutes fractionally.
		minutes := decimal.NewFromInt(line.TotalUnits).Div(sixty)
		warnings = e.addForAllPlans(proj, line, func(plan config.Plan) decimal.Decimal {
			return minutes.Mul(plan.VoiceMinutePrice)
		})

	case invoice.ClassSMS:
		count := decimal.NewFromInt(line.TotalUnits)
		warnings = e.addForAllPlans(proj, line, func(plan config.Plan) decimal.Decimal {
			return count.Mul(plan.SMSPrice)
		})

	case invoice.ClassMixed:
		// Free or billed separately even under all-inclusive plans;
		// excluded from the comparison either way.

	case invoice.ClassKnownFree:
		if !line.PriceWithoutTax.IsZero() {
			warnings = append(warnings, Warning{
				PhoneNumber: proj.PhoneNumber,
				RowCode:     line.RowCode,
				Message: fmt.Sprintf("row %q should be free but was billed %s",
					line.Name, line.PriceWithoutTax),
			})
		}

	default:
		// Unrecognized rows with a price are reported by the structural
		// verification pass. A free unrecognized row here usually means a
		// line the billed plan includes that this model skips.
		if line.PriceWithoutTax.IsZero() {
			warnings = append(warnings, Warning{
				PhoneNumber: proj.PhoneNumber,
				RowCode:     line.RowCode,
				Message: fmt.Sprintf("row %q is free on the bill but unmodeled, possibly included in the billed plan",
					line.Name),
			})
		}
	}

	return warnings
}

// addForAllPlans adds the recomputed price of one voice/SMS line to every
// plan's running total. For the billed plan the recomputation is also
// checked against the reported price.
func (e *Engine) addForAllPlans(proj *Projection, line invoice.ChargeLine, price func(config.Plan) decimal.Decimal) []Warning {
	var warnings []Warning

	for name, plan := range e.plans {
		computed := price(plan)
		proj.PlanPrices[name] = proj.PlanPrices[name].Add(computed)

		if name == proj.BilledPlan {
			diff := line.PriceWithoutTax.Sub(computed)
			if diff.Abs().GreaterThan(PriceTolerance) {
				warnings = append(warnings, Warning{
					PhoneNumber: proj.PhoneNumber,
					RowCode:     line.RowCode,
					Message: fmt.Sprintf("billed %s but plan %q prices this at %s (difference %s)",
						line.PriceWithoutTax, name, computed, diff),
				})
			}
		}
	}

	return warnings
}

// =============================================================================
// CROSS-INVOICE ACCUMULATION
// =============================================================================

// History collects projections per phone number across invoices, one entry
// per processed month, for the analyze command.
type History map[string][]*Projection

// Add appends a subscriber's monthly projection. Nil projections (skipped
// subscribers) are ignored.
func (h History) Add(proj *Projection) {
	if proj == nil {
		return
	}
	h[proj.PhoneNumber] = append(h[proj.PhoneNumber], proj)
}

// RealTotal sums the billed-plan price over every recorded month of one
// number.
func (h History) RealTotal(phoneNumber string) decimal.Decimal {
	total := decimal.Zero
	for _, proj := range h[phoneNumber] {
		total = total.Add(proj.RealPrice())
	}
	return total
}

// PlanTotal sums one plan's projected price over every recorded month of
// one number.
func (h History) PlanTotal(phoneNumber, plan string) decimal.Decimal {
	total := decimal.Zero
	for _, proj := range h[phoneNumber] {
		total = total.Add(proj.PlanPrices[plan])
	}
	return total
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
