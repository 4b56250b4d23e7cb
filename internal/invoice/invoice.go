// =============================================================================
// Invoice Regrouper - Domain Model
// =============================================================================
//
// This package defines the typed model for one parsed provider invoice.
// All repeated fields are plain ordered slices: the provider markup unions
// "a single item or an array of items" for every repeated element, and the
// XML parser normalizes that exactly once at the boundary, so nothing in
// this model (or downstream of it) ever re-checks cardinality.
//
// All monetary values are decimals, parsed from the provider's strings at
// the boundary and never converted through floats.
//
// =============================================================================

package invoice

import "github.com/shopspring/decimal"

// Invoice is one billing-period statement covering multiple subscriber lines.
// Subscriber order is significant: it matches the physical page order of the
// printed statement.
type Invoice struct {
	// PeriodFrom and PeriodTo are the billing period bounds, kept verbatim
	// as the provider prints them.
	PeriodFrom string
	PeriodTo   string

	// Subscribers are the per-phone-line records, in document order.
	Subscribers []Subscriber
}

// Period renders the billing period the way it appears in diagnostics and
// on injected summary pages.
func (inv *Invoice) Period() string {
	return inv.PeriodFrom + " - " + inv.PeriodTo
}

// Subscriber is one phone line within an invoice. Immutable once parsed.
type Subscriber struct {
	// PhoneNumber identifies the line. String-typed to preserve leading
	// structure; it must appear verbatim in the source PDF's text stream.
	PhoneNumber string

	// TotalWithoutTax and TotalWithTax are the provider-reported totals for
	// this line. TotalWithoutTax must equal the sum of all charge lines
	// (checked by the validation package).
	TotalWithoutTax decimal.Decimal
	TotalWithTax    decimal.Decimal

	// Charge lines by category, each in document order and possibly empty.
	OneTimeCharges     []ChargeLine
	RegularCharges     []ChargeLine
	UsageCharges       []ChargeLine
	AdditionalServices []ChargeLine
	Payments           []ChargeLine
	Discounts          []ChargeLine

	// TaxGroups is the per-rate tax breakdown for this line.
	TaxGroups []TaxGroup
}

// ChargeLines returns every charge line of the subscriber across all
// categories, in category order. Used by the structural total check.
func (s *Subscriber) ChargeLines() []ChargeLine {
	out := make([]ChargeLine, 0,
		len(s.OneTimeCharges)+len(s.RegularCharges)+len(s.UsageCharges)+
			len(s.AdditionalServices)+len(s.Payments)+len(s.Discounts))
	out = append(out, s.OneTimeCharges...)
	out = append(out, s.RegularCharges...)
	out = append(out, s.UsageCharges...)
	out = append(out, s.AdditionalServices...)
	out = append(out, s.Payments...)
	out = append(out, s.Discounts...)
	return out
}

// ChargeKind classifies which invoice section a charge line came from.
type ChargeKind int

const (
	KindOneTime ChargeKind = iota
	KindRegular
	KindUsage
	KindAdditionalService
	KindPayment
	KindDiscount
)

// String returns the section name as printed on the invoice.
func (k ChargeKind) String() string {
	switch k {
	case KindOneTime:
		return "one-time"
	case KindRegular:
		return "regular"
	case KindUsage:
		return "usage"
	case KindAdditionalService:
		return "additional-service"
	case KindPayment:
		return "payment"
	case KindDiscount:
		return "discount"
	default:
		return "unknown"
	}
}

// ChargeLine is one row of an invoice section.
type ChargeLine struct {
	Kind ChargeKind

	// RowCode is the provider's tariff-component identifier. The set of
	// codes is closed and provider-defined; see Classify.
	RowCode string

	// Name is the human-readable row label. For the plan-fee rows it is the
	// name of the pricing plan the subscriber is billed under.
	Name string

	// PriceWithoutTax is the pre-tax price of the row. Payment rows carry a
	// single signed price, stored here as well.
	PriceWithoutTax decimal.Decimal

	// TotalUnits is the usage quantity where applicable: seconds for voice
	// rows, unit counts otherwise. Zero for non-usage rows.
	TotalUnits int64
}

// TaxGroup is one {rate, pre-tax amount, tax amount} tuple of a subscriber's
// tax breakdown.
type TaxGroup struct {
	RatePercent     decimal.Decimal
	PriceWithoutTax decimal.Decimal
	TaxAmount       decimal.Decimal
}

// =============================================================================
// ROW-CODE CLASSIFICATION
// =============================================================================

// RowClass buckets a tariff row code for the plan-comparison engine.
// Unrecognized codes are a typed, testable condition, not an error.
type RowClass int

const (
	// ClassVoice rows report call time; TotalUnits are seconds.
	ClassVoice RowClass = iota

	// ClassSMS rows report message counts.
	ClassSMS

	// ClassMixed rows can be either free or billed separately even under
	// all-inclusive plans, so they are excluded from plan comparison.
	ClassMixed

	// ClassKnownFree rows are always free; a nonzero price on one is a
	// data-integrity signal.
	ClassKnownFree

	// ClassPlanFee rows are the regular charges that select the billed plan.
	ClassPlanFee

	// ClassUnrecognized covers every code outside the known enumeration.
	ClassUnrecognized
)

// rowClasses is the provider-defined enumeration of tariff row codes.
var rowClasses = map[string]RowClass{
	"201": ClassVoice, // in-country, on-net
	"202": ClassVoice, // in-country, off-net
	"203": ClassVoice, // outgoing within the EU

	"221": ClassSMS, // in-country, on-net
	"222": ClassSMS, // in-country, off-net
	"223": ClassSMS, // within the EU

	"106": ClassMixed, // premium and information lines

	"205": ClassKnownFree, // voicemail
	"211": ClassKnownFree, // emergency calls
	"212": ClassKnownFree, // incoming within the EU
	"214": ClassKnownFree, // on-company calls
	"230": ClassKnownFree, // free SMS
	"261": ClassKnownFree, // domestic data (kB)
	"263": ClassKnownFree, // EU data (kB)

	"51631003502": ClassPlanFee,
	"51631164502": ClassPlanFee,
}

// Classify maps a raw row code onto its bucket.
func Classify(rowCode string) RowClass {
	if c, ok := rowClasses[rowCode]; ok {
		return c
	}
	return ClassUnrecognized
}

// IsPlanFee reports whether the line selects the subscriber's billed plan.
func (l ChargeLine) IsPlanFee() bool {
	return Classify(l.RowCode) == ClassPlanFee
}
