// =============================================================================
// Invoice Regrouper - Invoice XML Parser
// =============================================================================
//
// This module is the record extraction adapter: it decodes one provider
// invoice XML file into the typed domain model.
//
// The provider markup has ambiguous cardinality: every repeated field is
// emitted either as a single element or as an array of elements. Decoding
// into slices here is the single normalization step; downstream code only
// ever sees ordered slices.
//
// All numeric values travel through the markup as strings. They are parsed
// into decimals here, and only here, so no precision is lost on the way in.
// A missing required element or a malformed number is a structural failure:
// the whole invoice is rejected and no output is produced for it.
//
// =============================================================================

package xmlparser

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/telcobill/invoice-regroup/internal/invoice"
)

// =============================================================================
// WIRE SCHEMA
// =============================================================================
// These structs mirror the provider's element names verbatim. They hold
// strings only; conversion to the domain model happens below.

type xmlSummary struct {
	XMLName     xml.Name       `xml:"summary"`
	SummaryHead xmlSummaryHead `xml:"summaryHead"`
	Subscribers struct {
		Subscriber []xmlSubscriber `xml:"subscriber"`
	} `xml:"subscribers"`
}

type xmlSummaryHead struct {
	Day           string `xml:"day"`
	Month         string `xml:"month"`
	Year          string `xml:"year"`
	BillingPeriod struct {
		From string `xml:"from"`
		To   string `xml:"to"`
	} `xml:"billingPeriod"`
}

type xmlSubscriber struct {
	PhoneNumber         string `xml:"phoneNumber"`
	SummaryPrice        string `xml:"summaryPrice"`
	SummaryPriceWithTax string `xml:"summaryPriceWithTax"`
	MainTariff          string `xml:"mainTariff"`
	SummaryData         struct {
		OneTimeCharges struct {
			Items []xmlFeeItem `xml:"otcItem"`
		} `xml:"oneTimeCharges"`
		RegularCharges struct {
			Items []xmlFeeItem `xml:"rcItem"`
		} `xml:"regularCharges"`
		UsageCharges struct {
			Groups []struct {
				Items []xmlUsageItem `xml:"ucItem"`
			} `xml:"usageCharge"`
		} `xml:"usageCharges"`
		AdditionalServices struct {
			Items []xmlFeeItem `xml:"asItem"`
		} `xml:"additionalServices"`
		Payments struct {
			Groups []struct {
				Items []xmlPaymentItem `xml:"paymentItem"`
			} `xml:"payment"`
		} `xml:"payments"`
		Discounts struct {
			Items []xmlDiscountItem `xml:"discountItem"`
		} `xml:"discounts"`
	} `xml:"summaryData"`
	ServiceTax struct {
		Groups []xmlServiceTaxGroup `xml:"serviceTaxGroup"`
	} `xml:"serviceTax"`
}

// xmlFeeItem covers one-time charges, regular charges and additional
// services, which share a shape on the wire.
type xmlFeeItem struct {
	RowID           string `xml:"rowID"`
	PriceWithoutTax string `xml:"priceWithoutTax"`
	PriceWithTax    string `xml:"priceWithTax"`
	FeeName         string `xml:"feeName"`
}

type xmlUsageItem struct {
	RowID           string `xml:"rowID"`
	PriceWithoutTax string `xml:"priceWithoutTax"`
	PriceWithTax    string `xml:"priceWithTax"`
	TotalUnits      string `xml:"totalUnits"`
	QuantityOfConn  string `xml:"quantityOfConnect"`
	Name            string `xml:"name"`
}

type xmlPaymentItem struct {
	RowID string `xml:"rowID"`
	Price string `xml:"price"`
	Name  string `xml:"paymentItemName"`
}

type xmlDiscountItem struct {
	RowID           string `xml:"rowID"`
	PriceWithoutTax string `xml:"priceWithoutTax"`
	PriceWithTax    string `xml:"priceWithTax"`
	Name            string `xml:"discountItemName"`
}

type xmlServiceTaxGroup struct {
	Tax             string `xml:"tax"`
	PriceWithoutTax string `xml:"priceWithoutTax"`
	PriceTax        string `xml:"priceTax"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseFile reads and decodes one provider invoice file.
func ParseFile(path string) (*invoice.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice file: %w", err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inv, nil
}

// Parse decodes provider invoice XML into the domain model.
func Parse(data []byte) (*invoice.Invoice, error) {
	var wire xmlSummary
	if err := xml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode invoice XML: %w", err)
	}

	if wire.SummaryHead.BillingPeriod.From == "" || wire.SummaryHead.BillingPeriod.To == "" {
		return nil, fmt.Errorf("invoice is missing the billing period")
	}
	if len(wire.Subscribers.Subscriber) == 0 {
		return nil, fmt.Errorf("invoice contains no subscribers")
	}

	inv := &invoice.Invoice{
		PeriodFrom:  wire.SummaryHead.BillingPeriod.From,
		PeriodTo:    wire.SummaryHead.BillingPeriod.To,
		Subscribers: make([]invoice.Subscriber, 0, len(wire.Subscribers.Subscriber)),
	}

	for i, ws := range wire.Subscribers.Subscriber {
		sub, err := convertSubscriber(ws)
		if err != nil {
			return nil, fmt.Errorf("subscriber %d (%q): %w", i+1, ws.PhoneNumber, err)
		}
		inv.Subscribers = append(inv.Subscribers, sub)
	}

	return inv, nil
}

func convertSubscriber(ws xmlSubscriber) (invoice.Subscriber, error) {
	var sub invoice.Subscriber

	if ws.PhoneNumber == "" {
		return sub, fmt.Errorf("missing phoneNumber")
	}
	sub.PhoneNumber = ws.PhoneNumber

	var err error
	if sub.TotalWithoutTax, err = parsePrice(ws.SummaryPrice, "summaryPrice"); err != nil {
		return sub, err
	}
	if sub.TotalWithTax, err = parsePrice(ws.SummaryPriceWithTax, "summaryPriceWithTax"); err != nil {
		return sub, err
	}

	d := ws.SummaryData
	if sub.OneTimeCharges, err = convertFeeItems(d.OneTimeCharges.Items, invoice.KindOneTime); err != nil {
		return sub, err
	}
	if sub.RegularCharges, err = convertFeeItems(d.RegularCharges.Items, invoice.KindRegular); err != nil {
		return sub, err
	}
	for _, group := range d.UsageCharges.Groups {
		for _, it := range group.Items {
			line, err := convertUsageItem(it)
			if err != nil {
				return sub, err
			}
			sub.UsageCharges = append(sub.UsageCharges, line)
		}
	}
	if sub.AdditionalServices, err = convertFeeItems(d.AdditionalServices.Items, invoice.KindAdditionalService); err != nil {
		return sub, err
	}
	for _, group := range d.Payments.Groups {
		for _, it := range group.Items {
			price, err := parsePrice(it.Price, "payment price")
			if err != nil {
				return sub, err
			}
			sub.Payments = append(sub.Payments, invoice.ChargeLine{
				Kind:            invoice.KindPayment,
				RowCode:         it.RowID,
				Name:            it.Name,
				PriceWithoutTax: price,
			})
		}
	}
	for _, it := range d.Discounts.Items {
		price, err := parsePrice(it.PriceWithoutTax, "discount priceWithoutTax")
		if err != nil {
			return sub, err
		}
		sub.Discounts = append(sub.Discounts, invoice.ChargeLine{
			Kind:            invoice.KindDiscount,
			RowCode:         it.RowID,
			Name:            it.Name,
			PriceWithoutTax: price,
		})
	}

	if len(ws.ServiceTax.Groups) == 0 {
		return sub, fmt.Errorf("missing serviceTax breakdown")
	}
	for _, g := range ws.ServiceTax.Groups {
		tg, err := convertTaxGroup(g)
		if err != nil {
			return sub, err
		}
		sub.TaxGroups = append(sub.TaxGroups, tg)
	}

	return sub, nil
}

func convertFeeItems(items []xmlFeeItem, kind invoice.ChargeKind) ([]invoice.ChargeLine, error) {
	if len(items) == 0 {
		return nil, nil
	}
	lines := make([]invoice.ChargeLine, 0, len(items))
	for _, it := range items {
		price, err := parsePrice(it.PriceWithoutTax, fmt.Sprintf("%s priceWithoutTax", kind))
		if err != nil {
			return nil, err
		}
		lines = append(lines, invoice.ChargeLine{
			Kind:            kind,
			RowCode:         it.RowID,
			Name:            it.FeeName,
			PriceWithoutTax: price,
		})
	}
	return lines, nil
}

func convertUsageItem(it xmlUsageItem) (invoice.ChargeLine, error) {
	price, err := parsePrice(it.PriceWithoutTax, "usage priceWithoutTax")
	if err != nil {
		return invoice.ChargeLine{}, err
	}
	var units int64
	if it.TotalUnits != "" {
		units, err = parseUnits(it.TotalUnits)
		if err != nil {
			return invoice.ChargeLine{}, err
		}
	}
	return invoice.ChargeLine{
		Kind:            invoice.KindUsage,
		RowCode:         it.RowID,
		Name:            it.Name,
		PriceWithoutTax: price,
		TotalUnits:      units,
	}, nil
}

func convertTaxGroup(g xmlServiceTaxGroup) (invoice.TaxGroup, error) {
	var tg invoice.TaxGroup
	var err error
	if tg.RatePercent, err = parsePrice(g.Tax, "serviceTaxGroup tax"); err != nil {
		return tg, err
	}
	if tg.PriceWithoutTax, err = parsePrice(g.PriceWithoutTax, "serviceTaxGroup priceWithoutTax"); err != nil {
		return tg, err
	}
	if tg.TaxAmount, err = parsePrice(g.PriceTax, "serviceTaxGroup priceTax"); err != nil {
		return tg, err
	}
	return tg, nil
}

// parsePrice converts a provider numeric string into a decimal. An empty
// string is a missing required element.
func parsePrice(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("missing %s", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed %s %q: %w", field, s, err)
	}
	return d, nil
}

// parseUnits converts a totalUnits string. Units are whole seconds or whole
// event counts; the provider never emits fractions here.
func parseUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("malformed totalUnits %q: %w", s, err)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("fractional totalUnits %q", s)
	}
	return d.IntPart(), nil
}
