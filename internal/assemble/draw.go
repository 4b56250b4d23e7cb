// Drawing callbacks for synthesized summary pages and group-label
// overlays. Layout mirrors the printed statement: a narrow left column of
// identifiers, a monospaced money column, a rule under the running total.

package assemble

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// SummaryRow is one customer group's line on the invoice summary page.
type SummaryRow struct {
	AccountRef int64
	Sum        decimal.Decimal
	Name       string
}

// SummaryPage renders the invoice-level summary: the billing period, one
// row per present customer group, and the grand total under a rule.
func SummaryPage(period string, rows []SummaryRow, total decimal.Decimal) DrawFunc {
	return func(p *Page) {
		p.SetFontSize(fontSize)
		p.Text(marginX, marginTop, period)

		y := marginTop
		for _, row := range rows {
			y += lineHeight
			p.Text(marginX, y, strconv.FormatInt(row.AccountRef, 10))
			p.Text(marginX+40, y, FormatMoney(row.Sum))
			p.Text(marginX+100, y, row.Name)
		}

		p.Line(marginX, y+2, marginX+150, y+2)
		p.Text(marginX+40, y+lineHeight, FormatMoney(total))
	}
}

// NumberPrice is one phone number's line on a group summary page.
type NumberPrice struct {
	PhoneNumber string
	Price       decimal.Decimal
}

// GroupSummaryPage renders one customer group's summary: the group name
// and billing period, one row per phone number, and the group sum under a
// rule. Entry order is the caller's; the rounding-correction entry must be
// passed last so it is never mistaken for a subscriber line.
func GroupSummaryPage(name, period string, entries []NumberPrice, sum decimal.Decimal) DrawFunc {
	return func(p *Page) {
		p.SetFontSize(fontSize)
		p.Text(marginX, marginTop, name)
		p.Text(marginX+200, marginTop, period)

		y := marginTop
		for _, e := range entries {
			y += lineHeight
			p.Text(marginX, y, e.PhoneNumber)
			p.Text(marginX+60, y, FormatMoney(e.Price))
		}

		p.Line(marginX+60, y+2, marginX+110, y+2)
		p.Text(marginX+60, y+lineHeight, FormatMoney(sum))
	}
}

// GroupLabel overlays the owning group's name onto a copied page, with the
// group sum next to it on the group's first page only (sum may be nil).
func GroupLabel(name string, sum *decimal.Decimal) DrawFunc {
	return func(p *Page) {
		p.SetFontSize(fontSize)
		p.Text(marginX, marginTop, name)
		if sum != nil {
			p.Text(marginX+200, marginTop, FormatMoney(*sum))
		}
	}
}
