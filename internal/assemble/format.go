// Value formatting for drawn content. Money is right-padded with leading
// spaces to a fixed column width; with a monospaced face that renders as a
// right-aligned column.

package assemble

import (
	"strings"

	"github.com/shopspring/decimal"
)

// moneyColumnWidth is the fixed character width of drawn money columns.
const moneyColumnWidth = 8

// FormatMoney renders a price with two decimals, space-padded on the left
// to the fixed column width. Values wider than the column are rendered
// unpadded rather than truncated.
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if len(s) >= moneyColumnWidth {
		return s
	}
	return strings.Repeat(" ", moneyColumnWidth-len(s)) + s
}
