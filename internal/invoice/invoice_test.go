package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/telcobill/invoice-regroup/internal/invoice"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, invoice.ClassVoice, invoice.Classify("201"))
	assert.Equal(t, invoice.ClassVoice, invoice.Classify("203"))
	assert.Equal(t, invoice.ClassSMS, invoice.Classify("222"))
	assert.Equal(t, invoice.ClassMixed, invoice.Classify("106"))
	assert.Equal(t, invoice.ClassKnownFree, invoice.Classify("211"))
	assert.Equal(t, invoice.ClassPlanFee, invoice.Classify("51631003502"))
	assert.Equal(t, invoice.ClassPlanFee, invoice.Classify("51631164502"))
	assert.Equal(t, invoice.ClassUnrecognized, invoice.Classify("999"))
	assert.Equal(t, invoice.ClassUnrecognized, invoice.Classify(""))
}

func TestChargeLines_ConcatenatesAllCategories(t *testing.T) {
	sub := invoice.Subscriber{
		OneTimeCharges: []invoice.ChargeLine{{RowCode: "a"}},
		RegularCharges: []invoice.ChargeLine{{RowCode: "b"}},
		UsageCharges:   []invoice.ChargeLine{{RowCode: "c"}, {RowCode: "d"}},
		Payments:       []invoice.ChargeLine{{RowCode: "e"}},
		Discounts:      []invoice.ChargeLine{{RowCode: "f"}},
	}

	lines := sub.ChargeLines()

	var codes []string
	for _, l := range lines {
		codes = append(codes, l.RowCode)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, codes)
}

func TestPeriod(t *testing.T) {
	inv := invoice.Invoice{PeriodFrom: "01.05.2024", PeriodTo: "31.05.2024"}
	assert.Equal(t, "01.05.2024 - 31.05.2024", inv.Period())
}
