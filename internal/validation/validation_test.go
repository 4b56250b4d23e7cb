package validation_test

import (
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telcobill/invoice-regroup/internal/invoice"
	"github.com/telcobill/invoice-regroup/internal/validation"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func consistentSubscriber() invoice.Subscriber {
	return invoice.Subscriber{
		PhoneNumber:     "111111111",
		TotalWithoutTax: money("11.50"),
		RegularCharges: []invoice.ChargeLine{
			{Kind: invoice.KindRegular, RowCode: "51631003502", Name: "Basic", PriceWithoutTax: money("10")},
		},
		UsageCharges: []invoice.ChargeLine{
			{Kind: invoice.KindUsage, RowCode: "201", PriceWithoutTax: money("1.00")},
			{Kind: invoice.KindUsage, RowCode: "221", PriceWithoutTax: money("0.50")},
		},
	}
}

func TestVerify_ConsistentInvoice(t *testing.T) {
	inv := &invoice.Invoice{Subscribers: []invoice.Subscriber{consistentSubscriber()}}

	issues := validation.Verify(inv)

	assert.Empty(t, issues)
	assert.False(t, validation.HasFatal(issues))
}

func TestVerify_TotalWithinToleranceIsAccepted(t *testing.T) {
	sub := consistentSubscriber()
	sub.TotalWithoutTax = money("11.51")
	inv := &invoice.Invoice{Subscribers: []invoice.Subscriber{sub}}

	assert.Empty(t, validation.Verify(inv))
}

func TestVerify_TotalMismatchIsFatal(t *testing.T) {
	sub := consistentSubscriber()
	sub.TotalWithoutTax = money("13.00")
	inv := &invoice.Invoice{Subscribers: []invoice.Subscriber{sub}}

	issues := validation.Verify(inv)

	require.Len(t, issues, 1)
	assert.Equal(t, validation.SeverityError, issues[0].Severity)
	assert.Equal(t, "111111111", issues[0].PhoneNumber)
	assert.Contains(t, issues[0].Message, "disagrees with line-item sum")
	assert.True(t, validation.HasFatal(issues))
}

func TestVerify_UnrecognizedChargeableRowWarns(t *testing.T) {
	sub := consistentSubscriber()
	sub.UsageCharges = append(sub.UsageCharges,
		invoice.ChargeLine{Kind: invoice.KindUsage, RowCode: "999", Name: "roaming data", PriceWithoutTax: money("3.20")})
	sub.TotalWithoutTax = money("14.70")
	inv := &invoice.Invoice{Subscribers: []invoice.Subscriber{sub}}

	issues := validation.Verify(inv)

	require.Len(t, issues, 1)
	assert.Equal(t, validation.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "999", issues[0].RowCode)
	assert.False(t, validation.HasFatal(issues))
}

func TestVerify_FreeUnrecognizedRowIsSilent(t *testing.T) {
	sub := consistentSubscriber()
	sub.UsageCharges = append(sub.UsageCharges,
		invoice.ChargeLine{Kind: invoice.KindUsage, RowCode: "999", PriceWithoutTax: money("0")})
	inv := &invoice.Invoice{Subscribers: []invoice.Subscriber{sub}}

	assert.Empty(t, validation.Verify(inv))
}

func TestFormatIssues(t *testing.T) {
	issues := []*validation.Issue{
		{Severity: validation.SeverityError, PhoneNumber: "111111111", Message: "broken"},
		{Severity: validation.SeverityWarning, PhoneNumber: "222222222", RowCode: "999", Message: "odd"},
	}

	out := validation.FormatIssues(issues)

	assert.Contains(t, out, "[ERROR] subscriber 111111111: broken\n")
	assert.Contains(t, out, "[WARNING] subscriber 222222222, row 999: odd\n")
}

func TestWriteIssueLog(t *testing.T) {
	dir := t.TempDir()
	issues := []*validation.Issue{
		{Severity: validation.SeverityError, PhoneNumber: "111111111", Message: "broken"},
	}

	path, err := validation.WriteIssueLog(issues, dir)

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "subscriber 111111111")
}
