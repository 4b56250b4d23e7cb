package report_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telcobill/invoice-regroup/internal/categorize"
	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/plancompare"
	"github.com/telcobill/invoice-regroup/internal/report"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testCustomers() *config.Customers {
	return &config.Customers{
		SentinelNumber: "0",
		Groups: []config.CustomerGroup{
			{Name: "Alpha", AccountRef: 1001, Numbers: []string{"111111111", "0"}},
			{Name: "Beta", AccountRef: 1002, Numbers: []string{"222222222"}},
		},
	}
}

func TestGroupSums_ConfigOrderWithUnknownLast(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	cat := &categorize.Result{Groups: map[string]*categorize.GroupTotal{
		"Beta":                  {Sum: money("60.50")},
		"Alpha":                 {Sum: money("120.97")},
		categorize.UnknownGroup: {Sum: money("10.00")},
	}}

	r.GroupSums(cat, testCustomers())

	out := buf.String()
	alpha := bytes.Index(buf.Bytes(), []byte("Alpha"))
	beta := bytes.Index(buf.Bytes(), []byte("Beta"))
	unknown := bytes.Index(buf.Bytes(), []byte(categorize.UnknownGroup))
	require.True(t, alpha >= 0 && beta >= 0 && unknown >= 0, "all groups must be printed:\n%s", out)
	assert.Less(t, alpha, beta)
	assert.Less(t, beta, unknown)
	assert.Contains(t, out, "120.97")
}

func TestWarningsAndUnknownNumbers(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	r.UnknownNumbers([]string{"999999999"})
	r.Warnings([]plancompare.Warning{
		{PhoneNumber: "111111111", RowCode: "201", Message: "off"},
	})

	assert.Contains(t, buf.String(), `unknown phone number "999999999"`)
	assert.Contains(t, buf.String(), "warning: subscriber 111111111, row 201: off")
}

func TestPlanComparison(t *testing.T) {
	var buf bytes.Buffer
	r := report.New(&buf)

	plans := config.Plans{
		"Basic": {FixedPrice: money("10")},
		"Flat":  {FixedPrice: money("30")},
	}
	history := plancompare.History{}
	history.Add(&plancompare.Projection{
		PhoneNumber: "111111111",
		BilledPlan:  "Flat",
		PlanPrices: map[string]decimal.Decimal{
			"Basic": money("12"),
			"Flat":  money("30"),
		},
	})

	r.PlanComparison(history, testCustomers(), plans)

	out := buf.String()
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "111111111")
	assert.Contains(t, out, "real price 30")
	assert.Contains(t, out, "Basic")
	// The saving against the cheapest plan: 30 - 12 = 18, 60% of real.
	assert.Contains(t, out, "diff 18 60%")
	// Beta has no history: the group prints only its (empty) total.
	assert.Contains(t, out, "Beta")
	assert.NotContains(t, out, "222222222")
}
