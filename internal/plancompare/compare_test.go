package plancompare_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/invoice"
	"github.com/telcobill/invoice-regroup/internal/plancompare"
)

const planFeeRow = "51631003502"

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPlans() config.Plans {
	return config.Plans{
		"Basic": {FixedPrice: money("10"), VoiceMinutePrice: money("0.5"), SMSPrice: money("0.1")},
		"Flat":  {FixedPrice: money("30"), VoiceMinutePrice: money("0"), SMSPrice: money("0")},
	}
}

// basicSubscriber is billed under Basic with 120 seconds of voice and 5 SMS,
// both priced exactly as the plan table predicts.
func basicSubscriber() *invoice.Subscriber {
	return &invoice.Subscriber{
		PhoneNumber: "111111111",
		RegularCharges: []invoice.ChargeLine{
			{Kind: invoice.KindRegular, RowCode: planFeeRow, Name: "Basic", PriceWithoutTax: money("10")},
		},
		UsageCharges: []invoice.ChargeLine{
			{Kind: invoice.KindUsage, RowCode: "201", Name: "voice on-net", PriceWithoutTax: money("1.00"), TotalUnits: 120},
			{Kind: invoice.KindUsage, RowCode: "221", Name: "sms on-net", PriceWithoutTax: money("0.50"), TotalUnits: 5},
		},
	}
}

func TestProject_RecomputesEveryPlan(t *testing.T) {
	engine := plancompare.New(testPlans())

	proj, warnings := engine.Project(basicSubscriber())

	require.NotNil(t, proj)
	assert.Empty(t, warnings)
	assert.Equal(t, "Basic", proj.BilledPlan)

	// Basic: 10 fixed + 2 min * 0.5 + 5 sms * 0.1, Flat: fixed fee only.
	assert.Equal(t, "11.50", proj.PlanPrices["Basic"].StringFixed(2))
	assert.Equal(t, "30.00", proj.PlanPrices["Flat"].StringFixed(2))
	assert.Equal(t, "11.50", proj.RealPrice().StringFixed(2))

	name, price := proj.Best()
	assert.Equal(t, "Basic", name)
	assert.Equal(t, "11.50", price.StringFixed(2))
}

func TestProject_FractionalMinutes(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	// 90 seconds is 1.5 minutes at 0.5 per minute.
	sub.UsageCharges = []invoice.ChargeLine{
		{Kind: invoice.KindUsage, RowCode: "202", PriceWithoutTax: money("0.75"), TotalUnits: 90},
	}

	proj, warnings := engine.Project(sub)

	require.NotNil(t, proj)
	assert.Empty(t, warnings)
	assert.Equal(t, "10.75", proj.PlanPrices["Basic"].StringFixed(2))
}

func TestProject_BilledPriceDeviationWarns(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	// Billed 2.00 where the plan prices 120 seconds at 1.00.
	sub.UsageCharges = sub.UsageCharges[:1]
	sub.UsageCharges[0].PriceWithoutTax = money("2.00")

	proj, warnings := engine.Project(sub)

	require.NotNil(t, proj)
	require.Len(t, warnings, 1)
	assert.Equal(t, "111111111", warnings[0].PhoneNumber)
	assert.Equal(t, "201", warnings[0].RowCode)
	assert.Contains(t, warnings[0].Message, "billed 2")
	// The projection still uses the recomputed price.
	assert.Equal(t, "11.00", proj.PlanPrices["Basic"].StringFixed(2))
}

func TestProject_DeviationWithinToleranceIsSilent(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.UsageCharges = sub.UsageCharges[:1]
	sub.UsageCharges[0].PriceWithoutTax = money("1.05")

	_, warnings := engine.Project(sub)

	assert.Empty(t, warnings)
}

func TestProject_NoPlanFeeSkips(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.RegularCharges = nil

	proj, warnings := engine.Project(sub)

	assert.Nil(t, proj)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "no plan selection")
}

func TestProject_MidInvoicePlanSwitchSkips(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.RegularCharges = append(sub.RegularCharges,
		invoice.ChargeLine{Kind: invoice.KindRegular, RowCode: "51631164502", Name: "Flat", PriceWithoutTax: money("15")})

	proj, warnings := engine.Project(sub)

	assert.Nil(t, proj)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "plan switched mid-invoice")
}

func TestProject_UnknownBilledPlanWarnsButProjects(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.RegularCharges[0].Name = "Legacy"

	proj, warnings := engine.Project(sub)

	require.NotNil(t, proj)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, `billed plan "Legacy"`)
	// Unknown billed plan means no reference price: RealPrice is zero and
	// the other plans still project normally.
	assert.True(t, proj.RealPrice().IsZero())
	assert.Equal(t, "30.00", proj.PlanPrices["Flat"].StringFixed(2))
}

func TestProject_ChargedFreeRowWarns(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.UsageCharges = []invoice.ChargeLine{
		{Kind: invoice.KindUsage, RowCode: "205", Name: "voicemail", PriceWithoutTax: money("0.30")},
	}

	proj, warnings := engine.Project(sub)

	require.NotNil(t, proj)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "should be free")
	assert.Equal(t, "10.00", proj.PlanPrices["Basic"].StringFixed(2))
}

func TestProject_MixedRowIsExcluded(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.UsageCharges = []invoice.ChargeLine{
		{Kind: invoice.KindUsage, RowCode: "106", Name: "premium line", PriceWithoutTax: money("4.00"), TotalUnits: 60},
	}

	proj, warnings := engine.Project(sub)

	require.NotNil(t, proj)
	assert.Empty(t, warnings)
	assert.Equal(t, "10.00", proj.PlanPrices["Basic"].StringFixed(2))
}

func TestProject_FreeUnrecognizedRowWarns(t *testing.T) {
	engine := plancompare.New(testPlans())
	sub := basicSubscriber()
	sub.UsageCharges = []invoice.ChargeLine{
		{Kind: invoice.KindUsage, RowCode: "777", Name: "mystery", PriceWithoutTax: money("0")},
	}

	_, warnings := engine.Project(sub)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "possibly included")
}

func TestHistory_AccumulatesAcrossMonths(t *testing.T) {
	engine := plancompare.New(testPlans())
	history := plancompare.History{}

	for i := 0; i < 3; i++ {
		proj, _ := engine.Project(basicSubscriber())
		history.Add(proj)
	}
	history.Add(nil) // skipped subscribers contribute nothing

	require.Len(t, history["111111111"], 3)
	assert.Equal(t, "34.50", history.RealTotal("111111111").StringFixed(2))
	assert.Equal(t, "90.00", history.PlanTotal("111111111", "Flat").StringFixed(2))
}
