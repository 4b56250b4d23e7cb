package xmlparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telcobill/invoice-regroup/internal/invoice"
	"github.com/telcobill/invoice-regroup/internal/xmlparser"
)

const sampleInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<summary>
  <summaryHead>
    <day>15</day><month>06</month><year>2024</year>
    <billingPeriod><from>01.05.2024</from><to>31.05.2024</to></billingPeriod>
  </summaryHead>
  <subscribers>
    <subscriber>
      <phoneNumber>111111111</phoneNumber>
      <summaryPrice>11.50</summaryPrice>
      <summaryPriceWithTax>13.92</summaryPriceWithTax>
      <mainTariff>Basic</mainTariff>
      <summaryData>
        <regularCharges>
          <rcItem>
            <rowID>51631003502</rowID>
            <priceWithoutTax>10.00</priceWithoutTax>
            <priceWithTax>12.10</priceWithTax>
            <feeName>Basic</feeName>
          </rcItem>
        </regularCharges>
        <usageCharges>
          <usageCharge>
            <ucItem>
              <rowID>201</rowID>
              <priceWithoutTax>1.00</priceWithoutTax>
              <priceWithTax>1.21</priceWithTax>
              <totalUnits>120</totalUnits>
              <quantityOfConnect>4</quantityOfConnect>
              <name>voice on-net</name>
            </ucItem>
            <ucItem>
              <rowID>221</rowID>
              <priceWithoutTax>0.50</priceWithoutTax>
              <priceWithTax>0.61</priceWithTax>
              <totalUnits>5</totalUnits>
              <name>sms on-net</name>
            </ucItem>
          </usageCharge>
        </usageCharges>
      </summaryData>
      <serviceTax>
        <serviceTaxGroup>
          <tax>21</tax>
          <priceWithoutTax>11.50</priceWithoutTax>
          <priceTax>2.42</priceTax>
        </serviceTaxGroup>
      </serviceTax>
    </subscriber>
    <subscriber>
      <phoneNumber>222222222</phoneNumber>
      <summaryPrice>0</summaryPrice>
      <summaryPriceWithTax>0</summaryPriceWithTax>
      <summaryData>
        <payments>
          <payment>
            <paymentItem>
              <rowID>901</rowID>
              <price>-5.00</price>
              <paymentItemName>overpayment</paymentItemName>
            </paymentItem>
          </payment>
          <payment>
            <paymentItem>
              <rowID>902</rowID>
              <price>5.00</price>
              <paymentItemName>settlement</paymentItemName>
            </paymentItem>
          </payment>
        </payments>
      </summaryData>
      <serviceTax>
        <serviceTaxGroup>
          <tax>21</tax>
          <priceWithoutTax>0</priceWithoutTax>
          <priceTax>0</priceTax>
        </serviceTaxGroup>
      </serviceTax>
    </subscriber>
  </subscribers>
</summary>`

func TestParse_FullInvoice(t *testing.T) {
	inv, err := xmlparser.Parse([]byte(sampleInvoice))

	require.NoError(t, err)
	assert.Equal(t, "01.05.2024 - 31.05.2024", inv.Period())
	require.Len(t, inv.Subscribers, 2)

	sub := inv.Subscribers[0]
	assert.Equal(t, "111111111", sub.PhoneNumber)
	assert.Equal(t, "11.50", sub.TotalWithoutTax.StringFixed(2))
	assert.Equal(t, "13.92", sub.TotalWithTax.StringFixed(2))

	require.Len(t, sub.RegularCharges, 1)
	fee := sub.RegularCharges[0]
	assert.Equal(t, invoice.KindRegular, fee.Kind)
	assert.True(t, fee.IsPlanFee())
	assert.Equal(t, "Basic", fee.Name)

	require.Len(t, sub.UsageCharges, 2)
	voice := sub.UsageCharges[0]
	assert.Equal(t, "201", voice.RowCode)
	assert.Equal(t, int64(120), voice.TotalUnits)
	assert.Equal(t, "1.00", voice.PriceWithoutTax.StringFixed(2))

	require.Len(t, sub.TaxGroups, 1)
	assert.Equal(t, "21", sub.TaxGroups[0].RatePercent.String())
	assert.Equal(t, "2.42", sub.TaxGroups[0].TaxAmount.StringFixed(2))
}

func TestParse_NormalizesRepeatedGroups(t *testing.T) {
	inv, err := xmlparser.Parse([]byte(sampleInvoice))

	require.NoError(t, err)
	// Two sibling payment groups with one item each flatten into one
	// ordered slice.
	payments := inv.Subscribers[1].Payments
	require.Len(t, payments, 2)
	assert.Equal(t, "-5.00", payments[0].PriceWithoutTax.StringFixed(2))
	assert.Equal(t, "settlement", payments[1].Name)
}

func TestParse_MissingBillingPeriod(t *testing.T) {
	_, err := xmlparser.Parse([]byte(`<summary><subscribers/></summary>`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing period")
}

func TestParse_NoSubscribers(t *testing.T) {
	doc := `<summary>
  <summaryHead><billingPeriod><from>a</from><to>b</to></billingPeriod></summaryHead>
  <subscribers/>
</summary>`

	_, err := xmlparser.Parse([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subscribers")
}

func TestParse_MissingRequiredPrice(t *testing.T) {
	doc := `<summary>
  <summaryHead><billingPeriod><from>a</from><to>b</to></billingPeriod></summaryHead>
  <subscribers>
    <subscriber>
      <phoneNumber>111111111</phoneNumber>
      <summaryPriceWithTax>1</summaryPriceWithTax>
      <serviceTax><serviceTaxGroup><tax>21</tax><priceWithoutTax>0</priceWithoutTax><priceTax>0</priceTax></serviceTaxGroup></serviceTax>
    </subscriber>
  </subscribers>
</summary>`

	_, err := xmlparser.Parse([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing summaryPrice")
}

func TestParse_MissingTaxBreakdown(t *testing.T) {
	doc := `<summary>
  <summaryHead><billingPeriod><from>a</from><to>b</to></billingPeriod></summaryHead>
  <subscribers>
    <subscriber>
      <phoneNumber>111111111</phoneNumber>
      <summaryPrice>0</summaryPrice>
      <summaryPriceWithTax>0</summaryPriceWithTax>
    </subscriber>
  </subscribers>
</summary>`

	_, err := xmlparser.Parse([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "serviceTax")
}

func TestParse_FractionalUnitsRejected(t *testing.T) {
	doc := `<summary>
  <summaryHead><billingPeriod><from>a</from><to>b</to></billingPeriod></summaryHead>
  <subscribers>
    <subscriber>
      <phoneNumber>111111111</phoneNumber>
      <summaryPrice>0</summaryPrice>
      <summaryPriceWithTax>0</summaryPriceWithTax>
      <summaryData>
        <usageCharges><usageCharge><ucItem>
          <rowID>201</rowID>
          <priceWithoutTax>0</priceWithoutTax>
          <totalUnits>12.5</totalUnits>
        </ucItem></usageCharge></usageCharges>
      </summaryData>
      <serviceTax><serviceTaxGroup><tax>21</tax><priceWithoutTax>0</priceWithoutTax><priceTax>0</priceTax></serviceTaxGroup></serviceTax>
    </subscriber>
  </subscribers>
</summary>`

	_, err := xmlparser.Parse([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "totalUnits")
}
