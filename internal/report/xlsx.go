// =============================================================================
// Invoice Regrouper - Plan Comparison Workbook
// =============================================================================
//
// XLSX export of the cross-invoice plan matrix: one row per phone number
// with the real cost, every plan's projected cost, and the saving against
// the best plan. Operators review this in a spreadsheet when deciding on
// plan changes.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/telcobill/invoice-regroup/internal/config"
	"github.com/telcobill/invoice-regroup/internal/plancompare"
)

const planSheet = "Plan Comparison"

// WritePlanMatrix writes the comparison workbook to path.
func WritePlanMatrix(path string, history plancompare.History, customers *config.Customers, plans config.Plans) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", planSheet)
	planNames := plans.Names()

	header := []interface{}{"Group", "Number", "Months", "Real"}
	for _, plan := range planNames {
		header = append(header, plan)
	}
	header = append(header, "Best", "Saving", "Saving %")
	if err := f.SetSheetRow(planSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	rowNo := 2
	for _, group := range customers.Groups {
		for _, number := range group.Numbers {
			months := len(history[number])
			if months == 0 {
				continue
			}

			real := history.RealTotal(number)
			row := []interface{}{group.Name, number, months, money(real)}

			best := decimal.Zero
			for i, plan := range planNames {
				total := history.PlanTotal(number, plan)
				row = append(row, money(total))
				if i == 0 || total.LessThan(best) {
					best = total
				}
			}

			saving := real.Sub(best)
			row = append(row, money(best), money(saving), percentOf(saving, real))

			cell, err := excelize.CoordinatesToCellName(1, rowNo)
			if err != nil {
				return fmt.Errorf("failed to address row %d: %w", rowNo, err)
			}
			if err := f.SetSheetRow(planSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowNo, err)
			}
			rowNo++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// money converts a decimal to a float cell value, rounded to cents.
func money(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
