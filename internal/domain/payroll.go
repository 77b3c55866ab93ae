package domain

import "github.com/shopspring/decimal"

// PayrollComponents is the flat set of compensation inputs for one payment.
// Zero values stand in for components the caller did not supply. Amounts carry at most
// two fraction digits, matching the stored NUMERIC(14,2) columns.
type PayrollComponents struct {
	BaseSalary         decimal.Decimal `json:"baseSalary" validate:"gte=0,money"`
	HousingAllowance   decimal.Decimal `json:"housingAllowance" validate:"gte=0,money"`
	TransportAllowance decimal.Decimal `json:"transportAllowance" validate:"gte=0,money"`
	MealAllowance      decimal.Decimal `json:"mealAllowance" validate:"gte=0,money"`
	OtherAllowances    decimal.Decimal `json:"otherAllowances" validate:"gte=0,money"`
	TaxDeductions      decimal.Decimal `json:"taxDeductions" validate:"gte=0,money"`
	InsuranceDeduction decimal.Decimal `json:"insuranceDeduction" validate:"gte=0,money"`
	PensionDeduction   decimal.Decimal `json:"pensionDeduction" validate:"gte=0,money"`
	OtherDeductions    decimal.Decimal `json:"otherDeductions" validate:"gte=0,money"`
}

type PayrollTotals struct {
	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetAmount       decimal.Decimal
}

// Totals sums earnings and deductions. A negative net amount is returned as is.
func (c PayrollComponents) Totals() PayrollTotals {
	earnings := decimal.Sum(c.BaseSalary, c.HousingAllowance, c.TransportAllowance, c.MealAllowance, c.OtherAllowances)
	deductions := decimal.Sum(c.TaxDeductions, c.InsuranceDeduction, c.PensionDeduction, c.OtherDeductions)
	return PayrollTotals{
		TotalEarnings:   earnings,
		TotalDeductions: deductions,
		NetAmount:       earnings.Sub(deductions),
	}
}
