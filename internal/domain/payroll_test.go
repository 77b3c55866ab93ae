package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPayrollTotals(t *testing.T) {
	c := PayrollComponents{
		BaseSalary:         dec("5000"),
		HousingAllowance:   dec("1000"),
		TransportAllowance: dec("300"),
		MealAllowance:      dec("200"),
		TaxDeductions:      dec("800"),
		InsuranceDeduction: dec("200"),
		PensionDeduction:   dec("400"),
	}
	got := c.Totals()
	assert.True(t, got.TotalEarnings.Equal(dec("6500")), got.TotalEarnings.String())
	assert.True(t, got.TotalDeductions.Equal(dec("1400")), got.TotalDeductions.String())
	assert.True(t, got.NetAmount.Equal(dec("5100")), got.NetAmount.String())
}

func TestPayrollTotalsZeroValues(t *testing.T) {
	got := PayrollComponents{}.Totals()
	assert.True(t, got.TotalEarnings.IsZero())
	assert.True(t, got.TotalDeductions.IsZero())
	assert.True(t, got.NetAmount.IsZero())
}

func TestPayrollTotalsNegativeNet(t *testing.T) {
	got := PayrollComponents{BaseSalary: dec("100"), OtherDeductions: dec("250.50")}.Totals()
	assert.True(t, got.NetAmount.Equal(dec("-150.50")), got.NetAmount.String())
}

func TestPayrollTotalsKeepsCents(t *testing.T) {
	got := PayrollComponents{BaseSalary: dec("0.10"), MealAllowance: dec("0.20")}.Totals()
	assert.Equal(t, "0.30", got.TotalEarnings.StringFixed(2))
	assert.True(t, got.TotalEarnings.Equal(dec("0.3")))
}
