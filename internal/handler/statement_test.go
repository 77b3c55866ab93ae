package handler

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"workforce-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func statementFixture() []domain.PaymentRecord {
	txn := "TXN-9"
	return []domain.PaymentRecord{{
		ID:              12,
		Amount:          decimal.RequireFromString("6500"),
		NetAmount:       decimal.RequireFromString("5100"),
		TaxDeductions:   decimal.RequireFromString("800"),
		OtherDeductions: decimal.RequireFromString("600"),
		PayPeriodStart:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PayPeriodEnd:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		PaymentDate:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		PaymentMethod:   domain.MethodBankTransfer,
		Status:          domain.PaymentCompleted,
		TransactionID:   &txn,
		Reference:       "PAY-0A1B2C3D4E",
		Type:            domain.PaymentTypeSalary,
		Description:     "March salary, with bonus",
	}}
}

func TestExportPaymentsCSV(t *testing.T) {
	data, err := exportPaymentsCSV(statementFixture())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, statementHeader, rows[0])
	assert.Equal(t, []string{
		"12", "PAY-0A1B2C3D4E", "SALARY", "2024-03-01", "2024-03-31", "2024-03-31",
		"BANK_TRANSFER", "COMPLETED", "6500.00", "800.00", "600.00", "5100.00", "TXN-9", "March salary, with bonus",
	}, rows[1])
}

func TestExportPaymentsXLSX(t *testing.T) {
	data, err := exportPaymentsXLSX(statementFixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Payments"}, f.GetSheetList())
	rows, err := f.GetRows("Payments")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, statementHeader, rows[0])
	assert.Equal(t, "PAY-0A1B2C3D4E", rows[1][1])

	net, err := f.GetCellValue("Payments", "L2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "5100", net)
}

func TestExportPaymentsEmpty(t *testing.T) {
	data, err := exportPaymentsCSV(nil)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = exportPaymentsXLSX(nil)
	assert.NoError(t, err)
}
