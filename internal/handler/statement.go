package handler

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"workforce-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

var statementHeader = []string{"ID", "Reference", "Type", "Pay Period Start", "Pay Period End", "Payment Date", "Method", "Status", "Gross", "Tax", "Other Deductions", "Net", "Transaction ID", "Description"}

func statementRow(p domain.PaymentRecord) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Reference,
		p.Type,
		p.PayPeriodStart.Format(dateLayout),
		p.PayPeriodEnd.Format(dateLayout),
		p.PaymentDate.Format(dateLayout),
		string(p.PaymentMethod),
		string(p.Status),
		p.Amount.StringFixed(2),
		p.TaxDeductions.StringFixed(2),
		p.OtherDeductions.StringFixed(2),
		p.NetAmount.StringFixed(2),
		derefString(p.TransactionID),
		p.Description,
	}
}

func exportPaymentsCSV(items []domain.PaymentRecord) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(statementHeader)
	for _, p := range items {
		_ = w.Write(statementRow(p))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportPaymentsXLSX(items []domain.PaymentRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range statementHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, p := range items {
		row := r + 2
		gross, _ := p.Amount.Float64()
		tax, _ := p.TaxDeductions.Float64()
		other, _ := p.OtherDeductions.Float64()
		net, _ := p.NetAmount.Float64()
		values := []any{
			p.ID,
			p.Reference,
			p.Type,
			p.PayPeriodStart.Format(dateLayout),
			p.PayPeriodEnd.Format(dateLayout),
			p.PaymentDate.Format(dateLayout),
			string(p.PaymentMethod),
			string(p.Status),
			gross,
			tax,
			other,
			net,
			derefString(p.TransactionID),
			p.Description,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "C", "H", 14)
	_ = f.SetColWidth(sheet, "I", "L", 14)
	_ = f.SetColWidth(sheet, "M", "M", 20)
	_ = f.SetColWidth(sheet, "N", "N", 36)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "N1", style)
	if len(items) > 0 {
		numFmt, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
		last, _ := excelize.CoordinatesToCellName(12, len(items)+1)
		_ = f.SetCellStyle(sheet, "I2", last, numFmt)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
