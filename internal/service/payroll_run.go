package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
	"workforce-backend/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	maxPayrollRun    = 500
	workdaysPerMonth = 22

	SkipNotFound    = "employee not found"
	SkipNotPayable  = "employee is not active"
	SkipNoSalary    = "no base salary on file"
	SkipAlreadyPaid = "already has a payment for this period"
)

// PayrollRunSkip names an employee the run did not pay and why.
type PayrollRunSkip struct {
	EmployeeID int64
	Reason     string
}

type PayrollRunResult struct {
	Period  domain.TimeRange
	Created []domain.PaymentRecord
	Skipped []PayrollRunSkip
}

// PayrollOverviewRow is one employee's standing for the current pay period.
type PayrollOverviewRow struct {
	Employee   domain.Employee
	BaseSalary decimal.Decimal
	// Payment is the period's latest payment, nil when none was made.
	Payment *domain.PaymentRecord
	// Additions is what the payment paid on top of the base salary.
	Additions decimal.Decimal
	Total     decimal.Decimal
}

type PayrollOverview struct {
	Period            domain.TimeRange
	Rows              []PayrollOverviewRow
	NextPayrollDate   time.Time
	TotalEmployees    int
	TotalWorkingHours float64
	// TotalUnpaid sums the totals of rows without a completed payment.
	TotalUnpaid decimal.Decimal
}

// ProcessPayroll creates one pending salary payment for each listed employee for the
// month containing now, paid from the employee's base salary. Employees that are
// unknown, inactive, without a salary, or already paid for the month are skipped.
func (s PayrollService) ProcessPayroll(ctx context.Context, actorID int64, employeeIDs []int64, now time.Time) (PayrollRunResult, error) {
	ids, err := checkRunIDs(employeeIDs)
	if err != nil {
		return PayrollRunResult{}, err
	}
	period := domain.MonthRange(now.Year(), now.Month(), now.Location())
	result := PayrollRunResult{Period: period}

	existing, err := s.Store.ListForPeriod(ctx, period)
	if err != nil {
		return result, fmt.Errorf("list period payments: %w", err)
	}
	paid := make(map[int64]bool, len(existing))
	for _, p := range existing {
		paid[p.EmployeeID] = true
	}

	description := "Salary payment for " + period.Start.Format("January 2006")
	for _, id := range ids {
		emp, err := s.Employees.Get(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			result.Skipped = append(result.Skipped, PayrollRunSkip{EmployeeID: id, Reason: SkipNotFound})
			continue
		}
		if err != nil {
			return result, fmt.Errorf("get employee %d: %w", id, err)
		}
		reason := ""
		switch {
		case !emp.Payable():
			reason = SkipNotPayable
		case emp.BaseSalary == nil || !emp.BaseSalary.IsPositive():
			reason = SkipNoSalary
		case paid[id]:
			reason = SkipAlreadyPaid
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, PayrollRunSkip{EmployeeID: id, Reason: reason})
			continue
		}

		salary := emp.BaseSalary.Round(2)
		rec, err := s.Store.CreateWithLog(ctx, ports.NewPayment{
			EmployeeID:      id,
			Amount:          salary,
			NetAmount:       salary,
			TaxDeductions:   decimal.Zero,
			OtherDeductions: decimal.Zero,
			PayPeriodStart:  period.Start,
			PayPeriodEnd:    period.End.AddDate(0, 0, -1),
			PaymentDate:     now,
			PaymentMethod:   domain.MethodBankTransfer,
			Status:          domain.PaymentPending,
			Reference:       newPaymentReference(),
			Type:            domain.PaymentTypeSalary,
			Description:     description,
			CreatedByID:     actorID,
			CreatedAt:       now,
		}, func(p domain.PaymentRecord) ports.NewActivityLog {
			return ports.NewActivityLog{
				UserID:      actorID,
				Action:      "processed",
				Description: "Processed payroll run for " + period.Start.Format("January 2006"),
				Details: map[string]any{
					"paymentId":  p.ID,
					"employeeId": p.EmployeeID,
					"amount":     p.NetAmount.String(),
				},
				CreatedAt: now,
			}
		})
		if err != nil {
			return result, fmt.Errorf("create payment for employee %d: %w", id, err)
		}
		paid[id] = true
		net, _ := rec.NetAmount.Float64()
		s.Metrics.PayrollCreated(string(rec.Status), net)
		result.Created = append(result.Created, *rec)
	}

	s.logger().Info("payroll run processed",
		"period", period.Start.Format("2006-01"),
		"created", len(result.Created),
		"skipped", len(result.Skipped),
		"created_by", actorID)
	return result, nil
}

// Overview summarises the current month's payroll across payable employees.
func (s PayrollService) Overview(ctx context.Context, now time.Time) (PayrollOverview, error) {
	period := domain.MonthRange(now.Year(), now.Month(), now.Location())
	employees, err := s.Employees.ListPayable(ctx)
	if err != nil {
		return PayrollOverview{}, fmt.Errorf("list payable employees: %w", err)
	}
	payments, err := s.Store.ListForPeriod(ctx, period)
	if err != nil {
		return PayrollOverview{}, fmt.Errorf("list period payments: %w", err)
	}
	// payments arrive latest first, so the first seen per employee wins.
	latest := make(map[int64]*domain.PaymentRecord, len(payments))
	for i := range payments {
		if _, ok := latest[payments[i].EmployeeID]; !ok {
			latest[payments[i].EmployeeID] = &payments[i]
		}
	}

	out := PayrollOverview{
		Period:            period,
		Rows:              make([]PayrollOverviewRow, 0, len(employees)),
		NextPayrollDate:   period.End,
		TotalEmployees:    len(employees),
		TotalWorkingHours: float64(len(employees)*workdaysPerMonth) * s.workday().Hours(),
		TotalUnpaid:       decimal.Zero,
	}
	for _, emp := range employees {
		row := PayrollOverviewRow{Employee: emp, BaseSalary: decimal.Zero, Additions: decimal.Zero}
		if emp.BaseSalary != nil {
			row.BaseSalary = *emp.BaseSalary
		}
		row.Payment = latest[emp.ID]
		if row.Payment != nil && row.Payment.Amount.GreaterThan(row.BaseSalary) {
			row.Additions = row.Payment.Amount.Sub(row.BaseSalary)
		}
		row.Total = row.BaseSalary.Add(row.Additions)
		if row.Payment == nil || row.Payment.Status != domain.PaymentCompleted {
			out.TotalUnpaid = out.TotalUnpaid.Add(row.Total)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func (s PayrollService) workday() time.Duration {
	if s.Workday <= 0 {
		return 8 * time.Hour
	}
	return s.Workday
}

func checkRunIDs(employeeIDs []int64) ([]int64, error) {
	if len(employeeIDs) == 0 {
		return nil, fmt.Errorf("%w: employeeIds is required", ErrInvalidInput)
	}
	if len(employeeIDs) > maxPayrollRun {
		return nil, fmt.Errorf("%w: at most %d employees per run", ErrInvalidInput, maxPayrollRun)
	}
	seen := make(map[int64]bool, len(employeeIDs))
	ids := make([]int64, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: employeeIds must be positive", ErrInvalidInput)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
