package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/metrics"
	"workforce-backend/internal/ports"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayrollService computes pay and manages payment records.
type PayrollService struct {
	Store     ports.PaymentStore
	Employees ports.EmployeeLookup
	// Workday sizes the overview's working-hours figure; 8h when zero.
	Workday time.Duration
	Logger  *slog.Logger
	Metrics *metrics.Collectors
}

type PayrollInput struct {
	EmployeeID     int64                    `json:"employeeId" validate:"required,gt=0"`
	PaymentMethod  domain.PaymentMethod     `json:"paymentMethod" validate:"omitempty,oneof=BANK_TRANSFER STRIPE MOBILE_MONEY CHECK"`
	Status         domain.PaymentStatus     `json:"status" validate:"omitempty,oneof=PENDING COMPLETED FAILED"`
	PaymentDate    time.Time                `json:"paymentDate" validate:"required"`
	TransactionID  *string                  `json:"transactionId"`
	PayPeriodStart time.Time                `json:"payPeriodStart" validate:"required"`
	PayPeriodEnd   time.Time                `json:"payPeriodEnd" validate:"required,gtefield=PayPeriodStart"`
	Components     domain.PayrollComponents `json:"components"`
	Description    string                   `json:"description" validate:"max=500"`
}

type CurrentMonthPayment struct {
	Paid      bool
	Amount    decimal.Decimal
	CreatedAt *time.Time
	Status    *domain.PaymentStatus
}

type YearToDate struct {
	Total   decimal.Decimal
	Average decimal.Decimal
	// Increase is the annualised run rate against last year's total, in percent.
	// Nil when last year has no payments to compare with.
	Increase *float64
}

type NextPayment struct {
	Estimated time.Time
	Amount    decimal.Decimal
}

type PaymentStatistics struct {
	CurrentMonth  CurrentMonthPayment
	YearToDate    YearToDate
	LastYearTotal decimal.Decimal
	NextPayment   NextPayment
}

// ComputeNetPay totals earnings and deductions.
func (s PayrollService) ComputeNetPay(c domain.PayrollComponents) domain.PayrollTotals {
	return c.Totals()
}

// CreatePayroll stores a payment record for one employee along with its audit entry.
func (s PayrollService) CreatePayroll(ctx context.Context, actorID int64, in PayrollInput, now time.Time) (*domain.PaymentRecord, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.Employees.Get(ctx, in.EmployeeID); err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = domain.MethodBankTransfer
	}
	if in.Status == "" {
		in.Status = domain.PaymentPending
	}

	totals := in.Components.Totals()
	rec, err := s.Store.CreateWithLog(ctx, ports.NewPayment{
		EmployeeID:      in.EmployeeID,
		Amount:          totals.TotalEarnings,
		NetAmount:       totals.NetAmount,
		TaxDeductions:   in.Components.TaxDeductions,
		OtherDeductions: totals.TotalDeductions.Sub(in.Components.TaxDeductions),
		PayPeriodStart:  in.PayPeriodStart,
		PayPeriodEnd:    in.PayPeriodEnd,
		PaymentDate:     in.PaymentDate,
		PaymentMethod:   in.PaymentMethod,
		Status:          in.Status,
		TransactionID:   in.TransactionID,
		Reference:       newPaymentReference(),
		Type:            domain.PaymentTypeSalary,
		Description:     in.Description,
		CreatedByID:     actorID,
		CreatedAt:       now,
	}, func(p domain.PaymentRecord) ports.NewActivityLog {
		return ports.NewActivityLog{
			UserID:      actorID,
			Action:      "created",
			Description: "Made some updates to the payroll",
			Details: map[string]any{
				"paymentId":  p.ID,
				"employeeId": p.EmployeeID,
				"amount":     p.NetAmount.String(),
			},
			CreatedAt: now,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	net, _ := rec.NetAmount.Float64()
	s.Metrics.PayrollCreated(string(rec.Status), net)
	s.logger().Info("payroll created", "payment_id", rec.ID, "employee_id", rec.EmployeeID, "net_amount", rec.NetAmount.String(), "created_by", actorID)
	return rec, nil
}

// Get returns a single payment record.
func (s PayrollService) Get(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	return s.Store.Get(ctx, id)
}

// History returns a page of one employee's payments, newest first.
func (s PayrollService) History(ctx context.Context, filter domain.PaymentFilter) (domain.PaymentPage, error) {
	if err := checkPaymentFilter(filter); err != nil {
		return domain.PaymentPage{}, err
	}
	filter.Page = filter.Page.Normalize()
	records, total, err := s.Store.List(ctx, filter)
	if err != nil {
		return domain.PaymentPage{}, fmt.Errorf("list payments: %w", err)
	}
	return domain.PaymentPage{
		Records:    records,
		Pagination: domain.NewPagination(total, filter.Page),
	}, nil
}

// Statement returns every payment matching filter for export.
func (s PayrollService) Statement(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	if err := checkPaymentFilter(filter); err != nil {
		return nil, err
	}
	records, err := s.Store.ListAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list statement payments: %w", err)
	}
	return records, nil
}

// Statistics loads the employee's payment history and summarises it relative to now.
func (s PayrollService) Statistics(ctx context.Context, employeeID int64, now time.Time) (PaymentStatistics, error) {
	if _, err := s.Employees.Get(ctx, employeeID); err != nil {
		return PaymentStatistics{}, fmt.Errorf("get employee: %w", err)
	}
	history, err := s.Store.ListByEmployee(ctx, employeeID)
	if err != nil {
		return PaymentStatistics{}, fmt.Errorf("list payments: %w", err)
	}
	return ComputeStatistics(history, now), nil
}

// ComputeStatistics derives month-to-date, year-to-date and next-payment figures.
// Calendar boundaries are taken in now's location.
func ComputeStatistics(history []domain.PaymentRecord, now time.Time) PaymentStatistics {
	loc := now.Location()
	month := domain.MonthRange(now.Year(), now.Month(), loc)
	year := domain.YearRange(now.Year(), loc)
	lastYear := domain.YearRange(now.Year()-1, loc)

	var current, last *domain.PaymentRecord
	ytd := decimal.Zero
	lastYearTotal := decimal.Zero
	for i := range history {
		p := &history[i]
		if last == nil || p.CreatedAt.After(last.CreatedAt) {
			last = p
		}
		if month.Contains(p.CreatedAt) && (current == nil || p.CreatedAt.After(current.CreatedAt)) {
			current = p
		}
		if year.Contains(p.CreatedAt) {
			ytd = ytd.Add(p.Amount)
		}
		if lastYear.Contains(p.CreatedAt) {
			lastYearTotal = lastYearTotal.Add(p.Amount)
		}
	}

	elapsedMonths := decimal.NewFromInt(int64(now.Month()))
	average := ytd.Div(elapsedMonths)

	var stats PaymentStatistics
	stats.YearToDate = YearToDate{Total: ytd, Average: average}
	stats.LastYearTotal = lastYearTotal
	if !lastYearTotal.IsZero() {
		pct, _ := average.Mul(decimal.NewFromInt(12)).Sub(lastYearTotal).
			Div(lastYearTotal).Mul(decimal.NewFromInt(100)).Float64()
		stats.YearToDate.Increase = &pct
	}

	switch {
	case current != nil:
		created := current.CreatedAt
		status := current.Status
		stats.CurrentMonth = CurrentMonthPayment{Paid: true, Amount: current.Amount, CreatedAt: &created, Status: &status}
	case last != nil:
		status := last.Status
		stats.CurrentMonth = CurrentMonthPayment{Amount: last.Amount, Status: &status}
	default:
		stats.CurrentMonth = CurrentMonthPayment{Amount: decimal.Zero}
	}

	if last != nil {
		stats.NextPayment = NextPayment{Estimated: last.CreatedAt.AddDate(0, 1, 0), Amount: last.Amount}
	} else {
		stats.NextPayment = NextPayment{Estimated: now.AddDate(0, 1, 0), Amount: decimal.Zero}
	}
	return stats
}

func checkPaymentFilter(f domain.PaymentFilter) error {
	if f.EmployeeID <= 0 {
		return fmt.Errorf("%w: employeeId is required", ErrInvalidInput)
	}
	if f.Month != nil && (*f.Month < time.January || *f.Month > time.December) {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	return nil
}

func newPaymentReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PAY-" + strings.ToUpper(id[:10])
}

func (s PayrollService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
