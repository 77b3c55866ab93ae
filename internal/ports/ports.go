package ports

import (
	"context"
	"time"

	"workforce-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	// FindOpen returns the latest record in day without a check-out, or nil.
	FindOpen(ctx context.Context, employeeID int64, day domain.TimeRange) (*domain.AttendanceRecord, error)
	// FindLatest returns the record in day with the latest check-in, or nil.
	FindLatest(ctx context.Context, employeeID int64, day domain.TimeRange) (*domain.AttendanceRecord, error)
	Create(ctx context.Context, employeeID int64, date, checkIn time.Time) (*domain.AttendanceRecord, error)
	// Close sets check-out and total hours on a still-open record; ErrNotFound if it is already closed.
	Close(ctx context.Context, id int64, checkOut time.Time, totalHours float64) (*domain.AttendanceRecord, error)
	List(ctx context.Context, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, int64, error)
	ListRange(ctx context.Context, r domain.TimeRange, employeeID *int64) ([]domain.AttendanceRecord, error)
}

type NewPayment struct {
	EmployeeID      int64
	Amount          decimal.Decimal
	NetAmount       decimal.Decimal
	TaxDeductions   decimal.Decimal
	OtherDeductions decimal.Decimal
	PayPeriodStart  time.Time
	PayPeriodEnd    time.Time
	PaymentDate     time.Time
	PaymentMethod   domain.PaymentMethod
	Status          domain.PaymentStatus
	TransactionID   *string
	Reference       string
	Type            string
	Description     string
	CreatedByID     int64
	CreatedAt       time.Time
}

type NewActivityLog struct {
	UserID      int64
	Action      string
	Description string
	Details     map[string]any
	CreatedAt   time.Time
}

// PaymentStore persists payment records.
type PaymentStore interface {
	// CreateWithLog stores the payment and, in the same transaction, an activity log
	// built by logFor from the stored record.
	CreateWithLog(ctx context.Context, p NewPayment, logFor func(domain.PaymentRecord) NewActivityLog) (*domain.PaymentRecord, error)
	Get(ctx context.Context, id int64) (*domain.PaymentRecord, error)
	List(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentRecord, int64, error)
	// ListAll returns every record matching filter, ignoring its page.
	ListAll(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentRecord, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]domain.PaymentRecord, error)
	// ListForPeriod returns every payment whose pay period starts inside period,
	// latest payment date first.
	ListForPeriod(ctx context.Context, period domain.TimeRange) ([]domain.PaymentRecord, error)
}

// EmployeeLookup resolves employees owned by the wider HR system.
type EmployeeLookup interface {
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	// ListPayable returns active and probationary staff with the EMPLOYEE role, by name.
	ListPayable(ctx context.Context) ([]domain.Employee, error)
}

// ActivityStore persists the audit trail.
type ActivityStore interface {
	Create(ctx context.Context, in NewActivityLog) (*domain.ActivityLog, error)
	List(ctx context.Context, filter domain.ActivityLogFilter) ([]domain.ActivityLog, int64, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}
