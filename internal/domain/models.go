package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleEmployee UserRole = "EMPLOYEE"

	NotCheckedIn ClockState = "NOT_CHECKED_IN"
	CheckedIn    ClockState = "CHECKED_IN"
	CheckedOut   ClockState = "CHECKED_OUT"

	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"

	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodStripe       PaymentMethod = "STRIPE"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodCheck        PaymentMethod = "CHECK"

	EmploymentActive     EmploymentStatus = "ACTIVE"
	EmploymentProbation  EmploymentStatus = "PROBATION"
	EmploymentSuspended  EmploymentStatus = "SUSPENDED"
	EmploymentTerminated EmploymentStatus = "TERMINATED"
	EmploymentOnLeave    EmploymentStatus = "ON_LEAVE"

	PaymentTypeSalary = "SALARY"
)

type UserRole string
type ClockState string
type PaymentStatus string
type PaymentMethod string
type EmploymentStatus string

// IsManagement reports whether the role may act on other employees' records.
func (r UserRole) IsManagement() bool {
	return r == RoleAdmin || r == RoleManager
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodStripe, MethodMobileMoney, MethodCheck:
		return true
	}
	return false
}

type Employee struct {
	ID               int64
	EmployeeCode     string
	Name             string
	Email            string
	Role             UserRole
	Position         string
	EmploymentStatus EmploymentStatus
	BaseSalary       *decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
}

// Payable reports whether a payroll run should pay the employee.
func (e Employee) Payable() bool {
	return e.DeletedAt == nil && (e.EmploymentStatus == EmploymentActive || e.EmploymentStatus == EmploymentProbation)
}

// EmployeeSummary is the employee projection joined onto listings.
type EmployeeSummary struct {
	ID           int64
	EmployeeCode string
	Name         string
	Email        string
	Role         UserRole
}

// AttendanceRecord is one clock-in/clock-out session. TotalHours is set once, at clock-out.
type AttendanceRecord struct {
	ID           int64
	EmployeeID   int64
	Date         time.Time
	CheckInTime  time.Time
	CheckOutTime *time.Time
	TotalHours   *float64
	CreatedAt    time.Time
	Employee     *EmployeeSummary
}

// Open reports whether the employee is still clocked in on this record.
func (a AttendanceRecord) Open() bool {
	return a.CheckOutTime == nil
}

// AttendanceStatus is the derived daily clock state of one employee.
type AttendanceStatus struct {
	State        ClockState
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Elapsed      time.Duration
	TotalHours   *float64
	// Progress is the display-only fraction of the workday elapsed, capped at 1.
	// It is 1 once the session is closed.
	Progress float64
}

type PaymentRecord struct {
	ID              int64
	EmployeeID      int64
	Amount          decimal.Decimal
	NetAmount       decimal.Decimal
	TaxDeductions   decimal.Decimal
	OtherDeductions decimal.Decimal
	PayPeriodStart  time.Time
	PayPeriodEnd    time.Time
	PaymentDate     time.Time
	PaymentMethod   PaymentMethod
	Status          PaymentStatus
	TransactionID   *string
	Reference       string
	Type            string
	Description     string
	CreatedByID     int64
	CreatedAt       time.Time
	Employee        *EmployeeSummary
}

type ActivityLog struct {
	ID          int64
	UserID      int64
	Action      string
	Description string
	Details     map[string]any
	CreatedAt   time.Time
	User        *EmployeeSummary
}
