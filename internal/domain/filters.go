package domain

import "time"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page to >= 1 and the limit to [1, MaxPageLimit].
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

type Pagination struct {
	Total   int64
	Pages   int64
	Current int
	Limit   int
}

func NewPagination(total int64, p Page) Pagination {
	p = p.Normalize()
	pages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		pages++
	}
	return Pagination{Total: total, Pages: pages, Current: p.Page, Limit: p.Limit}
}

type AttendanceFilter struct {
	Date       *time.Time
	EmployeeID *int64
	Search     string
	Page       Page
}

// PaymentFilter narrows one employee's payments. Month only applies together with Year.
type PaymentFilter struct {
	EmployeeID int64
	Year       *int
	Month      *time.Month
	Search     string
	Page       Page
}

// CreatedRange returns the createdAt window implied by Year/Month, if any.
func (f PaymentFilter) CreatedRange(loc *time.Location) *TimeRange {
	if f.Year == nil {
		return nil
	}
	if f.Month != nil {
		r := MonthRange(*f.Year, *f.Month, loc)
		return &r
	}
	r := YearRange(*f.Year, loc)
	return &r
}

type ActivityLogFilter struct {
	// UserID scopes the listing to one user's own entries when set.
	UserID *int64
	Search string
	Page   Page
}

type AttendancePage struct {
	Records    []AttendanceRecord
	Pagination Pagination
}

type PaymentPage struct {
	Records    []PaymentRecord
	Pagination Pagination
}

type ActivityLogPage struct {
	Logs       []ActivityLog
	Pagination Pagination
}
