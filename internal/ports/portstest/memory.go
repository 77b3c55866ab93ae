// Package portstest provides in-memory implementations of the storage ports for tests.
package portstest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
	"workforce-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation mimics the error postgres returns for a duplicate key.
func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type Employees struct {
	mu   sync.RWMutex
	byID map[int64]domain.Employee
}

var _ ports.EmployeeLookup = (*Employees)(nil)

func NewEmployees(list ...domain.Employee) *Employees {
	e := &Employees{byID: make(map[int64]domain.Employee, len(list))}
	for _, emp := range list {
		e.byID[emp.ID] = emp
	}
	return e
}

func (e *Employees) Get(_ context.Context, id int64) (*domain.Employee, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	emp, ok := e.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &emp, nil
}

func (e *Employees) ListPayable(context.Context) ([]domain.Employee, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []domain.Employee
	for _, emp := range e.byID {
		if emp.Role == domain.RoleEmployee && emp.Payable() {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (e *Employees) summary(id int64) *domain.EmployeeSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	emp, ok := e.byID[id]
	if !ok {
		return nil
	}
	return &domain.EmployeeSummary{ID: emp.ID, EmployeeCode: emp.EmployeeCode, Name: emp.Name, Email: emp.Email, Role: emp.Role}
}

// Attendance enforces one open record per employee and day, like the partial unique index.
type Attendance struct {
	mu        sync.Mutex
	records   []domain.AttendanceRecord
	nextID    int64
	Employees *Employees
}

var _ ports.AttendanceStore = (*Attendance)(nil)

func NewAttendance(employees *Employees) *Attendance {
	return &Attendance{Employees: employees}
}

// Seed stores records as they are, assigning ids.
func (a *Attendance) Seed(recs ...domain.AttendanceRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range recs {
		a.nextID++
		r.ID = a.nextID
		a.records = append(a.records, r)
	}
}

func (a *Attendance) All() []domain.AttendanceRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AttendanceRecord, len(a.records))
	copy(out, a.records)
	return out
}

func (a *Attendance) FindOpen(_ context.Context, employeeID int64, day domain.TimeRange) (*domain.AttendanceRecord, error) {
	return a.latest(employeeID, day, true), nil
}

func (a *Attendance) FindLatest(_ context.Context, employeeID int64, day domain.TimeRange) (*domain.AttendanceRecord, error) {
	return a.latest(employeeID, day, false), nil
}

func (a *Attendance) latest(employeeID int64, day domain.TimeRange, openOnly bool) *domain.AttendanceRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	var best *domain.AttendanceRecord
	for i := range a.records {
		r := a.records[i]
		if r.EmployeeID != employeeID || !day.Contains(r.Date) || (openOnly && !r.Open()) {
			continue
		}
		if best == nil || r.CheckInTime.After(best.CheckInTime) {
			best = &r
		}
	}
	if best == nil {
		return nil
	}
	return a.withEmployee(*best)
}

func (a *Attendance) Create(_ context.Context, employeeID int64, date, checkIn time.Time) (*domain.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.records {
		if r.EmployeeID == employeeID && r.Date.Equal(date) && r.Open() {
			return nil, uniqueViolation("attendance_open_session_uniq")
		}
	}
	a.nextID++
	rec := domain.AttendanceRecord{
		ID:          a.nextID,
		EmployeeID:  employeeID,
		Date:        date,
		CheckInTime: checkIn,
		CreatedAt:   checkIn,
	}
	a.records = append(a.records, rec)
	return a.withEmployee(rec), nil
}

func (a *Attendance) Close(_ context.Context, id int64, checkOut time.Time, totalHours float64) (*domain.AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.records {
		r := &a.records[i]
		if r.ID != id {
			continue
		}
		if !r.Open() {
			return nil, repository.ErrNotFound
		}
		out, hours := checkOut, totalHours
		r.CheckOutTime = &out
		r.TotalHours = &hours
		return a.withEmployee(*r), nil
	}
	return nil, repository.ErrNotFound
}

func (a *Attendance) List(_ context.Context, f domain.AttendanceFilter) ([]domain.AttendanceRecord, int64, error) {
	a.mu.Lock()
	var matched []domain.AttendanceRecord
	for _, r := range a.records {
		if f.Date != nil && !domain.DayRange(*f.Date).Contains(r.Date) {
			continue
		}
		if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
			continue
		}
		matched = append(matched, r)
	}
	a.mu.Unlock()

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" && a.Employees != nil {
		filtered := matched[:0]
		for _, r := range matched {
			s := a.Employees.summary(r.EmployeeID)
			if s != nil && (contains(s.Name, q) || contains(s.Email, q) || contains(s.EmployeeCode, q)) {
				filtered = append(filtered, r)
			}
		}
		matched = filtered
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CheckInTime.Equal(matched[j].CheckInTime) {
			return matched[i].CheckInTime.After(matched[j].CheckInTime)
		}
		return matched[i].ID > matched[j].ID
	})
	page := paginate(matched, f.Page)
	for i := range page {
		page[i] = *a.withEmployee(page[i])
	}
	return page, int64(len(matched)), nil
}

func (a *Attendance) ListRange(_ context.Context, rng domain.TimeRange, employeeID *int64) ([]domain.AttendanceRecord, error) {
	a.mu.Lock()
	var out []domain.AttendanceRecord
	for _, r := range a.records {
		if !rng.Contains(r.Date) || (employeeID != nil && r.EmployeeID != *employeeID) {
			continue
		}
		out = append(out, r)
	}
	a.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CheckInTime.Before(out[j].CheckInTime)
	})
	for i := range out {
		out[i] = *a.withEmployee(out[i])
	}
	return out, nil
}

func (a *Attendance) withEmployee(r domain.AttendanceRecord) *domain.AttendanceRecord {
	if a.Employees != nil {
		r.Employee = a.Employees.summary(r.EmployeeID)
	}
	return &r
}

// Payments stores payment records and writes their logs to Logs.
type Payments struct {
	mu        sync.Mutex
	records   []domain.PaymentRecord
	nextID    int64
	Logs      *Activity
	Employees *Employees
	Location  *time.Location
	// FailLog makes CreateWithLog fail after the insert, which must leave nothing behind.
	FailLog error
}

var _ ports.PaymentStore = (*Payments)(nil)

func NewPayments(employees *Employees, logs *Activity) *Payments {
	return &Payments{Employees: employees, Logs: logs, Location: time.UTC}
}

// Seed stores records as they are, assigning ids.
func (p *Payments) Seed(recs ...domain.PaymentRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range recs {
		p.nextID++
		r.ID = p.nextID
		p.records = append(p.records, r)
	}
}

func (p *Payments) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

func (p *Payments) CreateWithLog(ctx context.Context, in ports.NewPayment, logFor func(domain.PaymentRecord) ports.NewActivityLog) (*domain.PaymentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.records {
		if r.Reference == in.Reference {
			return nil, uniqueViolation("payment_records_reference_key")
		}
	}
	rec := domain.PaymentRecord{
		ID:              p.nextID + 1,
		EmployeeID:      in.EmployeeID,
		Amount:          in.Amount,
		NetAmount:       in.NetAmount,
		TaxDeductions:   in.TaxDeductions,
		OtherDeductions: in.OtherDeductions,
		PayPeriodStart:  in.PayPeriodStart,
		PayPeriodEnd:    in.PayPeriodEnd,
		PaymentDate:     in.PaymentDate,
		PaymentMethod:   in.PaymentMethod,
		Status:          in.Status,
		TransactionID:   in.TransactionID,
		Reference:       in.Reference,
		Type:            in.Type,
		Description:     in.Description,
		CreatedByID:     in.CreatedByID,
		CreatedAt:       in.CreatedAt,
	}
	if p.Employees != nil {
		rec.Employee = p.Employees.summary(rec.EmployeeID)
	}
	if p.FailLog != nil {
		return nil, p.FailLog
	}
	if logFor != nil && p.Logs != nil {
		if _, err := p.Logs.Create(ctx, logFor(rec)); err != nil {
			return nil, err
		}
	}
	p.nextID++
	p.records = append(p.records, rec)
	return &rec, nil
}

func (p *Payments) Get(_ context.Context, id int64) (*domain.PaymentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p *Payments) List(_ context.Context, f domain.PaymentFilter) ([]domain.PaymentRecord, int64, error) {
	matched := p.match(f)
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (p *Payments) ListAll(_ context.Context, f domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	return p.match(f), nil
}

func (p *Payments) ListByEmployee(_ context.Context, employeeID int64) ([]domain.PaymentRecord, error) {
	return p.match(domain.PaymentFilter{EmployeeID: employeeID}), nil
}

func (p *Payments) ListForPeriod(_ context.Context, period domain.TimeRange) ([]domain.PaymentRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.PaymentRecord
	for _, r := range p.records {
		if period.Contains(r.PayPeriodStart) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaymentDate.Equal(out[j].PaymentDate) {
			return out[i].PaymentDate.After(out[j].PaymentDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (p *Payments) match(f domain.PaymentFilter) []domain.PaymentRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	rng := f.CreatedRange(loc)
	q := strings.ToLower(strings.TrimSpace(f.Search))
	var out []domain.PaymentRecord
	for _, r := range p.records {
		if r.EmployeeID != f.EmployeeID {
			continue
		}
		if rng != nil && !rng.Contains(r.CreatedAt) {
			continue
		}
		if q != "" && !contains(r.Reference, q) && !contains(r.Type, q) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

type Activity struct {
	mu     sync.Mutex
	logs   []domain.ActivityLog
	nextID int64
}

var _ ports.ActivityStore = (*Activity)(nil)

func NewActivity() *Activity { return &Activity{} }

func (a *Activity) All() []domain.ActivityLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.ActivityLog, len(a.logs))
	copy(out, a.logs)
	return out
}

func (a *Activity) Create(_ context.Context, in ports.NewActivityLog) (*domain.ActivityLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	details := in.Details
	if details == nil {
		details = map[string]any{}
	}
	l := domain.ActivityLog{
		ID:          a.nextID,
		UserID:      in.UserID,
		Action:      in.Action,
		Description: in.Description,
		Details:     details,
		CreatedAt:   created,
	}
	a.logs = append(a.logs, l)
	return &l, nil
}

func (a *Activity) List(_ context.Context, f domain.ActivityLogFilter) ([]domain.ActivityLog, int64, error) {
	a.mu.Lock()
	q := strings.ToLower(strings.TrimSpace(f.Search))
	var matched []domain.ActivityLog
	for _, l := range a.logs {
		if f.UserID != nil && l.UserID != *f.UserID {
			continue
		}
		if q != "" && !contains(l.Action, q) && !contains(l.Description, q) {
			continue
		}
		matched = append(matched, l)
	}
	a.mu.Unlock()
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, f.Page), int64(len(matched)), nil
}

func (a *Activity) Delete(_ context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, l := range a.logs {
		if l.ID == id {
			a.logs = append(a.logs[:i], a.logs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (a *Activity) Clear(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = nil
	return nil
}

func paginate[T any](items []T, p domain.Page) []T {
	p = p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

func contains(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
