package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/metrics"
	"workforce-backend/internal/ports"
	"workforce-backend/internal/repository"
)

const defaultWorkday = 8 * time.Hour

var (
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNoActiveClockIn  = errors.New("no active clock-in found")
)

// AttendanceService tracks daily clock-in/clock-out state.
type AttendanceService struct {
	Store     ports.AttendanceStore
	Employees ports.EmployeeLookup
	Workday   time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Collectors
}

// ClockIn opens a new attendance record for today.
func (s AttendanceService) ClockIn(ctx context.Context, employeeID int64, now time.Time) (*domain.AttendanceRecord, error) {
	if _, err := s.Employees.Get(ctx, employeeID); err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	day := domain.DayRange(now)
	open, err := s.Store.FindOpen(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("find open attendance: %w", err)
	}
	if open != nil {
		s.Metrics.ClockEvent("clock_in", "rejected")
		return nil, ErrAlreadyClockedIn
	}
	rec, err := s.Store.Create(ctx, employeeID, day.Start, now)
	if err != nil {
		// Concurrent clock-in for the same day lost the race on the open-record index.
		if repository.IsDuplicate(err) {
			s.Metrics.ClockEvent("clock_in", "rejected")
			return nil, ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	s.Metrics.ClockEvent("clock_in", "ok")
	s.logger().Info("employee clocked in", "employee_id", employeeID, "attendance_id", rec.ID)
	return rec, nil
}

// ClockOut closes today's latest open record and freezes its total hours.
func (s AttendanceService) ClockOut(ctx context.Context, employeeID int64, now time.Time) (*domain.AttendanceRecord, error) {
	open, err := s.Store.FindOpen(ctx, employeeID, domain.DayRange(now))
	if err != nil {
		return nil, fmt.Errorf("find open attendance: %w", err)
	}
	if open == nil {
		s.Metrics.ClockEvent("clock_out", "rejected")
		return nil, ErrNoActiveClockIn
	}
	hours := HoursBetween(open.CheckInTime, now)
	rec, err := s.Store.Close(ctx, open.ID, now, hours)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.Metrics.ClockEvent("clock_out", "rejected")
			return nil, ErrNoActiveClockIn
		}
		return nil, fmt.Errorf("close attendance: %w", err)
	}
	s.Metrics.ClockEvent("clock_out", "ok")
	s.logger().Info("employee clocked out", "employee_id", employeeID, "attendance_id", rec.ID, "total_hours", hours)
	return rec, nil
}

// CurrentStatus reports the employee's clock state for the day containing now.
func (s AttendanceService) CurrentStatus(ctx context.Context, employeeID int64, now time.Time) (domain.AttendanceStatus, error) {
	latest, err := s.Store.FindLatest(ctx, employeeID, domain.DayRange(now))
	if err != nil {
		return domain.AttendanceStatus{}, fmt.Errorf("find latest attendance: %w", err)
	}
	return StatusOf(latest, now, s.workday()), nil
}

// History returns a page of attendance records.
func (s AttendanceService) History(ctx context.Context, filter domain.AttendanceFilter) (domain.AttendancePage, error) {
	filter.Page = filter.Page.Normalize()
	records, total, err := s.Store.List(ctx, filter)
	if err != nil {
		return domain.AttendancePage{}, fmt.Errorf("list attendance: %w", err)
	}
	return domain.AttendancePage{
		Records:    records,
		Pagination: domain.NewPagination(total, filter.Page),
	}, nil
}

// Monthly returns every record of the month in date order, optionally for one employee.
func (s AttendanceService) Monthly(ctx context.Context, year int, month time.Month, loc *time.Location, employeeID *int64) ([]domain.AttendanceRecord, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	records, err := s.Store.ListRange(ctx, domain.MonthRange(year, month, loc), employeeID)
	if err != nil {
		return nil, fmt.Errorf("list monthly attendance: %w", err)
	}
	return records, nil
}

func (s AttendanceService) workday() time.Duration {
	if s.Workday <= 0 {
		return defaultWorkday
	}
	return s.Workday
}

func (s AttendanceService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// HoursBetween converts the elapsed milliseconds between in and out to fractional hours.
func HoursBetween(in, out time.Time) float64 {
	return float64(out.Sub(in).Milliseconds()) / 3_600_000
}

// WorkdayProgress is the elapsed fraction of a workday, clamped to [0, 1].
func WorkdayProgress(elapsed, workday time.Duration) float64 {
	if workday <= 0 || elapsed <= 0 {
		return 0
	}
	return min(1.0, float64(elapsed.Milliseconds())/float64(workday.Milliseconds()))
}

// StatusOf derives the clock state from the day's latest record (nil when there is none).
func StatusOf(latest *domain.AttendanceRecord, now time.Time, workday time.Duration) domain.AttendanceStatus {
	if latest == nil {
		return domain.AttendanceStatus{State: domain.NotCheckedIn}
	}
	checkIn := latest.CheckInTime
	if latest.Open() {
		elapsed := now.Sub(checkIn)
		return domain.AttendanceStatus{
			State:       domain.CheckedIn,
			CheckInTime: &checkIn,
			Elapsed:     elapsed,
			Progress:    WorkdayProgress(elapsed, workday),
		}
	}
	// A closed session completes the day regardless of its length.
	out := *latest.CheckOutTime
	st := domain.AttendanceStatus{
		State:        domain.CheckedOut,
		CheckInTime:  &checkIn,
		CheckOutTime: &out,
		Elapsed:      out.Sub(checkIn),
		Progress:     1,
	}
	if latest.TotalHours != nil {
		h := *latest.TotalHours
		st.TotalHours = &h
	}
	return st
}
