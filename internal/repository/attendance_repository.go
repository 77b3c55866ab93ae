package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce-backend/internal/db"
	"workforce-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type AttendanceRepository struct {
	DB *db.Postgres
}

const attendanceSelect = `
	SELECT a.id, a.employee_id, a.attendance_date, a.check_in, a.check_out, a.total_hours, a.created_at,
	       e.employee_code, e.name, e.email, e.role
	FROM attendance a
	JOIN employees e ON e.id = a.employee_id`

func (r AttendanceRepository) FindOpen(ctx context.Context, employeeID int64, day domain.TimeRange) (*domain.AttendanceRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, attendanceSelect+`
		WHERE a.employee_id=$1 AND a.attendance_date >= $2::date AND a.attendance_date < $3::date
		  AND a.check_out IS NULL
		ORDER BY a.check_in DESC
		LIMIT 1
	`, employeeID, day.Start, day.End)
	return optionalAttendance(row)
}

func (r AttendanceRepository) FindLatest(ctx context.Context, employeeID int64, day domain.TimeRange) (*domain.AttendanceRecord, error) {
	row := r.DB.Pool.QueryRow(ctx, attendanceSelect+`
		WHERE a.employee_id=$1 AND a.attendance_date >= $2::date AND a.attendance_date < $3::date
		ORDER BY a.check_in DESC
		LIMIT 1
	`, employeeID, day.Start, day.End)
	return optionalAttendance(row)
}

// Create inserts an open record. A second open record for the same day violates
// attendance_open_session_uniq and surfaces as a unique violation.
func (r AttendanceRepository) Create(ctx context.Context, employeeID int64, date, checkIn time.Time) (*domain.AttendanceRecord, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO attendance (employee_id, attendance_date, check_in, created_at)
		VALUES ($1, $2::date, $3, now())
		RETURNING id
	`, employeeID, date, checkIn).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, id)
}

// Close is a compare-and-set on check_out IS NULL.
func (r AttendanceRepository) Close(ctx context.Context, id int64, checkOut time.Time, totalHours float64) (*domain.AttendanceRecord, error) {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE attendance SET check_out=$2, total_hours=$3
		WHERE id=$1 AND check_out IS NULL
	`, id, checkOut, totalHours)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.get(ctx, id)
}

func (r AttendanceRepository) List(ctx context.Context, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, int64, error) {
	where, args := attendanceWhere(filter)
	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM attendance a JOIN employees e ON e.id = a.employee_id `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset())
	rows, err := r.DB.Pool.Query(ctx, attendanceSelect+" "+where+fmt.Sprintf(`
		ORDER BY a.attendance_date DESC, a.check_in DESC, a.id DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAttendance(rows)
	return items, total, err
}

func (r AttendanceRepository) ListRange(ctx context.Context, rng domain.TimeRange, employeeID *int64) ([]domain.AttendanceRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, attendanceSelect+`
		WHERE a.attendance_date >= $1::date AND a.attendance_date < $2::date
		  AND ($3::bigint IS NULL OR a.employee_id = $3)
		ORDER BY a.attendance_date ASC, a.check_in ASC
	`, rng.Start, rng.End, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttendance(rows)
}

func (r AttendanceRepository) get(ctx context.Context, id int64) (*domain.AttendanceRecord, error) {
	rec, err := scanAttendance(r.DB.Pool.QueryRow(ctx, attendanceSelect+` WHERE a.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// attendanceWhere renders the filter into a WHERE clause over aliases a (attendance) and e (employees).
func attendanceWhere(f domain.AttendanceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Date != nil {
		args = append(args, domain.StartOfDay(*f.Date))
		conds = append(conds, fmt.Sprintf("a.attendance_date = $%d::date", len(args)))
	}
	if f.EmployeeID != nil {
		args = append(args, *f.EmployeeID)
		conds = append(conds, fmt.Sprintf("a.employee_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, containsPattern(q))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(e.name ILIKE $%d OR e.email ILIKE $%d OR e.employee_code ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func optionalAttendance(row pgx.Row) (*domain.AttendanceRecord, error) {
	rec, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func collectAttendance(rows pgx.Rows) ([]domain.AttendanceRecord, error) {
	var items []domain.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func scanAttendance(row rowScanner) (*domain.AttendanceRecord, error) {
	var (
		a        domain.AttendanceRecord
		emp      domain.EmployeeSummary
		role     string
		checkOut pgtype.Timestamptz
		hours    pgtype.Float8
	)
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.Date, &a.CheckInTime, &checkOut, &hours, &a.CreatedAt,
		&emp.EmployeeCode, &emp.Name, &emp.Email, &role); err != nil {
		return nil, err
	}
	if checkOut.Valid {
		a.CheckOutTime = &checkOut.Time
	}
	if hours.Valid {
		a.TotalHours = &hours.Float64
	}
	emp.ID = a.EmployeeID
	emp.Role = domain.UserRole(role)
	a.Employee = &emp
	return &a, nil
}
