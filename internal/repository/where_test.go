package repository

import (
	"fmt"
	"testing"
	"time"

	"workforce-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestAttendanceWhere(t *testing.T) {
	where, args := attendanceWhere(domain.AttendanceFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	date := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)
	emp := int64(7)
	where, args = attendanceWhere(domain.AttendanceFilter{Date: &date, EmployeeID: &emp, Search: " ali_ce "})
	assert.Equal(t, "WHERE a.attendance_date = $1::date AND a.employee_id = $2 AND "+
		"(e.name ILIKE $3 OR e.email ILIKE $3 OR e.employee_code ILIKE $3)", where)
	assert.Equal(t, []any{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), int64(7), `%ali\_ce%`}, args)
}

func TestPaymentWhere(t *testing.T) {
	where, args := paymentWhere(domain.PaymentFilter{EmployeeID: 3}, time.UTC)
	assert.Equal(t, "WHERE p.employee_id = $1", where)
	assert.Equal(t, []any{int64(3)}, args)

	year, month := 2024, time.February
	where, args = paymentWhere(domain.PaymentFilter{EmployeeID: 3, Year: &year, Month: &month, Search: "100%"}, time.UTC)
	assert.Equal(t, "WHERE p.employee_id = $1 AND p.created_at >= $2 AND p.created_at < $3 AND "+
		"(p.reference ILIKE $4 OR p.type ILIKE $4)", where)
	assert.Equal(t, []any{
		int64(3),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		`%100\%%`,
	}, args)
}

func TestActivityWhere(t *testing.T) {
	where, args := activityWhere(domain.ActivityLogFilter{})
	assert.Empty(t, where)
	assert.Nil(t, args)

	uid := int64(5)
	where, args = activityWhere(domain.ActivityLogFilter{UserID: &uid, Search: "payroll"})
	assert.Equal(t, "WHERE l.user_id = $1 AND (l.action ILIKE $2 OR l.description ILIKE $2 OR u.name ILIKE $2)", where)
	assert.Equal(t, []any{int64(5), "%payroll%"}, args)
}

func TestContainsPatternEscapes(t *testing.T) {
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
	assert.Equal(t, `%50\%\_off%`, containsPattern("50%_off"))
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, IsDuplicate(nil))
	assert.False(t, IsDuplicate(ErrNotFound))
	assert.True(t, IsDuplicate(fmt.Errorf("create attendance: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsDuplicate(&pgconn.PgError{Code: "23503"}))
}
