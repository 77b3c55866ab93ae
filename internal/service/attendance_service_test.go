package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports/portstest"
	"workforce-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Employee{ID: 1, EmployeeCode: "EMP-001", Name: "Alice Moreau", Email: "alice@example.com", Role: domain.RoleEmployee}
	bob   = domain.Employee{ID: 2, EmployeeCode: "EMP-002", Name: "Bob Otieno", Email: "bob@example.com", Role: domain.RoleManager}
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, 0, 0, time.UTC)
}

func newAttendanceService() (AttendanceService, *portstest.Attendance) {
	employees := portstest.NewEmployees(alice, bob)
	store := portstest.NewAttendance(employees)
	return AttendanceService{Store: store, Employees: employees}, store
}

func TestClockInThenOut(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()

	in, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	assert.True(t, in.Open())
	assert.Nil(t, in.TotalHours)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), in.Date)

	out, err := svc.ClockOut(ctx, alice.ID, at(17, 30))
	require.NoError(t, err)
	assert.Equal(t, in.ID, out.ID)
	require.NotNil(t, out.TotalHours)
	assert.InDelta(t, 8.5, *out.TotalHours, 1e-9)
	require.NotNil(t, out.CheckOutTime)
	assert.Equal(t, at(17, 30), *out.CheckOutTime)
}

func TestClockOutImmediately(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()

	now := at(10, 0)
	_, err := svc.ClockIn(ctx, alice.ID, now)
	require.NoError(t, err)
	out, err := svc.ClockOut(ctx, alice.ID, now.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.InDelta(t, 0, *out.TotalHours, 0.001)
}

func TestClockInTwiceRejected(t *testing.T) {
	ctx := context.Background()
	svc, store := newAttendanceService()

	_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, alice.ID, at(9, 5))
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
	assert.Len(t, store.All(), 1)
}

func TestClockOutWithoutClockIn(t *testing.T) {
	svc, _ := newAttendanceService()
	_, err := svc.ClockOut(context.Background(), alice.ID, at(17, 0))
	assert.ErrorIs(t, err, ErrNoActiveClockIn)
}

func TestClockOutTwiceRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()

	_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, alice.ID, at(12, 0))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, alice.ID, at(13, 0))
	assert.ErrorIs(t, err, ErrNoActiveClockIn)
}

func TestSecondSessionAfterClockOut(t *testing.T) {
	ctx := context.Background()
	svc, store := newAttendanceService()

	_, err := svc.ClockIn(ctx, alice.ID, at(8, 0))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, alice.ID, at(12, 0))
	require.NoError(t, err)

	second, err := svc.ClockIn(ctx, alice.ID, at(13, 0))
	require.NoError(t, err)
	st, err := svc.CurrentStatus(ctx, alice.ID, at(14, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.CheckedIn, st.State)
	assert.Equal(t, second.CheckInTime, *st.CheckInTime)
	assert.Len(t, store.All(), 2)
}

func TestClockInUnknownEmployee(t *testing.T) {
	svc, _ := newAttendanceService()
	_, err := svc.ClockIn(context.Background(), 99, at(9, 0))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClockInNextDayIsIndependent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()

	_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	// yesterday's session is still open but today starts fresh
	_, err = svc.ClockIn(ctx, alice.ID, at(9, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, alice.ID, at(10, 0).AddDate(0, 0, 2))
	assert.ErrorIs(t, err, ErrNoActiveClockIn)
}

func TestConcurrentClockInCreatesOneRecord(t *testing.T) {
	ctx := context.Background()
	svc, store := newAttendanceService()

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrAlreadyClockedIn):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, rejected)
	assert.Len(t, store.All(), 1)
}

type racingStore struct {
	*portstest.Attendance
}

// FindOpen always misses, as if a concurrent request had not committed yet.
func (racingStore) FindOpen(context.Context, int64, domain.TimeRange) (*domain.AttendanceRecord, error) {
	return nil, nil
}

func TestClockInDuplicateFromStoreMapsToAlreadyClockedIn(t *testing.T) {
	ctx := context.Background()
	employees := portstest.NewEmployees(alice)
	store := racingStore{portstest.NewAttendance(employees)}
	svc := AttendanceService{Store: store, Employees: employees}

	_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, alice.ID, at(9, 1))
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestCurrentStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()

	st, err := svc.CurrentStatus(ctx, alice.ID, at(8, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.NotCheckedIn, st.State)
	assert.Nil(t, st.CheckInTime)

	_, err = svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)

	st, err = svc.CurrentStatus(ctx, alice.ID, at(13, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.CheckedIn, st.State)
	assert.Equal(t, 4*time.Hour, st.Elapsed)
	assert.InDelta(t, 0.5, st.Progress, 1e-9)
	assert.Nil(t, st.TotalHours)

	_, err = svc.ClockOut(ctx, alice.ID, at(18, 0))
	require.NoError(t, err)

	first, err := svc.CurrentStatus(ctx, alice.ID, at(20, 0))
	require.NoError(t, err)
	second, err := svc.CurrentStatus(ctx, alice.ID, at(20, 0))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.CheckedOut, first.State)
	require.NotNil(t, first.TotalHours)
	assert.InDelta(t, 9, *first.TotalHours, 1e-9)
	assert.Equal(t, 1.0, first.Progress)
}

func TestCurrentStatusCustomWorkday(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()
	svc.Workday = 4 * time.Hour

	_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	st, err := svc.CurrentStatus(ctx, alice.ID, at(10, 0))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, st.Progress, 1e-9)
}

func TestCurrentStatusShortSessionIsComplete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAttendanceService()

	_, err := svc.ClockIn(ctx, alice.ID, at(9, 0))
	require.NoError(t, err)
	_, err = svc.ClockOut(ctx, alice.ID, at(10, 0))
	require.NoError(t, err)

	st, err := svc.CurrentStatus(ctx, alice.ID, at(11, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.CheckedOut, st.State)
	assert.Equal(t, time.Hour, st.Elapsed)
	require.NotNil(t, st.TotalHours)
	assert.InDelta(t, 1, *st.TotalHours, 1e-9)
	assert.Equal(t, 1.0, st.Progress)
}

func TestHistoryPaginates(t *testing.T) {
	ctx := context.Background()
	svc, store := newAttendanceService()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		d := day.AddDate(0, 0, i)
		store.Seed(domain.AttendanceRecord{EmployeeID: alice.ID, Date: d, CheckInTime: d.Add(9 * time.Hour)})
	}
	store.Seed(domain.AttendanceRecord{EmployeeID: bob.ID, Date: day, CheckInTime: day.Add(8 * time.Hour)})

	self := alice.ID
	seen := map[int64]bool{}
	for page := 1; page <= 3; page++ {
		res, err := svc.History(ctx, domain.AttendanceFilter{EmployeeID: &self, Page: domain.Page{Page: page, Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, domain.Pagination{Total: 25, Pages: 3, Current: page, Limit: 10}, res.Pagination)
		for _, r := range res.Records {
			assert.Equal(t, alice.ID, r.EmployeeID)
			assert.False(t, seen[r.ID], "record %d repeated", r.ID)
			seen[r.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	res, err := svc.History(ctx, domain.AttendanceFilter{EmployeeID: &self})
	require.NoError(t, err)
	require.NotEmpty(t, res.Records)
	assert.Equal(t, day.AddDate(0, 0, 24), res.Records[0].Date, "newest first")
}

func TestHistoryFilters(t *testing.T) {
	ctx := context.Background()
	svc, store := newAttendanceService()
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	store.Seed(
		domain.AttendanceRecord{EmployeeID: alice.ID, Date: d, CheckInTime: d.Add(9 * time.Hour)},
		domain.AttendanceRecord{EmployeeID: bob.ID, Date: d, CheckInTime: d.Add(9 * time.Hour)},
		domain.AttendanceRecord{EmployeeID: bob.ID, Date: d.AddDate(0, 0, 1), CheckInTime: d.Add(33 * time.Hour)},
	)

	res, err := svc.History(ctx, domain.AttendanceFilter{Date: &d})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)

	res, err = svc.History(ctx, domain.AttendanceFilter{Search: "otieno"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)
	for _, r := range res.Records {
		require.NotNil(t, r.Employee)
		assert.Equal(t, bob.Name, r.Employee.Name)
	}
}

func TestMonthly(t *testing.T) {
	ctx := context.Background()
	svc, store := newAttendanceService()
	store.Seed(
		domain.AttendanceRecord{EmployeeID: alice.ID, Date: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), CheckInTime: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)},
		domain.AttendanceRecord{EmployeeID: alice.ID, Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), CheckInTime: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)},
		domain.AttendanceRecord{EmployeeID: alice.ID, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), CheckInTime: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
		domain.AttendanceRecord{EmployeeID: bob.ID, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), CheckInTime: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
	)

	self := alice.ID
	recs, err := svc.Monthly(ctx, 2024, time.March, time.UTC, &self)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Date.Day())
	assert.Equal(t, 20, recs[1].Date.Day())

	all, err := svc.Monthly(ctx, 2024, time.March, time.UTC, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.Monthly(ctx, 2024, time.Month(13), time.UTC, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHoursBetween(t *testing.T) {
	assert.InDelta(t, 8.5, HoursBetween(at(9, 0), at(17, 30)), 1e-12)
	assert.Equal(t, 0.0, HoursBetween(at(9, 0), at(9, 0)))
	assert.InDelta(t, 1.0/3600, HoursBetween(at(9, 0), at(9, 0).Add(time.Second)), 1e-12)
}

func TestWorkdayProgress(t *testing.T) {
	assert.Equal(t, 0.0, WorkdayProgress(-time.Minute, 8*time.Hour))
	assert.Equal(t, 0.0, WorkdayProgress(time.Hour, 0))
	assert.InDelta(t, 0.125, WorkdayProgress(time.Hour, 8*time.Hour), 1e-12)
	assert.Equal(t, 1.0, WorkdayProgress(12*time.Hour, 8*time.Hour))
}
