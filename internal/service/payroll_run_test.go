package service

import (
	"context"
	"testing"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports/portstest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salaried(id int64, name string, status domain.EmploymentStatus, salary string) domain.Employee {
	e := domain.Employee{ID: id, EmployeeCode: "EMP-1" + name[:2], Name: name, Role: domain.RoleEmployee, EmploymentStatus: status}
	if salary != "" {
		s := amt(salary)
		e.BaseSalary = &s
	}
	return e
}

var (
	carla  = salaried(10, "Carla Mendes", domain.EmploymentActive, "3000.00")
	dawit  = salaried(11, "Dawit Bekele", domain.EmploymentProbation, "2500.755")
	esther = salaried(12, "Esther Njeri", domain.EmploymentTerminated, "4000")
	farid  = salaried(13, "Farid Karimi", domain.EmploymentActive, "")
)

func newRunService() (PayrollService, *portstest.Payments, *portstest.Activity) {
	employees := portstest.NewEmployees(bob, carla, dawit, esther, farid)
	logs := portstest.NewActivity()
	store := portstest.NewPayments(employees, logs)
	return PayrollService{Store: store, Employees: employees}, store, logs
}

func TestProcessPayroll(t *testing.T) {
	ctx := context.Background()
	svc, store, logs := newRunService()
	now := time.Date(2024, 2, 20, 15, 0, 0, 0, time.UTC)

	res, err := svc.ProcessPayroll(ctx, bob.ID, []int64{carla.ID, dawit.ID, esther.ID, farid.ID, 99, carla.ID}, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), res.Period.Start)
	require.Len(t, res.Created, 2)
	first := res.Created[0]
	assert.Equal(t, carla.ID, first.EmployeeID)
	assert.True(t, first.Amount.Equal(amt("3000")))
	assert.True(t, first.NetAmount.Equal(first.Amount))
	assert.True(t, first.TaxDeductions.IsZero())
	assert.True(t, first.OtherDeductions.IsZero())
	assert.Equal(t, domain.PaymentPending, first.Status)
	assert.Equal(t, domain.MethodBankTransfer, first.PaymentMethod)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), first.PayPeriodEnd)
	assert.Equal(t, "Salary payment for February 2024", first.Description)
	assert.Equal(t, bob.ID, first.CreatedByID)

	assert.Equal(t, "2500.76", res.Created[1].Amount.String())

	assert.Equal(t, []PayrollRunSkip{
		{EmployeeID: esther.ID, Reason: SkipNotPayable},
		{EmployeeID: farid.ID, Reason: SkipNoSalary},
		{EmployeeID: 99, Reason: SkipNotFound},
	}, res.Skipped)

	assert.Equal(t, 2, store.Len())
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "processed", entries[0].Action)
	assert.Equal(t, carla.ID, entries[0].Details["employeeId"])
}

func TestProcessPayrollSkipsPaidEmployees(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRunService()
	march := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	store.Seed(domain.PaymentRecord{
		EmployeeID:     carla.ID,
		Amount:         amt("3100"),
		NetAmount:      amt("2900"),
		PayPeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PayPeriodEnd:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:         domain.PaymentCompleted,
		CreatedAt:      march,
	})
	// Last month's payment does not count against this month's run.
	store.Seed(domain.PaymentRecord{
		EmployeeID:     dawit.ID,
		Amount:         amt("2500"),
		PayPeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:      march.AddDate(0, -1, 0),
	})

	res, err := svc.ProcessPayroll(ctx, bob.ID, []int64{carla.ID, dawit.ID}, march)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Equal(t, dawit.ID, res.Created[0].EmployeeID)
	assert.Equal(t, []PayrollRunSkip{{EmployeeID: carla.ID, Reason: SkipAlreadyPaid}}, res.Skipped)

	again, err := svc.ProcessPayroll(ctx, bob.ID, []int64{carla.ID, dawit.ID}, march.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Skipped, 2)
	assert.Equal(t, 3, store.Len())
}

func TestProcessPayrollValidation(t *testing.T) {
	svc, store, _ := newRunService()
	now := time.Now()
	tooMany := make([]int64, maxPayrollRun+1)
	for i := range tooMany {
		tooMany[i] = int64(i + 1)
	}
	for name, ids := range map[string][]int64{
		"empty":    nil,
		"negative": {carla.ID, -1},
		"too many": tooMany,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ProcessPayroll(context.Background(), bob.ID, ids, now)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestPayrollOverview(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newRunService()
	svc.Workday = 7 * time.Hour
	now := time.Date(2024, 3, 18, 12, 0, 0, 0, time.UTC)

	store.Seed(
		domain.PaymentRecord{
			EmployeeID:     carla.ID,
			Amount:         amt("3450"),
			Status:         domain.PaymentCompleted,
			PayPeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			PaymentDate:    time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		domain.PaymentRecord{
			EmployeeID:     carla.ID,
			Amount:         amt("3000"),
			Status:         domain.PaymentPending,
			PayPeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			PaymentDate:    time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		domain.PaymentRecord{
			EmployeeID:     dawit.ID,
			Amount:         amt("9999"),
			Status:         domain.PaymentCompleted,
			PayPeriodStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			PaymentDate:    time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	)

	ov, err := svc.Overview(ctx, now)
	require.NoError(t, err)

	// esther is terminated and bob is a manager; farid has no salary but is still on staff.
	require.Len(t, ov.Rows, 3)
	assert.Equal(t, []string{"Carla Mendes", "Dawit Bekele", "Farid Karimi"},
		[]string{ov.Rows[0].Employee.Name, ov.Rows[1].Employee.Name, ov.Rows[2].Employee.Name})
	assert.Equal(t, 3, ov.TotalEmployees)
	assert.InDelta(t, 3*22*7, ov.TotalWorkingHours, 1e-9)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), ov.NextPayrollDate)

	carlaRow := ov.Rows[0]
	require.NotNil(t, carlaRow.Payment)
	assert.Equal(t, domain.PaymentCompleted, carlaRow.Payment.Status)
	assert.Equal(t, "450", carlaRow.Additions.String())
	assert.Equal(t, "3450", carlaRow.Total.String())

	dawitRow := ov.Rows[1]
	assert.Nil(t, dawitRow.Payment)
	assert.True(t, dawitRow.Additions.IsZero())

	assert.True(t, ov.Rows[2].Total.IsZero())
	assert.Equal(t, decimal.RequireFromString("2500.755").String(), ov.TotalUnpaid.String())
}
