package service

import (
	"context"
	"testing"
	"time"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
	"workforce-backend/internal/ports/portstest"
	"workforce-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLogs(t *testing.T, store *portstest.Activity) {
	t.Helper()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, entry := range []ports.NewActivityLog{
		{UserID: alice.ID, Action: "created", Description: "Clocked in from kiosk"},
		{UserID: alice.ID, Action: "updated", Description: "Changed bank details"},
		{UserID: bob.ID, Action: "created", Description: "Made some updates to the payroll"},
	} {
		entry.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := store.Create(context.Background(), entry)
		require.NoError(t, err)
	}
}

func TestActivityLogListScopesEmployees(t *testing.T) {
	store := portstest.NewActivity()
	seedLogs(t, store)
	svc := ActivityLogService{Store: store}

	own, err := svc.List(context.Background(), alice.ID, domain.RoleEmployee, domain.Page{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.Pagination.Total)
	for _, l := range own.Logs {
		assert.Equal(t, alice.ID, l.UserID)
	}

	all, err := svc.List(context.Background(), bob.ID, domain.RoleManager, domain.Page{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.Total)
	assert.Equal(t, "Made some updates to the payroll", all.Logs[0].Description, "newest first")
}

func TestActivityLogSearch(t *testing.T) {
	store := portstest.NewActivity()
	seedLogs(t, store)
	svc := ActivityLogService{Store: store}

	res, err := svc.List(context.Background(), bob.ID, domain.RoleAdmin, domain.Page{}, "  PAYROLL ")
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, bob.ID, res.Logs[0].UserID)
}

func TestActivityLogRecordDeleteClear(t *testing.T) {
	ctx := context.Background()
	store := portstest.NewActivity()
	svc := ActivityLogService{Store: store}

	_, err := svc.Record(ctx, ports.NewActivityLog{UserID: alice.ID, Action: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	l, err := svc.Record(ctx, ports.NewActivityLog{UserID: alice.ID, Action: "viewed", Description: "Opened payslip"})
	require.NoError(t, err)
	assert.NotNil(t, l.Details)

	require.NoError(t, svc.Delete(ctx, l.ID))
	assert.ErrorIs(t, svc.Delete(ctx, l.ID), repository.ErrNotFound)

	seedLogs(t, store)
	require.NoError(t, svc.Clear(ctx))
	assert.Empty(t, store.All())
}
