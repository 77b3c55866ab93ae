package service

import (
	"context"
	"fmt"
	"strings"

	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
)

// ActivityLogService exposes the audit trail.
type ActivityLogService struct {
	Store ports.ActivityStore
}

// List returns a page of logs. Viewers outside management only see their own entries.
func (s ActivityLogService) List(ctx context.Context, viewerID int64, viewerRole domain.UserRole, page domain.Page, search string) (domain.ActivityLogPage, error) {
	filter := domain.ActivityLogFilter{
		Search: strings.TrimSpace(search),
		Page:   page.Normalize(),
	}
	if !viewerRole.IsManagement() {
		filter.UserID = &viewerID
	}
	logs, total, err := s.Store.List(ctx, filter)
	if err != nil {
		return domain.ActivityLogPage{}, fmt.Errorf("list activity logs: %w", err)
	}
	return domain.ActivityLogPage{Logs: logs, Pagination: domain.NewPagination(total, filter.Page)}, nil
}

func (s ActivityLogService) Record(ctx context.Context, in ports.NewActivityLog) (*domain.ActivityLog, error) {
	if strings.TrimSpace(in.Action) == "" {
		return nil, fmt.Errorf("%w: action is required", ErrInvalidInput)
	}
	return s.Store.Create(ctx, in)
}

func (s ActivityLogService) Delete(ctx context.Context, id int64) error {
	return s.Store.Delete(ctx, id)
}

func (s ActivityLogService) Clear(ctx context.Context) error {
	return s.Store.Clear(ctx)
}
