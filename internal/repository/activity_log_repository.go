package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"workforce-backend/internal/db"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
)

type ActivityLogRepository struct {
	DB *db.Postgres
}

func (r ActivityLogRepository) Create(ctx context.Context, in ports.NewActivityLog) (*domain.ActivityLog, error) {
	return insertActivityLog(ctx, r.DB.Pool, in)
}

func insertActivityLog(ctx context.Context, q queryRower, in ports.NewActivityLog) (*domain.ActivityLog, error) {
	details := in.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	l := domain.ActivityLog{
		UserID:      in.UserID,
		Action:      in.Action,
		Description: in.Description,
		Details:     details,
	}
	err = q.QueryRow(ctx, `
		INSERT INTO activity_logs (user_id, action, description, details, created_at)
		VALUES ($1,$2,$3,$4::jsonb, COALESCE($5, now()))
		RETURNING id, created_at
	`, in.UserID, in.Action, in.Description, string(raw), nullableTime(in.CreatedAt)).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r ActivityLogRepository) List(ctx context.Context, filter domain.ActivityLogFilter) ([]domain.ActivityLog, int64, error) {
	where, args := activityWhere(filter)
	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM activity_logs l JOIN employees u ON u.id = l.user_id `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset())
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT l.id, l.user_id, l.action, l.description, l.details, l.created_at,
		       u.employee_code, u.name, u.email, u.role
		FROM activity_logs l
		JOIN employees u ON u.id = l.user_id `+where+fmt.Sprintf(`
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.ActivityLog
	for rows.Next() {
		var (
			l    domain.ActivityLog
			u    domain.EmployeeSummary
			raw  []byte
			role string
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Description, &raw, &l.CreatedAt,
			&u.EmployeeCode, &u.Name, &u.Email, &role); err != nil {
			return nil, 0, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &l.Details); err != nil {
				return nil, 0, fmt.Errorf("decode details of log %d: %w", l.ID, err)
			}
		}
		u.ID = l.UserID
		u.Role = domain.UserRole(role)
		l.User = &u
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r ActivityLogRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM activity_logs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r ActivityLogRepository) Clear(ctx context.Context) error {
	_, err := r.DB.Pool.Exec(ctx, `DELETE FROM activity_logs`)
	return err
}

// activityWhere renders the filter over aliases l (activity_logs) and u (employees).
func activityWhere(f domain.ActivityLogFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, containsPattern(q))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(l.action ILIKE $%d OR l.description ILIKE $%d OR u.name ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
