package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce-backend/internal/db"
	"workforce-backend/internal/domain"
	"workforce-backend/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type PaymentRepository struct {
	DB *db.Postgres
	// Location anchors year/month filters; UTC when nil.
	Location *time.Location
}

const paymentSelect = `
	SELECT p.id, p.employee_id, p.amount, p.net_amount, p.tax_deductions, p.other_deductions,
	       p.pay_period_start, p.pay_period_end, p.payment_date, p.payment_method, p.status,
	       p.transaction_id, p.reference, p.type, p.description, p.created_by_id, p.created_at,
	       e.employee_code, e.name, e.email, e.role
	FROM payment_records p
	JOIN employees e ON e.id = p.employee_id`

// CreateWithLog inserts the payment and its activity log in one transaction.
func (r PaymentRepository) CreateWithLog(ctx context.Context, in ports.NewPayment, logFor func(domain.PaymentRecord) ports.NewActivityLog) (*domain.PaymentRecord, error) {
	var out *domain.PaymentRecord
	err := r.DB.WithTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO payment_records
			(employee_id, amount, net_amount, tax_deductions, other_deductions, pay_period_start, pay_period_end,
			 payment_date, payment_method, status, transaction_id, reference, type, description, created_by_id, created_at)
			VALUES ($1,$2,$3,$4,$5,$6::date,$7::date,$8,$9,$10,$11,$12,$13,$14,$15,$16)
			RETURNING id
		`, in.EmployeeID, in.Amount, in.NetAmount, in.TaxDeductions, in.OtherDeductions, in.PayPeriodStart, in.PayPeriodEnd,
			in.PaymentDate, string(in.PaymentMethod), string(in.Status), in.TransactionID, in.Reference, in.Type, in.Description,
			in.CreatedByID, in.CreatedAt).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		rec, err := scanPayment(tx.QueryRow(ctx, paymentSelect+` WHERE p.id=$1`, id))
		if err != nil {
			return fmt.Errorf("reload payment: %w", err)
		}
		if logFor != nil {
			if _, err := insertActivityLog(ctx, tx, logFor(*rec)); err != nil {
				return fmt.Errorf("insert activity log: %w", err)
			}
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r PaymentRepository) Get(ctx context.Context, id int64) (*domain.PaymentRecord, error) {
	rec, err := scanPayment(r.DB.Pool.QueryRow(ctx, paymentSelect+` WHERE p.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r PaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentRecord, int64, error) {
	where, args := paymentWhere(filter, r.location())
	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM payment_records p `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	page := filter.Page.Normalize()
	args = append(args, page.Limit, page.Offset())
	rows, err := r.DB.Pool.Query(ctx, paymentSelect+" "+where+fmt.Sprintf(`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectPayments(rows)
	return items, total, err
}

func (r PaymentRepository) ListAll(ctx context.Context, filter domain.PaymentFilter) ([]domain.PaymentRecord, error) {
	where, args := paymentWhere(filter, r.location())
	rows, err := r.DB.Pool.Query(ctx, paymentSelect+" "+where+` ORDER BY p.created_at DESC, p.id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r PaymentRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]domain.PaymentRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, paymentSelect+`
		WHERE p.employee_id=$1
		ORDER BY p.created_at DESC, p.id DESC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r PaymentRepository) ListForPeriod(ctx context.Context, period domain.TimeRange) ([]domain.PaymentRecord, error) {
	rows, err := r.DB.Pool.Query(ctx, paymentSelect+`
		WHERE p.pay_period_start >= $1::date AND p.pay_period_start < $2::date
		ORDER BY p.payment_date DESC, p.id DESC
	`, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r PaymentRepository) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// paymentWhere renders the filter into a WHERE clause over alias p (payment_records).
func paymentWhere(f domain.PaymentFilter, loc *time.Location) (string, []any) {
	args := []any{f.EmployeeID}
	conds := []string{"p.employee_id = $1"}
	if rng := f.CreatedRange(loc); rng != nil {
		args = append(args, rng.Start, rng.End)
		conds = append(conds, fmt.Sprintf("p.created_at >= $%d AND p.created_at < $%d", len(args)-1, len(args)))
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		args = append(args, containsPattern(q))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.reference ILIKE $%d OR p.type ILIKE $%d)", n, n))
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func collectPayments(rows pgx.Rows) ([]domain.PaymentRecord, error) {
	var items []domain.PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rec)
	}
	return items, rows.Err()
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var (
		p      domain.PaymentRecord
		emp    domain.EmployeeSummary
		method string
		status string
		role   string
		txnID  pgtype.Text
	)
	if err := row.Scan(
		&p.ID, &p.EmployeeID, &p.Amount, &p.NetAmount, &p.TaxDeductions, &p.OtherDeductions,
		&p.PayPeriodStart, &p.PayPeriodEnd, &p.PaymentDate, &method, &status,
		&txnID, &p.Reference, &p.Type, &p.Description, &p.CreatedByID, &p.CreatedAt,
		&emp.EmployeeCode, &emp.Name, &emp.Email, &role,
	); err != nil {
		return nil, err
	}
	p.PaymentMethod = domain.PaymentMethod(method)
	p.Status = domain.PaymentStatus(status)
	if txnID.Valid {
		p.TransactionID = &txnID.String
	}
	emp.ID = p.EmployeeID
	emp.Role = domain.UserRole(role)
	p.Employee = &emp
	return &p, nil
}
