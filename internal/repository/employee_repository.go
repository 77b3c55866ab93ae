package repository

import (
	"context"
	"errors"

	"workforce-backend/internal/db"
	"workforce-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

const employeeSelect = `
	SELECT id, employee_code, name, email, role, position, employment_status, base_salary, created_at, updated_at
	FROM employees`

func (r EmployeeRepository) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := scanEmployee(r.DB.Pool.QueryRow(ctx, employeeSelect+`
		WHERE id=$1 AND deleted_at IS NULL
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r EmployeeRepository) ListPayable(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.DB.Pool.Query(ctx, employeeSelect+`
		WHERE deleted_at IS NULL AND role=$1 AND employment_status = ANY($2)
		ORDER BY name, id
	`, string(domain.RoleEmployee), []string{string(domain.EmploymentActive), string(domain.EmploymentProbation)})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e      domain.Employee
		role   string
		status string
		salary decimal.NullDecimal
	)
	if err := row.Scan(&e.ID, &e.EmployeeCode, &e.Name, &e.Email, &role, &e.Position, &status, &salary, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Role = domain.UserRole(role)
	e.EmploymentStatus = domain.EmploymentStatus(status)
	if salary.Valid {
		e.BaseSalary = &salary.Decimal
	}
	return &e, nil
}
