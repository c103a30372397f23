package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/workstream/comms-api/internal/model"
)

// The employees table is owned by the HR system; this service only
// reads it for fan-out targets and email addresses.

func (r *employeeDirectory) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*model.Employee, error) {
	query := `SELECT id, company_id, email, department FROM employees WHERE company_id = $1`

	var employees []*model.Employee
	if err := r.db.SelectContext(ctx, &employees, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, nil
}

func (r *employeeDirectory) ListByDepartment(ctx context.Context, companyID uuid.UUID, department string) ([]*model.Employee, error) {
	query := `
		SELECT id, company_id, email, department
		FROM employees
		WHERE company_id = $1 AND department = $2
	`
	var employees []*model.Employee
	if err := r.db.SelectContext(ctx, &employees, query, companyID, department); err != nil {
		return nil, fmt.Errorf("failed to list employees by department: %w", err)
	}
	return employees, nil
}

func (r *employeeDirectory) Get(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `SELECT id, company_id, email, department FROM employees WHERE id = $1`

	var emp model.Employee
	err := r.db.GetContext(ctx, &emp, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &emp, nil
}
