package model

import "github.com/google/uuid"

// Employee is the slice of the HR employee record this service reads
// for fan-out and email delivery. The table is owned by the HR system.
type Employee struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CompanyID  uuid.UUID `db:"company_id" json:"company_id"`
	Email      string    `db:"email" json:"email"`
	Department *string   `db:"department" json:"department,omitempty"`
}
