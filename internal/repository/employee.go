package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/cafeteria-ledger/internal/domain"
)

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, role_tier, active, pin_hash, created_at FROM employees WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.RoleTier, &e.Active, &e.PinHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrEmployeeNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO employees (name, role_tier, active, pin_hash) VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Name, e.RoleTier, e.Active, e.PinHash,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
