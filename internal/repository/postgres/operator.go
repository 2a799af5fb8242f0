package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/model"
)

func (r *operatorRepository) Create(ctx context.Context, operator *model.Operator) error {
	query := `
		INSERT INTO operators (id, name, email, password_hash, access_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if operator.ID == uuid.Nil {
		operator.ID = uuid.New()
	}
	operator.CreatedAt = time.Now()
	operator.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		operator.ID,
		operator.Name,
		operator.Email,
		operator.PasswordHash,
		operator.AccessLevel,
		operator.CreatedAt,
		operator.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *operatorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Operator, error) {
	query := `
		SELECT id, name, email, password_hash, access_level, created_at, updated_at
		FROM operators
		WHERE id = $1
	`
	var operator model.Operator
	err := r.db.GetContext(ctx, &operator, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	return &operator, nil
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*model.Operator, error) {
	query := `
		SELECT id, name, email, password_hash, access_level, created_at, updated_at
		FROM operators
		WHERE email = $1
	`
	var operator model.Operator
	err := r.db.GetContext(ctx, &operator, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator by email: %w", err)
	}
	return &operator, nil
}
