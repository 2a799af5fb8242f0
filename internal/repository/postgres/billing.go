package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/model"
)

func (r *billingRepository) Create(ctx context.Context, record *model.BillingRecord) error {
	query := `
		INSERT INTO billing_records (id, operator_id, session_id, amount_cents, settlement_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.OperatorID,
		record.SessionID,
		record.Amount,
		record.SettlementDate,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create billing record: %w", err)
	}
	return nil
}

func (r *billingRepository) ListByOperator(ctx context.Context, operatorID uuid.UUID, from, to time.Time) ([]*model.BillingRecord, error) {
	query := `
		SELECT id, operator_id, session_id, amount_cents, settlement_date, created_at
		FROM billing_records
		WHERE operator_id = $1
		AND created_at >= $2
		AND created_at < $3
		ORDER BY created_at ASC
	`
	var records []*model.BillingRecord
	err := r.db.SelectContext(ctx, &records, query, operatorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing records: %w", err)
	}
	return records, nil
}
