package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/model"
)

func (r *sessionRepository) Create(ctx context.Context, session *model.AttendanceSession) error {
	query := `
		INSERT INTO attendance_sessions (id, visit_id, operator_id, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.VisitID,
		session.OperatorID,
		session.StartedAt,
		session.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attendance session: %w", err)
	}
	return nil
}

// CloseOpen relies on the ended_at IS NULL guard so concurrent or
// retried closes touch at most one row, exactly once.
func (r *sessionRepository) CloseOpen(ctx context.Context, visitID uuid.UUID, endedAt time.Time) (*model.AttendanceSession, error) {
	query := `
		UPDATE attendance_sessions
		SET ended_at = $1
		WHERE visit_id = $2 AND ended_at IS NULL
		RETURNING id, visit_id, operator_id, started_at, ended_at
	`
	var session model.AttendanceSession
	err := r.db.GetContext(ctx, &session, query, endedAt, visitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close attendance session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) GetOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.AttendanceSession, error) {
	query := `
		SELECT id, visit_id, operator_id, started_at, ended_at
		FROM attendance_sessions
		WHERE operator_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`
	var session model.AttendanceSession
	err := r.db.GetContext(ctx, &session, query, operatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) GetOpenByVisit(ctx context.Context, visitID uuid.UUID) (*model.AttendanceSession, error) {
	query := `
		SELECT id, visit_id, operator_id, started_at, ended_at
		FROM attendance_sessions
		WHERE visit_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`
	var session model.AttendanceSession
	err := r.db.GetContext(ctx, &session, query, visitID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*model.AttendanceSession, error) {
	query := `
		SELECT id, visit_id, operator_id, started_at, ended_at
		FROM attendance_sessions
		WHERE visit_id = $1
		ORDER BY started_at ASC
	`
	var sessions []*model.AttendanceSession
	err := r.db.SelectContext(ctx, &sessions, query, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
