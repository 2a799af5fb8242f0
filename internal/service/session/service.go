package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/repository"
	"github.com/ocupmed/queue-api/pkg/metrics"
)

// Service is the attendance session ledger: timestamped open/close
// records tied to (visit, operator), never deleted, with the billing
// side effect on close.
type Service struct {
	sessions repository.SessionRepository
	billing  repository.BillingRepository
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewService(sessions repository.SessionRepository, billing repository.BillingRepository, logger zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		sessions: sessions,
		billing:  billing,
		logger:   logger,
		metrics:  m,
	}
}

// Open inserts a new session row unconditionally. Duplicate-open
// protection lives in the state machine's single-active-room invariant,
// not here.
func (s *Service) Open(ctx context.Context, visitID, operatorID uuid.UUID, now time.Time) (*model.AttendanceSession, error) {
	session := &model.AttendanceSession{
		ID:         uuid.New(),
		VisitID:    visitID,
		OperatorID: operatorID,
		StartedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open attendance session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SessionsOpened.Inc()
	}
	return session, nil
}

// Close closes the open session for the visit, if one exists, and
// writes the placeholder billing record for the closing operator. The
// underlying update is guarded on ended_at IS NULL, so a duplicate
// close is a no-op and produces no second billing record.
func (s *Service) Close(ctx context.Context, visitID, operatorID uuid.UUID, now time.Time) (*model.AttendanceSession, error) {
	closed, err := s.sessions.CloseOpen(ctx, visitID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to close attendance session: %w", err)
	}
	if closed == nil {
		// Already closed (or never opened): idempotent no-op.
		return nil, nil
	}
	if s.metrics != nil {
		s.metrics.SessionsClosed.Inc()
	}

	record := &model.BillingRecord{
		ID:             uuid.New(),
		OperatorID:     operatorID,
		SessionID:      closed.ID,
		Amount:         0,
		SettlementDate: model.MonthEnd(now),
	}
	if err := s.billing.Create(ctx, record); err != nil {
		// The session close is authoritative; a lost billing record is
		// a logged inconsistency handled by manual reconciliation.
		s.logger.Error().Err(err).
			Str("visit_id", visitID.String()).
			Str("operator_id", operatorID.String()).
			Msg("failed to create billing record after session close")
		if s.metrics != nil {
			s.metrics.SideEffectErrors.WithLabelValues("billing_insert").Inc()
		}
		return closed, nil
	}
	if s.metrics != nil {
		s.metrics.BillingRecords.Inc()
	}

	return closed, nil
}

// OpenForOperator returns the operator's current open session, or nil.
// Clients rehydrate their elapsed-time timer from StartedAt after a
// reload instead of trusting any cached value.
func (s *Service) OpenForOperator(ctx context.Context, operatorID uuid.UUID) (*model.AttendanceSession, error) {
	session, err := s.sessions.GetOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return session, nil
}

// History returns every session recorded for a visit, oldest first.
func (s *Service) History(ctx context.Context, visitID uuid.UUID) ([]*model.AttendanceSession, error) {
	sessions, err := s.sessions.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
