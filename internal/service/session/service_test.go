package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocupmed/queue-api/internal/model"
)

type memSessionRepo struct {
	mu       sync.Mutex
	sessions []*model.AttendanceSession
}

func (r *memSessionRepo) Create(_ context.Context, s *model.AttendanceSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *s
	r.sessions = append(r.sessions, &clone)
	return nil
}

func (r *memSessionRepo) CloseOpen(_ context.Context, visitID uuid.UUID, endedAt time.Time) (*model.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.VisitID == visitID && s.EndedAt == nil {
			t := endedAt
			s.EndedAt = &t
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) GetOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.EndedAt == nil {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) GetOpenByVisit(_ context.Context, visitID uuid.UUID) (*model.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.VisitID == visitID && s.EndedAt == nil {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*model.AttendanceSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AttendanceSession
	for _, s := range r.sessions {
		if s.VisitID == visitID {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memBillingRepo struct {
	mu      sync.Mutex
	records []*model.BillingRecord
}

func (r *memBillingRepo) Create(_ context.Context, record *model.BillingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records = append(r.records, &clone)
	return nil
}

func (r *memBillingRepo) ListByOperator(_ context.Context, operatorID uuid.UUID, from, to time.Time) ([]*model.BillingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.BillingRecord
	for _, rec := range r.records {
		if rec.OperatorID == operatorID {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memSessionRepo, *memBillingRepo) {
	sessions := &memSessionRepo{}
	billing := &memBillingRepo{}
	return NewService(sessions, billing, zerolog.Nop(), nil), sessions, billing
}

func TestOpenRecordsStart(t *testing.T) {
	svc, sessions, _ := newTestService()
	visitID, operatorID := uuid.New(), uuid.New()
	start := time.Date(2026, time.March, 9, 10, 15, 0, 0, time.UTC)

	opened, err := svc.Open(context.Background(), visitID, operatorID, start)
	require.NoError(t, err)
	assert.Equal(t, start, opened.StartedAt)
	assert.Nil(t, opened.EndedAt)
	assert.True(t, opened.Open())

	stored, err := sessions.GetOpenByVisit(context.Background(), visitID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, opened.ID, stored.ID)
}

func TestCloseWritesBillingRecord(t *testing.T) {
	svc, _, billing := newTestService()
	visitID, operatorID := uuid.New(), uuid.New()
	start := time.Date(2026, time.March, 9, 10, 15, 0, 0, time.UTC)
	end := start.Add(12 * time.Minute)

	_, err := svc.Open(context.Background(), visitID, operatorID, start)
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), visitID, operatorID, end)
	require.NoError(t, err)
	require.NotNil(t, closed)
	require.NotNil(t, closed.EndedAt)
	assert.Equal(t, end, *closed.EndedAt)

	records, err := billing.ListByOperator(context.Background(), operatorID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, closed.ID, records[0].SessionID)
	assert.Equal(t, int64(0), records[0].Amount)
	assert.Equal(t, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), records[0].SettlementDate)
}

func TestCloseTwiceBillsOnce(t *testing.T) {
	svc, _, billing := newTestService()
	visitID, operatorID := uuid.New(), uuid.New()
	start := time.Date(2026, time.March, 9, 10, 15, 0, 0, time.UTC)

	_, err := svc.Open(context.Background(), visitID, operatorID, start)
	require.NoError(t, err)

	first, err := svc.Close(context.Background(), visitID, operatorID, start.Add(10*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := svc.Close(context.Background(), visitID, operatorID, start.Add(20*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, second, "second close is a no-op")

	records, err := billing.ListByOperator(context.Background(), operatorID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// The first close's timestamp sticks.
	history, err := svc.History(context.Background(), visitID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, start.Add(10*time.Minute), *history[0].EndedAt)
}

func TestCloseWithoutOpenSession(t *testing.T) {
	svc, _, billing := newTestService()

	closed, err := svc.Close(context.Background(), uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, closed)

	records, err := billing.ListByOperator(context.Background(), uuid.New(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSettlementFallsOnMonthEnd(t *testing.T) {
	cases := []struct {
		closedAt time.Time
		want     time.Time
	}{
		{time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC), time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2028, time.February, 10, 8, 0, 0, 0, time.UTC), time.Date(2028, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC), time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, model.MonthEnd(tc.closedAt), "closed at %s", tc.closedAt)
	}
}

func TestOpenForOperatorRehydration(t *testing.T) {
	svc, _, _ := newTestService()
	operatorID := uuid.New()
	start := time.Now().Add(-5 * time.Minute)

	_, err := svc.Open(context.Background(), uuid.New(), operatorID, start)
	require.NoError(t, err)

	open, err := svc.OpenForOperator(context.Background(), operatorID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.InDelta(t, (5 * time.Minute).Seconds(), open.Elapsed(time.Now()).Seconds(), 1)

	none, err := svc.OpenForOperator(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}
