package display

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocupmed/queue-api/internal/model"
)

// stubVisitRepo serves ListCalled from an in-memory slice ordered by
// display position. The feed only reads, so the mutating methods are
// no-ops.
type stubVisitRepo struct {
	mu     sync.Mutex
	called []*model.Visit
}

func (r *stubVisitRepo) set(visits ...*model.Visit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.called = visits
}

func (r *stubVisitRepo) ListCalled(_ context.Context, _ time.Time, limit int) ([]*model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Visit, 0, len(r.called))
	for _, v := range r.called {
		clone := *v
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return *out[i].DisplayPosition < *out[j].DisplayPosition
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubVisitRepo) Create(context.Context, *model.Visit) error { return nil }
func (r *stubVisitRepo) Get(context.Context, uuid.UUID) (*model.Visit, error) {
	return nil, nil
}
func (r *stubVisitRepo) UpdateExamRouting(context.Context, uuid.UUID, []string, map[model.Room]model.RoomStatus) error {
	return nil
}
func (r *stubVisitRepo) CheckIn(context.Context, uuid.UUID, time.Time) error { return nil }
func (r *stubVisitRepo) ListActive(context.Context, time.Time) ([]*model.Visit, error) {
	return nil, nil
}
func (r *stubVisitRepo) ClaimRoom(context.Context, uuid.UUID, model.Room, time.Time) (bool, error) {
	return false, nil
}
func (r *stubVisitRepo) CompareAndSetRoomStatus(context.Context, uuid.UUID, model.Room, model.RoomStatus, model.RoomStatus) (bool, error) {
	return false, nil
}
func (r *stubVisitRepo) RoomOccupied(context.Context, model.Room, time.Time) (bool, error) {
	return false, nil
}
func (r *stubVisitRepo) PromoteDisplaySlot(context.Context, uuid.UUID, time.Time, string) error {
	return nil
}

func calledVisit(name, roomLabel string, position int) *model.Visit {
	v := &model.Visit{
		ID:          uuid.New(),
		PatientID:   uuid.New(),
		PatientName: name,
	}
	v.DisplayPosition = &position
	v.DisplayRoom = &roomLabel
	return v
}

func newTestFeed(repo *stubVisitRepo, window int) *Feed {
	return NewFeed(repo, nil, zerolog.Nop(), nil, time.Second, window)
}

func TestBoardSplitsNowCallingFromHistory(t *testing.T) {
	repo := &stubVisitRepo{}
	current := calledVisit("Maria", "Audiometria", 1)
	repo.set(
		current,
		calledVisit("José", "Coleta", 2),
		calledVisit("Ana", "Consultório", 3),
	)

	board, err := newTestFeed(repo, 6).Board(context.Background(), time.Now())
	require.NoError(t, err)

	require.NotNil(t, board.NowCalling)
	assert.Equal(t, current.ID, board.NowCalling.VisitID)
	assert.Equal(t, "Audiometria", board.NowCalling.RoomLabel)

	require.Len(t, board.History, 2)
	assert.Equal(t, "José", board.History[0].PatientName)
	assert.Equal(t, "Ana", board.History[1].PatientName)
}

func TestBoardHistoryWindowBound(t *testing.T) {
	repo := &stubVisitRepo{}
	visits := []*model.Visit{calledVisit("Current", "Audiometria", 1)}
	for i := 2; i <= 10; i++ {
		visits = append(visits, calledVisit("Past", "Coleta", i))
	}
	repo.set(visits...)

	board, err := newTestFeed(repo, 6).Board(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, board.History, 6)
}

func TestBoardEmpty(t *testing.T) {
	repo := &stubVisitRepo{}

	board, err := newTestFeed(repo, 6).Board(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, board.NowCalling)
	assert.Empty(t, board.History)
}

func TestRefreshSignalsNewCallOnce(t *testing.T) {
	repo := &stubVisitRepo{}
	feed := newTestFeed(repo, 6)
	first := calledVisit("Maria", "Audiometria", 1)
	repo.set(first)

	_, newCall, err := feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, newCall, "first sighting fires")

	_, newCall, err = feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, newCall, "identical refresh does not re-fire")

	// A different patient takes position 1.
	second := calledVisit("José", "Coleta", 1)
	demoted := *first
	pos := 2
	demoted.DisplayPosition = &pos
	repo.set(second, &demoted)

	_, newCall, err = feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, newCall, "new patient in position 1 fires")
}

func TestRefreshFiresOnRoomChangeSamePatient(t *testing.T) {
	repo := &stubVisitRepo{}
	feed := newTestFeed(repo, 6)
	v := calledVisit("Maria", "Coleta", 1)
	repo.set(v)

	_, newCall, err := feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, newCall)

	// The same patient is called again, now to a different room.
	moved := *v
	label := "Audiometria"
	moved.DisplayRoom = &label
	repo.set(&moved)

	_, newCall, err = feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, newCall, "room change for the same visit fires")
}

func TestRefreshEmptySlotResetsTracker(t *testing.T) {
	repo := &stubVisitRepo{}
	feed := newTestFeed(repo, 6)
	v := calledVisit("Maria", "Audiometria", 1)
	repo.set(v)

	_, newCall, err := feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, newCall)

	// The board clears overnight.
	repo.set()
	_, newCall, err = feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.False(t, newCall, "empty slot is not a call")

	// The same visit reappearing after a reset fires again.
	repo.set(v)
	_, newCall, err = feed.Refresh(context.Background(), time.Now())
	require.NoError(t, err)
	assert.True(t, newCall)
}
