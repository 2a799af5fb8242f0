package visit

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
	"github.com/ocupmed/queue-api/internal/service/routing"
	"github.com/ocupmed/queue-api/pkg/errors"
)

type memVisitRepo struct {
	mu     sync.Mutex
	visits map[uuid.UUID]*model.Visit
}

func newMemVisitRepo() *memVisitRepo {
	return &memVisitRepo{visits: make(map[uuid.UUID]*model.Visit)}
}

func (r *memVisitRepo) Create(_ context.Context, v *model.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *v
	r.visits[v.ID] = &clone
	return nil
}

func (r *memVisitRepo) Get(_ context.Context, id uuid.UUID) (*model.Visit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return nil, errors.NotFound("visit", nil)
	}
	clone := *v
	return &clone, nil
}

func (r *memVisitRepo) UpdateExamRouting(_ context.Context, id uuid.UUID, exams []string, statuses map[model.Room]model.RoomStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return errors.NotFound("visit", nil)
	}
	v.Exams = exams
	for room, status := range statuses {
		v.SetRoomStatus(room, status)
	}
	return nil
}

func (r *memVisitRepo) CheckIn(_ context.Context, id uuid.UUID, arrivedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.visits[id]
	if !ok {
		return errors.NotFound("visit", nil)
	}
	t := arrivedAt
	v.ArrivedAt = &t
	v.Present = true
	return nil
}

func (r *memVisitRepo) ListActive(context.Context, time.Time) ([]*model.Visit, error) {
	return nil, nil
}
func (r *memVisitRepo) ListCalled(context.Context, time.Time, int) ([]*model.Visit, error) {
	return nil, nil
}
func (r *memVisitRepo) ClaimRoom(context.Context, uuid.UUID, model.Room, time.Time) (bool, error) {
	return false, nil
}
func (r *memVisitRepo) CompareAndSetRoomStatus(context.Context, uuid.UUID, model.Room, model.RoomStatus, model.RoomStatus) (bool, error) {
	return false, nil
}
func (r *memVisitRepo) RoomOccupied(context.Context, model.Room, time.Time) (bool, error) {
	return false, nil
}
func (r *memVisitRepo) PromoteDisplaySlot(context.Context, uuid.UUID, time.Time, string) error {
	return nil
}

func newTestService() (*Service, *memVisitRepo) {
	repo := newMemVisitRepo()
	return NewService(repo, routing.NewService(), zerolog.Nop()), repo
}

func TestCreateRoutesExamsToRooms(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateVisitRequest{
		PatientID:     uuid.New(),
		PatientName:   "Maria",
		ScheduledDate: time.Date(2026, time.March, 9, 14, 30, 0, 0, time.UTC),
		Exams:         []string{"Audiometria", "Hemograma"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoomStatusWaiting, created.RoomStatus(model.RoomAudiometry))
	assert.Equal(t, model.RoomStatusWaiting, created.RoomStatus(model.RoomCollection))
	assert.Equal(t, model.RoomStatusNotApplicable, created.RoomStatus(model.RoomXRay))

	// The scheduled date is stored day-granular.
	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), created.ScheduledDate)
	assert.False(t, created.Present)
	assert.Nil(t, created.ArrivedAt)
}

func TestCreateRequiresExams(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), &model.CreateVisitRequest{
		PatientID:     uuid.New(),
		PatientName:   "Maria",
		ScheduledDate: time.Now(),
	})
	assert.Error(t, err)
}

func TestUpdateExamsRecomputesRouting(t *testing.T) {
	svc, repo := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateVisitRequest{
		PatientID:     uuid.New(),
		PatientName:   "Maria",
		ScheduledDate: time.Now(),
		Exams:         []string{"Audiometria"},
	})
	require.NoError(t, err)

	// Check in first so we can verify queue-progress fields survive.
	arrived := time.Now()
	_, err = svc.CheckIn(context.Background(), created.ID, arrived)
	require.NoError(t, err)

	updated, err := svc.UpdateExams(context.Background(), created.ID, []string{"Raio-X Torax"})
	require.NoError(t, err)

	assert.Equal(t, model.RoomStatusWaiting, updated.RoomStatus(model.RoomXRay))
	assert.Equal(t, model.RoomStatusNotApplicable, updated.RoomStatus(model.RoomAudiometry))
	assert.Equal(t, []string{"Raio-X Torax"}, []string(updated.Exams))

	// Presence and arrival are untouched by an exam edit.
	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Present)
	require.NotNil(t, stored.ArrivedAt)
}

func TestUpdateExamsRequiresExams(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateExams(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
}

func TestCheckInStampsArrival(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), &model.CreateVisitRequest{
		PatientID:     uuid.New(),
		PatientName:   "Maria",
		ScheduledDate: time.Now(),
		Exams:         []string{"Audiometria"},
	})
	require.NoError(t, err)

	now := time.Date(2026, time.March, 9, 8, 2, 0, 0, time.UTC)
	checked, err := svc.CheckIn(context.Background(), created.ID, now)
	require.NoError(t, err)

	assert.True(t, checked.Present)
	require.NotNil(t, checked.ArrivedAt)
	assert.Equal(t, now, *checked.ArrivedAt)
}

func TestGetUnknownVisit(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, errors.IsNotFound(err))
}
