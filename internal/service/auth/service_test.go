package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/pkg/auth"
)

type memOperatorRepo struct {
	mu        sync.Mutex
	operators map[uuid.UUID]*model.Operator
}

func newMemOperatorRepo() *memOperatorRepo {
	return &memOperatorRepo{operators: make(map[uuid.UUID]*model.Operator)}
}

func (r *memOperatorRepo) Create(_ context.Context, operator *model.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if operator.ID == uuid.Nil {
		operator.ID = uuid.New()
	}
	clone := *operator
	r.operators[operator.ID] = &clone
	return nil
}

func (r *memOperatorRepo) Get(_ context.Context, id uuid.UUID) (*model.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.operators[id]
	if !ok {
		return nil, errors.New("operator not found")
	}
	clone := *op
	return &clone, nil
}

func (r *memOperatorRepo) GetByEmail(_ context.Context, email string) (*model.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range r.operators {
		if op.Email == email {
			clone := *op
			return &clone, nil
		}
	}
	return nil, errors.New("operator not found")
}

func newTestService() (*Service, *memOperatorRepo) {
	repo := newMemOperatorRepo()
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return NewService(repo, jwtSvc), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Register(context.Background(), &model.CreateOperatorRequest{
		Name:        "Ana",
		Email:       "ana@clinic.test",
		Password:    "correct-horse",
		AccessLevel: model.AccessAudiometry,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.NotEqual(t, "correct-horse", created.PasswordHash)

	resp, err := svc.Login(context.Background(), "ana@clinic.test", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, created.ID, resp.Operator.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), &model.CreateOperatorRequest{
		Name:        "Ana",
		Email:       "ana@clinic.test",
		Password:    "correct-horse",
		AccessLevel: model.AccessAll,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "ana@clinic.test", "battery-staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Login(context.Background(), "nobody@clinic.test", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenCarriesActor(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Register(context.Background(), &model.CreateOperatorRequest{
		Name:        "Ana",
		Email:       "ana@clinic.test",
		Password:    "correct-horse",
		AccessLevel: model.AccessCollection,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), "ana@clinic.test", "correct-horse")
	require.NoError(t, err)

	actor, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, actor.OperatorID)
	assert.Equal(t, "Ana", actor.Name)
	assert.Equal(t, model.AccessCollection, actor.AccessLevel)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ValidateToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}
