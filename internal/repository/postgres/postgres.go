package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/ocupmed/queue-api/internal/repository"
)

type visitRepository struct {
	BaseRepository
}

type sessionRepository struct {
	BaseRepository
}

type billingRepository struct {
	BaseRepository
}

type operatorRepository struct {
	BaseRepository
}

func NewVisitRepository(db *sqlx.DB) repository.VisitRepository {
	return &visitRepository{NewBaseRepository(db)}
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{NewBaseRepository(db)}
}

func NewBillingRepository(db *sqlx.DB) repository.BillingRepository {
	return &billingRepository{NewBaseRepository(db)}
}

func NewOperatorRepository(db *sqlx.DB) repository.OperatorRepository {
	return &operatorRepository{NewBaseRepository(db)}
}
