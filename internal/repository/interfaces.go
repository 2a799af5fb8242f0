package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/model"
)

// All repository interfaces in one file
type (
	// VisitRepository handles visit records and their room-status fields.
	VisitRepository interface {
		Create(ctx context.Context, visit *model.Visit) error
		Get(ctx context.Context, id uuid.UUID) (*model.Visit, error)
		// UpdateExamRouting rewrites the exam snapshot and the five
		// room-status columns only; queue-progress fields (arrival,
		// presence, display slot) are never touched by this path.
		UpdateExamRouting(ctx context.Context, id uuid.UUID, exams []string, statuses map[model.Room]model.RoomStatus) error
		CheckIn(ctx context.Context, id uuid.UUID, arrivedAt time.Time) error
		ListActive(ctx context.Context, date time.Time) ([]*model.Visit, error)
		ListCalled(ctx context.Context, date time.Time, limit int) ([]*model.Visit, error)
		// ClaimRoom atomically moves (visit, room) from waiting to
		// in_progress, but only while the visit has no other room in
		// progress and no visit on the same date holds this room. The
		// whole check-and-set is one conditional update, so concurrent
		// claims cannot both win.
		ClaimRoom(ctx context.Context, id uuid.UUID, room model.Room, date time.Time) (bool, error)
		// CompareAndSetRoomStatus updates the room's status only if it
		// still holds from; reports whether a row matched.
		CompareAndSetRoomStatus(ctx context.Context, id uuid.UUID, room model.Room, from, to model.RoomStatus) (bool, error)
		// RoomOccupied reports whether any visit on the given date has
		// the room in progress.
		RoomOccupied(ctx context.Context, room model.Room, date time.Time) (bool, error)
		// PromoteDisplaySlot demotes every called visit of the day by
		// one position and gives this visit position 1, atomically.
		PromoteDisplaySlot(ctx context.Context, id uuid.UUID, date time.Time, roomLabel string) error
	}

	// SessionRepository handles the attendance session audit trail.
	SessionRepository interface {
		Create(ctx context.Context, session *model.AttendanceSession) error
		// CloseOpen closes the single open session for the visit. The
		// update is guarded on ended_at IS NULL so a retried close is a
		// no-op; it returns the closed session, or nil when none was open.
		CloseOpen(ctx context.Context, visitID uuid.UUID, endedAt time.Time) (*model.AttendanceSession, error)
		GetOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.AttendanceSession, error)
		GetOpenByVisit(ctx context.Context, visitID uuid.UUID) (*model.AttendanceSession, error)
		ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*model.AttendanceSession, error)
	}

	// BillingRepository handles placeholder ledger entries.
	BillingRepository interface {
		Create(ctx context.Context, record *model.BillingRecord) error
		ListByOperator(ctx context.Context, operatorID uuid.UUID, from, to time.Time) ([]*model.BillingRecord, error)
	}

	// OperatorRepository handles clinic staff lookup.
	OperatorRepository interface {
		Create(ctx context.Context, operator *model.Operator) error
		Get(ctx context.Context, id uuid.UUID) (*model.Operator, error)
		GetByEmail(ctx context.Context, email string) (*model.Operator, error)
	}
)
