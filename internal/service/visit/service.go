package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/repository"
	"github.com/ocupmed/queue-api/internal/service/routing"
)

// Service owns the visit lifecycle around the queue: creation with the
// routed room statuses, exam edits that recompute only those statuses,
// and check-in.
type Service struct {
	visits  repository.VisitRepository
	routing *routing.Service
	logger  zerolog.Logger
}

func NewService(visits repository.VisitRepository, routingSvc *routing.Service, logger zerolog.Logger) *Service {
	return &Service{
		visits:  visits,
		routing: routingSvc,
		logger:  logger,
	}
}

// Create inserts a visit with its room statuses resolved from the exam
// snapshot. The snapshot is frozen here; later catalog edits do not
// change it.
func (s *Service) Create(ctx context.Context, req *model.CreateVisitRequest) (*model.Visit, error) {
	if len(req.Exams) == 0 {
		return nil, fmt.Errorf("visit requires at least one exam")
	}

	statuses := s.routing.Resolve(req.Exams)

	visit := &model.Visit{
		ID:            uuid.New(),
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		CompanyName:   req.CompanyName,
		ScheduledDate: dateOnly(req.ScheduledDate),
		Priority:      req.Priority,
		Exams:         req.Exams,
	}
	for room, status := range statuses {
		visit.SetRoomStatus(room, status)
	}

	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}
	return visit, nil
}

// UpdateExams replaces the exam snapshot and recomputes the five room
// status fields. Queue-progress fields (arrival, presence, display
// slot) are deliberately left untouched on this path.
func (s *Service) UpdateExams(ctx context.Context, id uuid.UUID, exams []string) (*model.Visit, error) {
	if len(exams) == 0 {
		return nil, fmt.Errorf("visit requires at least one exam")
	}

	statuses := s.routing.Resolve(exams)
	if err := s.visits.UpdateExamRouting(ctx, id, exams, statuses); err != nil {
		return nil, fmt.Errorf("failed to update exams: %w", err)
	}
	return s.visits.Get(ctx, id)
}

// CheckIn marks the patient physically present, stamping arrival time.
// Arrival order drives the first-come-first-served tier of the queue.
func (s *Service) CheckIn(ctx context.Context, id uuid.UUID, now time.Time) (*model.Visit, error) {
	if err := s.visits.CheckIn(ctx, id, now); err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}
	return s.visits.Get(ctx, id)
}

// Get returns one visit.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	return s.visits.Get(ctx, id)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
