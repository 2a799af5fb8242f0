package queue

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/repository"
	"github.com/ocupmed/queue-api/internal/service/access"
	"github.com/ocupmed/queue-api/internal/service/session"
	"github.com/ocupmed/queue-api/pkg/errors"
	"github.com/ocupmed/queue-api/pkg/messaging"
	"github.com/ocupmed/queue-api/pkg/metrics"
)

// Service is the room status state machine and the active queue
// projection. Every operator-triggered transition is re-validated here
// against the authoritative store, regardless of what the client's
// screen allowed.
type Service struct {
	visits   repository.VisitRepository
	sessions *session.Service
	policy   *access.Policy
	broker   messaging.Broker
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewService(
	visits repository.VisitRepository,
	sessions *session.Service,
	policy *access.Policy,
	broker messaging.Broker,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		visits:   visits,
		sessions: sessions,
		policy:   policy,
		broker:   broker,
		logger:   logger,
		metrics:  m,
	}
}

// Start advances (visit, room) from waiting to in_progress for the
// acting operator. Before the durable compare-and-set it re-checks the
// access policy, the single-active-room-per-patient invariant and the
// single-patient-per-room invariant. On success it pushes the display
// slot and opens an attendance session; both side effects are
// best-effort and never roll the transition back.
func (s *Service) Start(ctx context.Context, actor model.Actor, visitID uuid.UUID, room model.Room) (*model.Visit, error) {
	start := time.Now()

	if !s.policy.CanAdvance(actor.AccessLevel, room) {
		if s.metrics != nil {
			s.metrics.TransitionDenied.WithLabelValues(string(room)).Inc()
		}
		return nil, errors.Forbidden("operator may not advance this room")
	}

	visit, err := s.visits.Get(ctx, visitID)
	if err != nil {
		return nil, errors.NotFound("visit", err)
	}

	if visit.RoomStatus(room) != model.RoomStatusWaiting {
		return nil, s.conflict(room, "room is not waiting")
	}
	if active, ok := visit.ActiveRoom(); ok {
		return nil, s.conflict(room, fmt.Sprintf("patient already in progress in %s", active))
	}
	occupied, err := s.visits.RoomOccupied(ctx, room, visit.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check room occupancy: %w", err)
	}
	if occupied {
		return nil, s.conflict(room, "room occupied by another patient")
	}

	matched, err := s.visits.ClaimRoom(ctx, visitID, room, visit.ScheduledDate)
	if err != nil {
		return nil, fmt.Errorf("failed to start room: %w", err)
	}
	if !matched {
		// Another operator won the race between our read and the write;
		// the conditional claim re-checked both invariants atomically.
		return nil, s.conflict(room, "transition lost to a concurrent update")
	}

	s.pushDisplaySlot(ctx, visit, room)

	now := time.Now()
	if _, err := s.sessions.Open(ctx, visitID, actor.OperatorID, now); err != nil {
		s.logger.Error().Err(err).
			Str("visit_id", visitID.String()).
			Str("room", string(room)).
			Msg("failed to open attendance session after start")
		if s.metrics != nil {
			s.metrics.SideEffectErrors.WithLabelValues("session_open").Inc()
		}
	}

	s.publishChange(ctx, visitID, room, model.RoomStatusInProgress)
	s.observe(start, room, model.RoomStatusInProgress)

	return s.visits.Get(ctx, visitID)
}

// Finish advances (visit, room) from in_progress to done, closes the
// open attendance session and writes the billing record. done is
// terminal; a duplicate finish is rejected by the compare-and-set and
// the guarded session close makes the side effects idempotent.
func (s *Service) Finish(ctx context.Context, actor model.Actor, visitID uuid.UUID, room model.Room) (*model.Visit, error) {
	start := time.Now()

	if !s.policy.CanAdvance(actor.AccessLevel, room) {
		if s.metrics != nil {
			s.metrics.TransitionDenied.WithLabelValues(string(room)).Inc()
		}
		return nil, errors.Forbidden("operator may not advance this room")
	}

	visit, err := s.visits.Get(ctx, visitID)
	if err != nil {
		return nil, errors.NotFound("visit", err)
	}
	if visit.RoomStatus(room) != model.RoomStatusInProgress {
		return nil, s.conflict(room, "room is not in progress")
	}

	matched, err := s.visits.CompareAndSetRoomStatus(ctx, visitID, room, model.RoomStatusInProgress, model.RoomStatusDone)
	if err != nil {
		return nil, fmt.Errorf("failed to finish room: %w", err)
	}
	if !matched {
		return nil, s.conflict(room, "transition lost to a concurrent update")
	}

	now := time.Now()
	if _, err := s.sessions.Close(ctx, visitID, actor.OperatorID, now); err != nil {
		s.logger.Error().Err(err).
			Str("visit_id", visitID.String()).
			Str("room", string(room)).
			Msg("failed to close attendance session after finish")
		if s.metrics != nil {
			s.metrics.SideEffectErrors.WithLabelValues("session_close").Inc()
		}
	}

	s.publishChange(ctx, visitID, room, model.RoomStatusDone)
	s.observe(start, room, model.RoomStatusDone)

	return s.visits.Get(ctx, visitID)
}

// ListActive returns today's queue: checked-in visits with at least one
// room still waiting or in progress, priority first, then first come
// first served. Ordering is applied here as well as in the store query
// so the projection does not depend on store ordering guarantees.
func (s *Service) ListActive(ctx context.Context, date time.Time) ([]*model.Visit, error) {
	visits, err := s.visits.ListActive(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active visits: %w", err)
	}

	active := visits[:0]
	for _, v := range visits {
		if v.Present && v.Pending() {
			active = append(active, v)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority
		}
		ti, tj := active[i].ArrivedAt, active[j].ArrivedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.Before(*tj)
		}
	})

	if s.metrics != nil {
		s.metrics.ActiveQueueSize.Set(float64(len(active)))
	}
	return active, nil
}

// Snapshot returns the active queue with per-room control states for
// the acting operator, ready for the queue screen.
func (s *Service) Snapshot(ctx context.Context, actor model.Actor, date time.Time) ([]*model.QueueEntry, error) {
	visits, err := s.ListActive(ctx, date)
	if err != nil {
		return nil, err
	}

	// A room is occupied if any visit in today's queue holds it in
	// progress.
	occupied := make(map[model.Room]uuid.UUID)
	for _, v := range visits {
		if room, ok := v.ActiveRoom(); ok {
			occupied[room] = v.ID
		}
	}

	entries := make([]*model.QueueEntry, 0, len(visits))
	for _, v := range visits {
		controls := make(map[model.Room]model.ControlState, len(model.Rooms))
		for _, room := range model.Rooms {
			controls[room] = s.controlState(v, room, actor, occupied)
		}
		entries = append(entries, &model.QueueEntry{Visit: v, Controls: controls})
	}
	return entries, nil
}

// controlState derives the interactivity of one room control. done is
// terminal and read-only regardless of permission.
func (s *Service) controlState(v *model.Visit, room model.Room, actor model.Actor, occupied map[model.Room]uuid.UUID) model.ControlState {
	switch v.RoomStatus(room) {
	case model.RoomStatusDone:
		return model.ControlDone
	case model.RoomStatusNotApplicable:
		return model.ControlInert
	}

	if holder, ok := occupied[room]; ok && holder != v.ID {
		return model.ControlOccupied
	}
	if !s.policy.CanAdvance(actor.AccessLevel, room) {
		return model.ControlBlocked
	}
	if v.RoomStatus(room) == model.RoomStatusWaiting {
		if _, busy := v.ActiveRoom(); busy {
			return model.ControlBlocked
		}
	}
	return model.ControlEnabled
}

// pushDisplaySlot demotes the current "now calling" visit into history
// and takes position 1 for this visit. Failures are logged; the call
// display recovers on its next refresh.
func (s *Service) pushDisplaySlot(ctx context.Context, visit *model.Visit, room model.Room) {
	if err := s.visits.PromoteDisplaySlot(ctx, visit.ID, visit.ScheduledDate, room.Label()); err != nil {
		s.logger.Error().Err(err).
			Str("visit_id", visit.ID.String()).
			Msg("failed to promote display slot")
		if s.metrics != nil {
			s.metrics.SideEffectErrors.WithLabelValues("display_slot").Inc()
		}
	}
}

func (s *Service) publishChange(ctx context.Context, visitID uuid.UUID, room model.Room, status model.RoomStatus) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{
		Type: "room_transition",
		Payload: map[string]interface{}{
			"visit_id": visitID,
			"room":     room,
			"status":   status,
		},
	}
	if err := s.broker.Publish(ctx, messaging.ChannelVisitChanged, msg); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish visit change")
	}
}

func (s *Service) conflict(room model.Room, message string) error {
	if s.metrics != nil {
		s.metrics.TransitionConflicts.WithLabelValues(string(room)).Inc()
	}
	return errors.Conflict(message)
}

func (s *Service) observe(start time.Time, room model.Room, to model.RoomStatus) {
	if s.metrics == nil {
		return
	}
	s.metrics.TransitionsTotal.WithLabelValues(string(room), string(to)).Inc()
	s.metrics.TransitionLatency.Observe(time.Since(start).Seconds())
}
