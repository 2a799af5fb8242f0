package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceSession records one operator handling one visit. A null
// ended_at means the session is still open; sessions are never deleted.
type AttendanceSession struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	VisitID    uuid.UUID  `db:"visit_id" json:"visit_id"`
	OperatorID uuid.UUID  `db:"operator_id" json:"operator_id"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	EndedAt    *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}

// Open reports whether the session has not been closed yet.
func (s *AttendanceSession) Open() bool {
	return s.EndedAt == nil
}

// Elapsed returns the handling time accumulated so far. For an open
// session the clock keeps running against now; clients rehydrate their
// timers from this rather than any local cache.
func (s *AttendanceSession) Elapsed(now time.Time) time.Duration {
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}
