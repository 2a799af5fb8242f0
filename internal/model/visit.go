package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Visit is one day's scheduled encounter for a patient. The five room
// status columns are set from the exam snapshot at create/edit time and
// then mutated only by the queue state machine.
type Visit struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	PatientName   string         `db:"patient_name" json:"patient_name"`
	CompanyName   string         `db:"company_name" json:"company_name,omitempty"`
	ScheduledDate time.Time      `db:"scheduled_date" json:"scheduled_date"`
	ArrivedAt     *time.Time     `db:"arrived_at" json:"arrived_at,omitempty"`
	Present       bool           `db:"present" json:"present"`
	Priority      bool           `db:"priority" json:"priority"`
	Exams         pq.StringArray `db:"exams" json:"exams"`

	StatusPhysician  RoomStatus `db:"status_consultorio" json:"status_consultorio"`
	StatusExam       RoomStatus `db:"status_sala_exames" json:"status_sala_exames"`
	StatusCollection RoomStatus `db:"status_coleta" json:"status_coleta"`
	StatusAudiometry RoomStatus `db:"status_audiometria" json:"status_audiometria"`
	StatusXRay       RoomStatus `db:"status_raio_x" json:"status_raio_x"`

	// Display slot: position 1 is "now calling", >1 is call history.
	DisplayPosition *int    `db:"display_position" json:"display_position,omitempty"`
	DisplayRoom     *string `db:"display_room" json:"display_room,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomStatus returns the status of the given room.
func (v *Visit) RoomStatus(room Room) RoomStatus {
	switch room {
	case RoomPhysician:
		return v.StatusPhysician
	case RoomExam:
		return v.StatusExam
	case RoomCollection:
		return v.StatusCollection
	case RoomAudiometry:
		return v.StatusAudiometry
	case RoomXRay:
		return v.StatusXRay
	}
	return RoomStatusNotApplicable
}

// SetRoomStatus sets the status of the given room.
func (v *Visit) SetRoomStatus(room Room, status RoomStatus) {
	switch room {
	case RoomPhysician:
		v.StatusPhysician = status
	case RoomExam:
		v.StatusExam = status
	case RoomCollection:
		v.StatusCollection = status
	case RoomAudiometry:
		v.StatusAudiometry = status
	case RoomXRay:
		v.StatusXRay = status
	}
}

// ActiveRoom returns the room currently in progress for this visit, if any.
func (v *Visit) ActiveRoom() (Room, bool) {
	for _, room := range Rooms {
		if v.RoomStatus(room) == RoomStatusInProgress {
			return room, true
		}
	}
	return "", false
}

// Pending reports whether at least one room still needs the patient.
func (v *Visit) Pending() bool {
	for _, room := range Rooms {
		switch v.RoomStatus(room) {
		case RoomStatusWaiting, RoomStatusInProgress:
			return true
		}
	}
	return false
}

type CreateVisitRequest struct {
	PatientID     uuid.UUID `json:"patient_id" binding:"required"`
	PatientName   string    `json:"patient_name" binding:"required"`
	CompanyName   string    `json:"company_name"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
	Priority      bool      `json:"priority"`
	Exams         []string  `json:"exams" binding:"required"`
}

type UpdateVisitExamsRequest struct {
	Exams []string `json:"exams" binding:"required"`
}

// QueueEntry pairs a visit with the control states derived for the
// acting operator, ready for the queue screen.
type QueueEntry struct {
	Visit    *Visit                `json:"visit"`
	Controls map[Room]ControlState `json:"controls"`
}
