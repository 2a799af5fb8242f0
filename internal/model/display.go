package model

import "github.com/google/uuid"

// CallEntry is one line on the passive call display.
type CallEntry struct {
	VisitID     uuid.UUID `json:"visit_id"`
	PatientName string    `json:"patient_name"`
	RoomLabel   string    `json:"room_label"`
	Position    int       `json:"position"`
}

// CallBoard is the full state of the passive display: the patient being
// called right now plus the bounded recent-call history.
type CallBoard struct {
	NowCalling *CallEntry  `json:"now_calling,omitempty"`
	History    []CallEntry `json:"history"`
}

// CallEvent is published on the message broker whenever the "now
// calling" slot changes identity or room, triggering the display's
// audible alert.
type CallEvent struct {
	VisitID     uuid.UUID `json:"visit_id"`
	PatientName string    `json:"patient_name"`
	RoomLabel   string    `json:"room_label"`
}
