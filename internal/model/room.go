package model

// Room identifies one of the fixed physical service stations a patient
// moves through during a same-day visit.
type Room string

const (
	RoomPhysician  Room = "consultorio"
	RoomExam       Room = "sala_exames"
	RoomCollection Room = "coleta"
	RoomAudiometry Room = "audiometria"
	RoomXRay       Room = "raio_x"
)

// Rooms lists every station in display order.
var Rooms = []Room{
	RoomPhysician,
	RoomExam,
	RoomCollection,
	RoomAudiometry,
	RoomXRay,
}

var roomLabels = map[Room]string{
	RoomPhysician:  "Consultório",
	RoomExam:       "Sala de Exames",
	RoomCollection: "Coleta",
	RoomAudiometry: "Audiometria",
	RoomXRay:       "Raio-X",
}

// Label returns the human label shown on call displays.
func (r Room) Label() string {
	return roomLabels[r]
}

// Valid reports whether r is one of the known stations.
func (r Room) Valid() bool {
	_, ok := roomLabels[r]
	return ok
}

type RoomStatus string

const (
	RoomStatusNotApplicable RoomStatus = "not_applicable"
	RoomStatusWaiting       RoomStatus = "waiting"
	RoomStatusInProgress    RoomStatus = "in_progress"
	RoomStatusDone          RoomStatus = "done"
)

// ControlState is the derived interactivity of one room control for a
// given operator, consumed by queue renderers.
type ControlState string

const (
	ControlEnabled  ControlState = "enabled"
	ControlBlocked  ControlState = "blocked"
	ControlOccupied ControlState = "occupied"
	ControlDone     ControlState = "done"
	ControlInert    ControlState = "inert"
)
