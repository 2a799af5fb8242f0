package access

import (
	"github.com/ocupmed/queue-api/internal/model"
)

// levelRooms maps each restricted access level to the single room it
// unlocks. Level 1 is unrestricted and handled separately; anything
// not in this table denies every room.
var levelRooms = map[model.AccessLevel]model.Room{
	model.AccessPhysician:  model.RoomPhysician,
	model.AccessExam:       model.RoomExam,
	model.AccessCollection: model.RoomCollection,
	model.AccessAudiometry: model.RoomAudiometry,
	model.AccessXRay:       model.RoomXRay,
}

// Policy decides which rooms an operator may advance. It is checked
// again at the mutation boundary, not only at render time, so a stale
// client cannot push a transition its screen should have disabled.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// CanAdvance reports whether the access level permits operator-driven
// transitions in the given room. Unknown levels and unknown rooms
// fail closed.
func (p *Policy) CanAdvance(level model.AccessLevel, room model.Room) bool {
	if !room.Valid() {
		return false
	}
	if level == model.AccessAll {
		return true
	}
	allowed, ok := levelRooms[level]
	return ok && allowed == room
}

// AllowedRooms returns every room the access level may advance, in
// display order. Used by renderers to pre-disable controls.
func (p *Policy) AllowedRooms(level model.AccessLevel) []model.Room {
	if level == model.AccessAll {
		rooms := make([]model.Room, len(model.Rooms))
		copy(rooms, model.Rooms)
		return rooms
	}
	if room, ok := levelRooms[level]; ok {
		return []model.Room{room}
	}
	return nil
}
