package models

import (
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomAvailable RoomStatus = "AVAILABLE"
	RoomReserved  RoomStatus = "RESERVED"
	RoomOccupied  RoomStatus = "OCCUPIED"
	RoomDueOut    RoomStatus = "DUE_OUT"
)

// Valid reports whether s is one of the four persisted room states.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomReserved, RoomOccupied, RoomDueOut:
		return true
	}
	return false
}

type Room struct {
	gorm.Model

	RoomNo   string     `json:"roomNo" gorm:"column:room_no;uniqueIndex;type:varchar(16);not null"`
	RoomType string     `json:"roomType" gorm:"column:room_type;type:varchar(64);not null"`
	Floor    string     `json:"roomFloor" gorm:"column:room_floor;type:varchar(10);not null"`
	Status   RoomStatus `json:"roomStatus" gorm:"column:room_status;type:varchar(16);not null;index"`

	// Stay currently occupying the room, cleared on checkout.
	ActiveStayID *uint `json:"guestId,omitempty" gorm:"column:active_stay_id"`

	// Bumped on every lifecycle transition; guards the conditional update.
	Version uint `json:"-" gorm:"column:version;not null;default:0"`
}
