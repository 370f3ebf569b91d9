package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-frontdesk/models"
)

var allowedTransitions = map[models.RoomStatus][]models.RoomStatus{
	models.RoomAvailable: {models.RoomReserved, models.RoomOccupied},
	models.RoomReserved:  {models.RoomOccupied, models.RoomAvailable},
	models.RoomOccupied:  {models.RoomDueOut, models.RoomAvailable},
	models.RoomDueOut:    {models.RoomAvailable},
}

// CanTransition reports whether a room may move from one status to another.
// Self-transitions are not transitions and are handled by callers.
func CanTransition(from, to models.RoomStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// lockRoom reads a room with a row lock for the rest of tx.
func lockRoom(tx *gorm.DB, id uint) (models.Room, error) {
	var room models.Room
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Room{}, ErrRoomNotFound
		}
		return models.Room{}, persistence("lock room", err)
	}
	return room, nil
}

// applyTransition moves room to status `to`, pointing it at activeStayID (nil
// clears it). The write only lands if nobody bumped the room's version since
// it was read; room is updated in place on success.
func applyTransition(tx *gorm.DB, room *models.Room, to models.RoomStatus, activeStayID *uint) error {
	if !CanTransition(room.Status, to) {
		return fmt.Errorf("room %s %s -> %s: %w", room.RoomNo, room.Status, to, ErrInvalidTransition)
	}
	return writeStatus(tx, room, to, activeStayID)
}

// reoccupy returns a DUE_OUT room to OCCUPIED after its guest extended past
// today. It is the one move outside the transition table.
func reoccupy(tx *gorm.DB, room *models.Room) error {
	if room.Status != models.RoomDueOut || room.ActiveStayID == nil {
		return fmt.Errorf("room %s %s -> %s: %w", room.RoomNo, room.Status, models.RoomOccupied, ErrInvalidTransition)
	}
	return writeStatus(tx, room, models.RoomOccupied, room.ActiveStayID)
}

func writeStatus(tx *gorm.DB, room *models.Room, to models.RoomStatus, activeStayID *uint) error {
	res := tx.Model(&models.Room{}).
		Where("id = ? AND version = ?", room.ID, room.Version).
		Updates(map[string]interface{}{
			"room_status":    string(to),
			"active_stay_id": activeStayID,
			"version":        room.Version + 1,
		})
	if res.Error != nil {
		return persistence("update room status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}

	room.Status = to
	room.ActiveStayID = activeStayID
	room.Version++
	return nil
}
