package services

import (
	"time"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
)

// GuestDisplayStatus is the status shown on the calendar. A checked-in guest
// whose departure is today or earlier shows as DUE_OUT; nothing is stored.
func GuestDisplayStatus(stay models.Stay, today time.Time) models.GuestStatus {
	if stay.Guest.Status == models.GuestCheckedIn && !clock.DateOf(stay.Stay.Departure).After(clock.DateOf(today)) {
		return models.GuestDueOut
	}
	return stay.Guest.Status
}

// RoomDisplayStatus shows an occupied room as DUE_OUT once its guest's
// departure has passed, ahead of the sweep.
func RoomDisplayStatus(room models.Room, active *models.Stay, today time.Time) models.RoomStatus {
	if room.Status == models.RoomOccupied && active != nil &&
		clock.DateOf(active.Stay.Departure).Before(clock.DateOf(today)) {
		return models.RoomDueOut
	}
	return room.Status
}
