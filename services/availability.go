package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
)

// DateRange is an arrival/departure pair of calendar dates.
type DateRange struct {
	Arrival   time.Time
	Departure time.Time
}

// NewDateRange normalises both ends to calendar dates.
func NewDateRange(arrival, departure time.Time) DateRange {
	return DateRange{Arrival: clock.DateOf(arrival), Departure: clock.DateOf(departure)}
}

// occupiedNights returns the first and last night the range holds the room.
// The departure day itself is free; a same-day range holds its arrival night.
func (r DateRange) occupiedNights() (first, last time.Time) {
	first = r.Arrival
	last = r.Departure.AddDate(0, 0, -1)
	if last.Before(first) {
		last = first
	}
	return first, last
}

// Overlaps is a closed-interval test over occupied nights.
func (r DateRange) Overlaps(o DateRange) bool {
	f1, l1 := r.occupiedNights()
	f2, l2 := o.occupiedNights()
	return !f1.After(l2) && !l1.Before(f2)
}

// Availability is the outcome of resolving a room against a date range.
type Availability struct {
	RoomID                   uint   `json:"roomId"`
	Available                bool   `json:"available"`
	Reason                   string `json:"reason,omitempty"`
	ConflictingStayID        *uint  `json:"conflictingStayId,omitempty"`
	ConflictingReservationID *uint  `json:"conflictingReservationId,omitempty"`
}

// ResolveInput is everything the resolver needs; callers drop the stay or
// reservation being acted upon from Stays and Reservations beforehand.
type ResolveInput struct {
	Room         models.Room
	Range        DateRange
	Today        time.Time
	Stays        []models.Stay
	Reservations []models.Reservation

	// IgnoreRoomStatus skips the same-day occupancy rule (stayover).
	IgnoreRoomStatus bool
}

// Resolve decides whether a room is bookable for a range: no checked-in stay
// and no active reservation may overlap it, and a same-day booking needs a
// room that is not currently occupied or awaiting checkout.
func Resolve(in ResolveInput) Availability {
	out := Availability{RoomID: in.Room.ID, Available: true}

	for i := range in.Stays {
		st := in.Stays[i]
		if st.Guest.Status != models.GuestCheckedIn {
			continue
		}
		if in.Range.Overlaps(NewDateRange(st.Stay.Arrival, st.Stay.Departure)) {
			id := st.ID
			out.Available = false
			out.Reason = "occupied"
			out.ConflictingStayID = &id
			return out
		}
	}

	for i := range in.Reservations {
		rs := in.Reservations[i]
		if rs.Status != models.ReservationActive {
			continue
		}
		if in.Range.Overlaps(NewDateRange(rs.Arrival, rs.Departure)) {
			id := rs.ID
			out.Available = false
			out.Reason = "reserved"
			out.ConflictingReservationID = &id
			return out
		}
	}

	if !in.IgnoreRoomStatus && !in.Range.Arrival.After(in.Today) {
		if in.Room.Status == models.RoomOccupied || in.Room.Status == models.RoomDueOut {
			out.Available = false
			out.Reason = "room not vacated"
		}
	}
	return out
}

// AvailabilityService answers availability queries outside of a booking.
type AvailabilityService struct {
	DB    *gorm.DB
	Clock clock.Clock
}

func NewAvailabilityService(db *gorm.DB, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{DB: db, Clock: clk}
}

func (s *AvailabilityService) Check(ctx context.Context, roomID uint, arrival, departure time.Time) (Availability, error) {
	rng := NewDateRange(arrival, departure)
	if rng.Departure.Before(rng.Arrival) {
		return Availability{}, invalid("departure must not be before arrival")
	}

	db := s.DB.WithContext(ctx)
	var room models.Room
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Availability{}, ErrRoomNotFound
		}
		return Availability{}, persistence("load room", err)
	}

	stays, reservations, err := loadOccupancy(db, room.ID)
	if err != nil {
		return Availability{}, err
	}
	return Resolve(ResolveInput{
		Room:         room,
		Range:        rng,
		Today:        clock.Today(s.Clock),
		Stays:        stays,
		Reservations: reservations,
	}), nil
}

// loadOccupancy reads the checked-in stays and active reservations of a room.
func loadOccupancy(tx *gorm.DB, roomID uint) ([]models.Stay, []models.Reservation, error) {
	var stays []models.Stay
	if err := tx.Where("room_id = ? AND guest_status = ?", roomID, models.GuestCheckedIn).
		Find(&stays).Error; err != nil {
		return nil, nil, persistence("load stays", err)
	}
	var reservations []models.Reservation
	if err := tx.Where("room_id = ? AND status = ?", roomID, models.ReservationActive).
		Find(&reservations).Error; err != nil {
		return nil, nil, persistence("load reservations", err)
	}
	return stays, reservations, nil
}

type exclusion struct {
	stayID        uint
	reservationID uint
}

// ensureAvailable runs the resolver inside tx and turns a rejection into
// ErrRoomUnavailable.
func ensureAvailable(tx *gorm.DB, room models.Room, rng DateRange, today time.Time, ex exclusion, ignoreStatus bool) error {
	stays, reservations, err := loadOccupancy(tx, room.ID)
	if err != nil {
		return err
	}
	if ex.stayID != 0 {
		stays = dropStay(stays, ex.stayID)
	}
	if ex.reservationID != 0 {
		reservations = dropReservation(reservations, ex.reservationID)
	}

	av := Resolve(ResolveInput{
		Room:             room,
		Range:            rng,
		Today:            today,
		Stays:            stays,
		Reservations:     reservations,
		IgnoreRoomStatus: ignoreStatus,
	})
	if !av.Available {
		return fmt.Errorf("room %s %s: %w", room.RoomNo, av.Reason, ErrRoomUnavailable)
	}
	return nil
}

func dropStay(in []models.Stay, id uint) []models.Stay {
	out := in[:0]
	for _, st := range in {
		if st.ID != id {
			out = append(out, st)
		}
	}
	return out
}

func dropReservation(in []models.Reservation, id uint) []models.Reservation {
	out := in[:0]
	for _, rs := range in {
		if rs.ID != id {
			out = append(out, rs)
		}
	}
	return out
}
