package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"hotel-frontdesk/models"
)

func TestDateRangeOverlaps(t *testing.T) {
	existing := NewDateRange(day("2024-01-10"), day("2024-01-15"))

	cases := []struct {
		name string
		rng  DateRange
		want bool
	}{
		{"inside", NewDateRange(day("2024-01-12"), day("2024-01-13")), true},
		{"covers", NewDateRange(day("2024-01-08"), day("2024-01-20")), true},
		{"starts on last night", NewDateRange(day("2024-01-14"), day("2024-01-16")), true},
		{"starts on departure day", NewDateRange(day("2024-01-15"), day("2024-01-18")), false},
		{"ends on arrival day", NewDateRange(day("2024-01-05"), day("2024-01-10")), false},
		{"same-day range on arrival", NewDateRange(day("2024-01-10"), day("2024-01-10")), true},
		{"same-day range on departure", NewDateRange(day("2024-01-15"), day("2024-01-15")), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rng.Overlaps(existing); got != tc.want {
				t.Fatalf("expected overlap=%v, got %v", tc.want, got)
			}
			if got := existing.Overlaps(tc.rng); got != tc.want {
				t.Fatalf("overlap is not symmetric for %s", tc.name)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	room := models.Room{Model: gorm.Model{ID: 7}, RoomNo: "101", Status: models.RoomOccupied}
	stay := models.Stay{
		ID:    3,
		Guest: models.StayGuest{Name: "Lim", Status: models.GuestCheckedIn},
		Stay:  models.StayPeriod{Arrival: day("2024-01-10"), Departure: day("2024-01-15")},
	}
	reservation := models.Reservation{
		ID:        9,
		Arrival:   day("2024-01-20"),
		Departure: day("2024-01-22"),
		Status:    models.ReservationActive,
	}
	today := day("2024-01-01")

	t.Run("overlapping stay is rejected", func(t *testing.T) {
		av := Resolve(ResolveInput{
			Room:  room,
			Range: NewDateRange(day("2024-01-12"), day("2024-01-13")),
			Today: today,
			Stays: []models.Stay{stay},
		})
		if av.Available || av.Reason != "occupied" {
			t.Fatalf("expected occupied rejection, got %+v", av)
		}
		if av.ConflictingStayID == nil || *av.ConflictingStayID != stay.ID {
			t.Fatalf("expected conflicting stay %d, got %v", stay.ID, av.ConflictingStayID)
		}
	})

	t.Run("departure day is bookable", func(t *testing.T) {
		av := Resolve(ResolveInput{
			Room:  room,
			Range: NewDateRange(day("2024-01-15"), day("2024-01-18")),
			Today: today,
			Stays: []models.Stay{stay},
		})
		if !av.Available {
			t.Fatalf("expected available, got %+v", av)
		}
	})

	t.Run("checked out stay is ignored", func(t *testing.T) {
		closed := stay
		closed.Guest.Status = models.GuestCheckedOut
		av := Resolve(ResolveInput{
			Room:  models.Room{Model: gorm.Model{ID: 7}, Status: models.RoomAvailable},
			Range: NewDateRange(day("2024-01-12"), day("2024-01-13")),
			Today: today,
			Stays: []models.Stay{closed},
		})
		if !av.Available {
			t.Fatalf("expected available, got %+v", av)
		}
	})

	t.Run("active reservation is rejected", func(t *testing.T) {
		av := Resolve(ResolveInput{
			Room:         room,
			Range:        NewDateRange(day("2024-01-21"), day("2024-01-25")),
			Today:        today,
			Reservations: []models.Reservation{reservation},
		})
		if av.Available || av.Reason != "reserved" {
			t.Fatalf("expected reserved rejection, got %+v", av)
		}
		if av.ConflictingReservationID == nil || *av.ConflictingReservationID != reservation.ID {
			t.Fatalf("expected conflicting reservation %d", reservation.ID)
		}
	})

	t.Run("cancelled reservation is ignored", func(t *testing.T) {
		cancelled := reservation
		cancelled.Status = models.ReservationCancelled
		av := Resolve(ResolveInput{
			Room:         room,
			Range:        NewDateRange(day("2024-01-21"), day("2024-01-25")),
			Today:        today,
			Reservations: []models.Reservation{cancelled},
		})
		if !av.Available {
			t.Fatalf("expected available, got %+v", av)
		}
	})

	t.Run("same day arrival needs a vacated room", func(t *testing.T) {
		for _, status := range []models.RoomStatus{models.RoomOccupied, models.RoomDueOut} {
			av := Resolve(ResolveInput{
				Room:  models.Room{Model: gorm.Model{ID: 7}, Status: status},
				Range: NewDateRange(day("2024-01-15"), day("2024-01-16")),
				Today: day("2024-01-15"),
			})
			if av.Available || av.Reason != "room not vacated" {
				t.Fatalf("%s: expected not vacated, got %+v", status, av)
			}
		}

		av := Resolve(ResolveInput{
			Room:  models.Room{Model: gorm.Model{ID: 7}, Status: models.RoomReserved},
			Range: NewDateRange(day("2024-01-15"), day("2024-01-16")),
			Today: day("2024-01-15"),
		})
		if !av.Available {
			t.Fatalf("reserved room without conflicts should be bookable today, got %+v", av)
		}
	})

	t.Run("stayover ignores the room status", func(t *testing.T) {
		av := Resolve(ResolveInput{
			Room:             room,
			Range:            NewDateRange(day("2024-01-15"), day("2024-01-17")),
			Today:            day("2024-01-15"),
			IgnoreRoomStatus: true,
		})
		if !av.Available {
			t.Fatalf("expected available, got %+v", av)
		}
	})
}

func TestAvailabilityServiceCheck(t *testing.T) {
	f := newFixture(t, day("2024-01-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")
	f.checkIn(t, room.ID, "2024-01-10", "2024-01-15", "100")

	av, err := f.availability.Check(ctx, room.ID, day("2024-01-12"), day("2024-01-13"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if av.Available {
		t.Fatalf("expected overlap to be unavailable")
	}

	av, err = f.availability.Check(ctx, room.ID, day("2024-01-15"), day("2024-01-18"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !av.Available {
		t.Fatalf("expected departure day to be available, got %+v", av)
	}

	if _, err := f.availability.Check(ctx, room.ID, day("2024-01-18"), day("2024-01-15")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for reversed range, got %v", err)
	}
	if _, err := f.availability.Check(ctx, 999, day("2024-01-15"), day("2024-01-18")); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}
}
