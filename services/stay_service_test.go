package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"hotel-frontdesk/models"
	"hotel-frontdesk/queue"
)

func TestFrontDeskRoundTrip(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()

	if _, err := NewRoomTypeService(f.db).Create(ctx, models.RoomType{TypeName: "Single", MaxGuests: 1}); err != nil {
		t.Fatalf("create room type: %v", err)
	}
	room, err := f.rooms.CreateRoom(ctx, CreateRoomInput{RoomNo: "101", RoomType: "Single", Floor: "1"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	in := checkInInput(room.ID, "2024-03-01", "2024-03-03", "150")
	in.PaidAmount = dec("100")
	stay, err := f.stays.CheckIn(ctx, in)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	assertAmount(t, "subtotal", "300", stay.Payment.Subtotal)
	assertAmount(t, "due", "200", stay.Payment.DueAmount)
	if got := f.reloadRoom(t, room.ID); got.Status != models.RoomOccupied || got.ActiveStayID == nil || *got.ActiveStayID != stay.ID {
		t.Fatalf("expected room occupied by stay %d, got %+v", stay.ID, got)
	}

	stay, err = f.stays.RecordPayment(ctx, stay.ID, PaymentInput{Amount: dec("100"), Method: models.PaymentCard})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	assertAmount(t, "paid", "200", stay.Payment.PaidAmount)
	assertAmount(t, "due", "100", stay.Payment.DueAmount)

	res, err := f.stays.CheckOut(ctx, room.ID, "")
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if res.Room.Status != models.RoomAvailable || res.Room.ActiveStayID != nil {
		t.Fatalf("expected vacant room, got %+v", res.Room)
	}
	if res.Stay.Guest.Status != models.GuestCheckedOut {
		t.Fatalf("expected CHECKED_OUT, got %s", res.Stay.Guest.Status)
	}
	assertAmount(t, "due at checkout", "100", res.DueAmount)

	payments, err := f.stays.Payments(ctx, stay.ID)
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payment entries, got %d", len(payments))
	}
	assertAmount(t, "first payment", "100", payments[0].Amount)
	if payments[1].Method != models.PaymentCard || payments[1].RoomNo != "101" {
		t.Fatalf("unexpected payment entry %+v", payments[1])
	}

	want := []string{
		queue.RoomCreated,
		queue.GuestCheckedIn, queue.PaymentRecorded,
		queue.PaymentRecorded,
		queue.GuestCheckedOut,
	}
	got := f.events.types()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
}

func TestCheckInValidation(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	room := f.createRoom(t, "101")
	negative := dec("-1")

	cases := []struct {
		name   string
		mutate func(*CheckInInput)
	}{
		{"missing guest name", func(in *CheckInInput) { in.Guest.Name = "  " }},
		{"missing phone", func(in *CheckInInput) { in.Guest.Phone = "" }},
		{"departure before arrival", func(in *CheckInInput) { in.Departure = day("2024-02-28") }},
		{"negative price", func(in *CheckInInput) { in.RoomPrice = dec("-10") }},
		{"negative sst", func(in *CheckInInput) { in.SSTPercent = &negative }},
		{"unknown payment method", func(in *CheckInInput) { in.PaymentMethod = "Bitcoin" }},
		{"unknown booking source", func(in *CheckInInput) { in.Guest.OTA = "Airbnb" }},
		{"discount above charges", func(in *CheckInInput) { in.Discount = dec("1000") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := checkInInput(room.ID, "2024-03-01", "2024-03-03", "150")
			tc.mutate(&in)
			if _, err := f.stays.CheckIn(context.Background(), in); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if got := f.reloadRoom(t, room.ID); got.Status != models.RoomAvailable {
		t.Fatalf("failed check-ins must leave the room alone, got %s", got.Status)
	}
}

func TestCheckInUsesHotelDefaults(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	room := f.createRoom(t, "101")

	in := checkInInput(room.ID, "2024-03-01", "2024-03-02", "100")
	in.SSTPercent = nil
	in.TourismTaxPerNight = nil
	stay, err := f.stays.CheckIn(context.Background(), in)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	assertAmount(t, "sst rate", "8", stay.Payment.SSTPercent)
	assertAmount(t, "tourism tax", "10", stay.Payment.TourismTaxPerNight)
	assertAmount(t, "subtotal", "118", stay.Payment.Subtotal)
	if stay.Guest.OTA != models.OTANone || stay.Guest.RefID == "" {
		t.Fatalf("expected defaulted guest fields, got %+v", stay.Guest)
	}
}

func TestCheckInRejectsOccupiedRoom(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")
	f.checkIn(t, room.ID, "2024-03-01", "2024-03-03", "150")

	_, err := f.stays.CheckIn(ctx, checkInInput(room.ID, "2024-03-01", "2024-03-02", "150"))
	if !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("expected room unavailable, got %v", err)
	}
	if _, err := f.stays.CheckIn(ctx, checkInInput(999, "2024-03-01", "2024-03-02", "150")); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}
}

// The test database has a single connection, so these check-ins run one
// transaction at a time: this covers the availability re-check under the
// room lock, not a true race on the row. The version guard that catches a
// real race is covered by TestApplyTransitionDetectsStaleVersion and
// TestConcurrentWritesFromStaleReads.
func TestConcurrentCheckInSameRoom(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	room := f.createRoom(t, "101")

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := checkInInput(room.ID, "2024-03-01", "2024-03-02", "100")
			in.Guest.Name = fmt.Sprintf("Guest %d", i)
			_, err := f.stays.CheckIn(context.Background(), in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 || conflicts != workers-1 {
		t.Fatalf("expected exactly one check-in, got %d ok and %d conflicts", succeeded, conflicts)
	}

	var n int64
	if err := f.db.Model(&models.Stay{}).Where("room_id = ?", room.ID).Count(&n).Error; err != nil {
		t.Fatalf("count stays: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one stay row, got %d", n)
	}
}

func TestCheckInFromReservation(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")
	other := f.createRoom(t, "102")

	rs, err := f.reservations.Reserve(ctx, reserveInput("101", "2024-03-01", "2024-03-03"))
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	t.Run("walk-in over the reservation is refused", func(t *testing.T) {
		_, err := f.stays.CheckIn(ctx, checkInInput(room.ID, "2024-03-01", "2024-03-02", "150"))
		if !errors.Is(err, ErrRoomUnavailable) {
			t.Fatalf("expected room unavailable, got %v", err)
		}
	})

	t.Run("reservation for another room", func(t *testing.T) {
		in := checkInInput(other.ID, "2024-03-01", "2024-03-03", "150")
		in.ReservationID = &rs.ID
		if _, err := f.stays.CheckIn(ctx, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("reserved guest checks in", func(t *testing.T) {
		in := checkInInput(room.ID, "2024-03-01", "2024-03-03", "150")
		in.ReservationID = &rs.ID
		stay, err := f.stays.CheckIn(ctx, in)
		if err != nil {
			t.Fatalf("check in: %v", err)
		}
		if stay.ReservationID == nil || *stay.ReservationID != rs.ID {
			t.Fatalf("stay should link reservation %d", rs.ID)
		}
		if got := f.reloadRoom(t, room.ID); got.Status != models.RoomOccupied {
			t.Fatalf("expected OCCUPIED, got %s", got.Status)
		}
		closed, err := f.reservations.Get(ctx, rs.ID)
		if err != nil {
			t.Fatalf("get reservation: %v", err)
		}
		if closed.Status != models.ReservationCheckedIn {
			t.Fatalf("expected reservation CHECKED_IN, got %s", closed.Status)
		}
	})

	t.Run("reservation cannot be used twice", func(t *testing.T) {
		in := checkInInput(other.ID, "2024-03-01", "2024-03-03", "150")
		in.ReservationID = &rs.ID
		if _, err := f.stays.CheckIn(ctx, in); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestStayover(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")

	in := checkInInput(room.ID, "2024-03-01", "2024-03-03", "150")
	in.PaidAmount = dec("100")
	stay, err := f.stays.CheckIn(ctx, in)
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	stay, err = f.stays.Stayover(ctx, stay.ID, StayoverInput{
		NewDeparture:      day("2024-03-05"),
		AdditionalPayment: dec("200"),
	})
	if err != nil {
		t.Fatalf("stayover: %v", err)
	}
	if !stay.Stay.Departure.Equal(day("2024-03-05")) {
		t.Fatalf("expected departure 2024-03-05, got %s", stay.Stay.Departure)
	}
	assertAmount(t, "subtotal", "600", stay.Payment.Subtotal)
	assertAmount(t, "paid", "300", stay.Payment.PaidAmount)
	assertAmount(t, "due", "300", stay.Payment.DueAmount)

	payments, err := f.stays.Payments(ctx, stay.ID)
	if err != nil {
		t.Fatalf("payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}

	if _, err := f.reservations.Reserve(ctx, reserveInput("101", "2024-03-06", "2024-03-08")); err != nil {
		t.Fatalf("reserve after the stay: %v", err)
	}
	if got := f.reloadRoom(t, room.ID); got.Status != models.RoomOccupied {
		t.Fatalf("a future reservation must not change an occupied room, got %s", got.Status)
	}

	_, err = f.stays.Stayover(ctx, stay.ID, StayoverInput{NewDeparture: day("2024-03-07")})
	if !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("extension over a reservation should be refused, got %v", err)
	}

	_, err = f.stays.Stayover(ctx, stay.ID, StayoverInput{NewDeparture: day("2024-03-05")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("new departure must move forward, got %v", err)
	}

	stay, err = f.stays.Stayover(ctx, stay.ID, StayoverInput{
		NewDeparture:  day("2024-03-06"),
		ExtraDiscount: dec("50"),
	})
	if err != nil {
		t.Fatalf("stayover up to the reservation: %v", err)
	}
	assertAmount(t, "subtotal", "700", stay.Payment.Subtotal)
	assertAmount(t, "discount", "50", stay.Payment.Discount)

	if _, err := f.stays.CheckOut(ctx, room.ID, models.GuestCheckedOut); err != nil {
		t.Fatalf("check out: %v", err)
	}
	_, err = f.stays.Stayover(ctx, stay.ID, StayoverInput{NewDeparture: day("2024-03-09")})
	if !errors.Is(err, ErrNoActiveStay) {
		t.Fatalf("closed stays cannot be extended, got %v", err)
	}
}

func TestStayoverFromDueOutRoom(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")
	stay := f.checkIn(t, room.ID, "2024-03-01", "2024-03-03", "100")

	later := f.at(day("2024-03-04"))
	if res, err := later.rooms.MarkDueOut(ctx); err != nil || res.Updated != 1 {
		t.Fatalf("due out sweep: %+v %v", res, err)
	}

	extended, err := later.stays.Stayover(ctx, stay.ID, StayoverInput{NewDeparture: day("2024-03-08")})
	if err != nil {
		t.Fatalf("stayover: %v", err)
	}
	if extended.Room.Status != models.RoomOccupied {
		t.Fatalf("extended guest should occupy the room again, got %s", extended.Room.Status)
	}
	got := f.reloadRoom(t, room.ID)
	if got.Status != models.RoomOccupied || got.ActiveStayID == nil || *got.ActiveStayID != stay.ID {
		t.Fatalf("expected OCCUPIED by the same stay, got %+v", got)
	}
	evs := f.events.types()
	if evs[len(evs)-1] != queue.RoomStatusChanged {
		t.Fatalf("expected a room.status_changed event, got %v", evs)
	}

	if _, err := later.rooms.Clean(ctx, room.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("housekeeping must not clear an in-house guest, got %v", err)
	}
	kept, err := f.stays.Get(ctx, stay.ID)
	if err != nil {
		t.Fatalf("get stay: %v", err)
	}
	if kept.Guest.Status != models.GuestCheckedIn {
		t.Fatalf("guest should still be checked in, got %s", kept.Guest.Status)
	}

	if res, err := later.rooms.MarkDueOut(ctx); err != nil || res.Updated != 0 {
		t.Fatalf("extended stay is not due out yet: %+v %v", res, err)
	}

	after := f.at(day("2024-03-09"))
	if res, err := after.rooms.MarkDueOut(ctx); err != nil || res.Updated != 1 {
		t.Fatalf("due out after the new departure: %+v %v", res, err)
	}
	if _, err := after.rooms.Clean(ctx, room.ID); err != nil {
		t.Fatalf("clean after departure: %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")
	stay := f.checkIn(t, room.ID, "2024-03-01", "2024-03-02", "100")

	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-5")} {
		if _, err := f.stays.RecordPayment(ctx, stay.ID, PaymentInput{Amount: amount}); !errors.Is(err, ErrValidation) {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
	}
	if _, err := f.stays.RecordPayment(ctx, stay.ID, PaymentInput{Amount: dec("10"), Method: "IOU"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for method, got %v", err)
	}
	if _, err := f.stays.RecordPayment(ctx, 999, PaymentInput{Amount: dec("10")}); !errors.Is(err, ErrStayNotFound) {
		t.Fatalf("expected stay not found, got %v", err)
	}

	got, err := f.stays.RecordPayment(ctx, stay.ID, PaymentInput{Amount: dec("150")})
	if err != nil {
		t.Fatalf("overpay: %v", err)
	}
	assertAmount(t, "paid", "150", got.Payment.PaidAmount)
	assertAmount(t, "due", "0", got.Payment.DueAmount)
	if got.Payment.Method != models.PaymentCash {
		t.Fatalf("expected cash default, got %s", got.Payment.Method)
	}
}

func TestCheckOut(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()
	room := f.createRoom(t, "101")

	if _, err := f.stays.CheckOut(ctx, room.ID, ""); !errors.Is(err, ErrNoActiveStay) {
		t.Fatalf("expected no active stay, got %v", err)
	}
	if _, err := f.stays.CheckOut(ctx, room.ID, models.GuestReserved); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	f.checkIn(t, room.ID, "2024-03-01", "2024-03-02", "100")
	res, err := f.stays.CheckOut(ctx, room.ID, models.GuestCancel)
	if err != nil {
		t.Fatalf("cancel stay: %v", err)
	}
	if res.Stay.Guest.Status != models.GuestCancel || res.Room.Status != models.RoomAvailable {
		t.Fatalf("unexpected checkout result %+v", res)
	}

	// The room is free for the same dates again.
	f.checkIn(t, room.ID, "2024-03-01", "2024-03-02", "100")
}

func TestListStays(t *testing.T) {
	f := newFixture(t, day("2024-03-01"))
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		room := f.createRoom(t, fmt.Sprintf("P%02d", i))
		in := checkInInput(room.ID, "2024-03-01", "2024-03-02", "100")
		if i == 12 {
			in.Guest.Name = "Nur Farhana"
			in.Guest.Email = "farhana@example.com"
		}
		if _, err := f.stays.CheckIn(ctx, in); err != nil {
			t.Fatalf("check in %d: %v", i, err)
		}
		if i == 12 {
			if _, err := f.stays.CheckOut(ctx, room.ID, ""); err != nil {
				t.Fatalf("check out: %v", err)
			}
		}
	}

	page, err := f.stays.List(ctx, StayQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 12 || len(page.Stays) != StayPageSize || page.TotalPages != 2 || !page.HasMore {
		t.Fatalf("unexpected first page %+v", page)
	}
	if page.Stays[0].Guest.Name != "Nur Farhana" || page.Stays[0].Room.RoomNo != "P12" {
		t.Fatalf("expected newest stay first with its room, got %+v", page.Stays[0])
	}

	page, err = f.stays.List(ctx, StayQuery{Page: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Stays) != 2 || page.HasMore {
		t.Fatalf("unexpected second page %+v", page)
	}

	page, err = f.stays.List(ctx, StayQuery{Search: "FARHANA"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected one match, got %d", page.Total)
	}

	page, err = f.stays.List(ctx, StayQuery{Status: models.GuestCheckedIn})
	if err != nil {
		t.Fatalf("status filter: %v", err)
	}
	if page.Total != 11 {
		t.Fatalf("expected 11 checked-in stays, got %d", page.Total)
	}

	if _, err := f.stays.List(ctx, StayQuery{Status: "LOST"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
