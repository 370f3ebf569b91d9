package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
	"hotel-frontdesk/queue"
)

// ReservationService holds rooms for future arrivals.
type ReservationService struct {
	DB *gorm.DB
	hooks
}

func NewReservationService(db *gorm.DB, opts ...Option) *ReservationService {
	return &ReservationService{DB: db, hooks: newHooks(opts)}
}

type ReservationGuestInput struct {
	Name        string
	Phone       string
	Email       string
	Nationality string
	Passport    string
	OTA         models.OTA
}

type ReserveInput struct {
	ReservationNo string
	RoomNo        string
	Guest         ReservationGuestInput
	Arrival       time.Time
	Departure     time.Time
	NumOfGuest    int
	RoomDetails   string
	OtherGuests   []string

	BookingFee decimal.Decimal
	SST        decimal.Decimal
	TourismTax decimal.Decimal
	Discount   decimal.Decimal
}

// ReservationTotal is the amount owed for a reservation: booking fee plus
// the flat SST and tourism tax amounts, less the discount.
func ReservationTotal(p models.ReservationPayment) decimal.Decimal {
	return p.BookingFee.Add(p.SST).Add(p.TourismTax).Sub(p.Discount)
}

func newReservationNo() string {
	return "RSV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func lockReservation(tx *gorm.DB, id uint) (models.Reservation, error) {
	var rs models.Reservation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rs, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Reservation{}, ErrReservationNotFound
		}
		return models.Reservation{}, persistence("lock reservation", err)
	}
	return rs, nil
}

func (in *ReserveInput) validate() error {
	in.RoomNo = strings.TrimSpace(in.RoomNo)
	in.Guest.Name = strings.TrimSpace(in.Guest.Name)
	in.Guest.Phone = strings.TrimSpace(in.Guest.Phone)
	in.ReservationNo = strings.TrimSpace(in.ReservationNo)

	switch {
	case in.RoomNo == "":
		return invalid("room number is required")
	case in.Guest.Name == "":
		return invalid("guest name is required")
	case in.Guest.Phone == "":
		return invalid("guest phone is required")
	case in.Arrival.IsZero() || in.Departure.IsZero():
		return invalid("arrival and departure are required")
	case !clock.DateOf(in.Departure).After(clock.DateOf(in.Arrival)):
		return invalid("departure must be after arrival")
	case in.NumOfGuest < 0:
		return invalid("number of guests must not be negative")
	}

	if in.Guest.OTA == "" {
		in.Guest.OTA = models.OTANone
	}
	if !in.Guest.OTA.Valid() {
		return invalid("unknown booking source %q", in.Guest.OTA)
	}
	if in.NumOfGuest == 0 {
		in.NumOfGuest = 1
	}

	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"booking fee", in.BookingFee},
		{"sst", in.SST},
		{"tourism tax", in.TourismTax},
		{"discount", in.Discount},
	} {
		if err := nonNegative(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// Reserve holds a room for a date range. An AVAILABLE room becomes RESERVED;
// a room in any other state keeps its status.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (rs models.Reservation, err error) {
	defer func() { observe("reserve", err) }()

	if err := in.validate(); err != nil {
		return models.Reservation{}, err
	}

	others := make([]string, 0, len(in.OtherGuests))
	for _, g := range in.OtherGuests {
		if g = strings.TrimSpace(g); g != "" {
			others = append(others, g)
		}
	}
	otherJSON, err := json.Marshal(others)
	if err != nil {
		return models.Reservation{}, invalid("other guests: %v", err)
	}

	payment := models.ReservationPayment{
		BookingFee: in.BookingFee,
		SST:        in.SST,
		TourismTax: in.TourismTax,
		Discount:   in.Discount,
	}
	payment.TotalAmount = ReservationTotal(payment)
	if payment.TotalAmount.IsNegative() {
		return models.Reservation{}, invalid("discount exceeds the reservation total")
	}

	rng := NewDateRange(in.Arrival, in.Departure)
	today := clock.Today(s.clock)
	var (
		room models.Room
		from models.RoomStatus
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found models.Room
		if err := tx.Where("room_no = ?", in.RoomNo).First(&found).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("room %s: %w", in.RoomNo, ErrRoomNotFound)
			}
			return persistence("load room", err)
		}
		var err error
		room, err = lockRoom(tx, found.ID)
		if err != nil {
			return err
		}
		from = room.Status

		if err := ensureAvailable(tx, room, rng, today, exclusion{}, false); err != nil {
			return err
		}

		reservationNo := in.ReservationNo
		if reservationNo == "" {
			reservationNo = newReservationNo()
		}
		rs = models.Reservation{
			ReservationNo: reservationNo,
			Guest: models.ReservationGuest{
				Name:        in.Guest.Name,
				Phone:       in.Guest.Phone,
				Email:       strings.TrimSpace(in.Guest.Email),
				Nationality: strings.TrimSpace(in.Guest.Nationality),
				Passport:    strings.TrimSpace(in.Guest.Passport),
				OTA:         in.Guest.OTA,
			},
			RoomID:      room.ID,
			RoomNo:      room.RoomNo,
			Arrival:     rng.Arrival,
			Departure:   rng.Departure,
			NumOfGuest:  in.NumOfGuest,
			RoomDetails: strings.TrimSpace(in.RoomDetails),
			OtherGuests: datatypes.JSON(otherJSON),
			Payment:     payment,
			ReservedAt:  s.clock.Now(),
			Status:      models.ReservationActive,
		}
		if err := tx.Create(&rs).Error; err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("reservation number %s already exists: %w", reservationNo, ErrConflict)
			}
			return persistence("create reservation", err)
		}

		if room.Status == models.RoomAvailable {
			return applyTransition(tx, &room, models.RoomReserved, nil)
		}
		return nil
	})
	if err != nil {
		return models.Reservation{}, passThrough("reserve", err)
	}

	log.Printf("reservation %s: room %s %s..%s for %s", rs.ReservationNo, room.RoomNo,
		rs.Arrival.Format("2006-01-02"), rs.Departure.Format("2006-01-02"), rs.Guest.Name)
	s.committed(ctx, queue.Event{
		Type:          queue.ReservationCreated,
		RoomID:        room.ID,
		RoomNo:        room.RoomNo,
		ReservationID: rs.ID,
		FromStatus:    string(from),
		ToStatus:      string(room.Status),
		GuestName:     rs.Guest.Name,
		Amount:        Money(rs.Payment.TotalAmount),
	})
	return rs, nil
}

// Cancel closes an active reservation. The room returns to AVAILABLE when it
// is RESERVED and no other active reservation holds it.
func (s *ReservationService) Cancel(ctx context.Context, id uint) (rs models.Reservation, err error) {
	defer func() { observe("cancel_reservation", err) }()

	var (
		room models.Room
		from models.RoomStatus
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		rs, err = lockReservation(tx, id)
		if err != nil {
			return err
		}
		if rs.Status != models.ReservationActive {
			return fmt.Errorf("reservation %s is %s: %w", rs.ReservationNo, rs.Status, ErrReservationClosed)
		}

		now := s.clock.Now()
		if err := tx.Model(&models.Reservation{}).Where("id = ?", rs.ID).Updates(map[string]interface{}{
			"status":       string(models.ReservationCancelled),
			"cancelled_at": now,
		}).Error; err != nil {
			return persistence("cancel reservation", err)
		}
		rs.Status = models.ReservationCancelled
		rs.CancelledAt = &now

		room, err = lockRoom(tx, rs.RoomID)
		if err != nil {
			return err
		}
		from = room.Status
		if room.Status != models.RoomReserved {
			return nil
		}

		var active int64
		if err := tx.Model(&models.Reservation{}).
			Where("room_id = ? AND status = ? AND id <> ?", room.ID, models.ReservationActive, rs.ID).
			Count(&active).Error; err != nil {
			return persistence("count reservations", err)
		}
		if active > 0 || room.ActiveStayID != nil {
			return nil
		}
		return applyTransition(tx, &room, models.RoomAvailable, nil)
	})
	if err != nil {
		return models.Reservation{}, passThrough("cancel reservation", err)
	}

	s.committed(ctx, queue.Event{
		Type:          queue.ReservationCancelled,
		RoomID:        room.ID,
		RoomNo:        room.RoomNo,
		ReservationID: rs.ID,
		FromStatus:    string(from),
		ToStatus:      string(room.Status),
		GuestName:     rs.Guest.Name,
	})
	return rs, nil
}

func (s *ReservationService) Get(ctx context.Context, id uint) (models.Reservation, error) {
	var rs models.Reservation
	if err := s.DB.WithContext(ctx).First(&rs, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Reservation{}, ErrReservationNotFound
		}
		return models.Reservation{}, persistence("load reservation", err)
	}
	return rs, nil
}

// List returns every reservation, newest first, optionally filtered by a
// room-number substring.
func (s *ReservationService) List(ctx context.Context, search string) ([]models.Reservation, error) {
	query := s.DB.WithContext(ctx).Model(&models.Reservation{})
	if term := strings.TrimSpace(search); term != "" {
		query = query.Where("room_no LIKE ?", "%"+term+"%")
	}

	out := []models.Reservation{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, persistence("list reservations", err)
	}
	return out, nil
}
