package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
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

// StayPageSize is the number of stays per page of StayService.List.
const StayPageSize = 10

// StayService is the stay ledger: check-in, extension, checkout and payments.
type StayService struct {
	DB *gorm.DB
	hooks
}

func NewStayService(db *gorm.DB, opts ...Option) *StayService {
	return &StayService{DB: db, hooks: newHooks(opts)}
}

type GuestInput struct {
	Name     string
	Phone    string
	Email    string
	Country  string
	Passport string
	RefID    string
	OTA      models.OTA
}

type Companion struct {
	FullName string `json:"fullName"`
	Type     string `json:"type"`
}

type CheckInInput struct {
	RoomID        uint
	ReservationID *uint
	Guest         GuestInput
	Arrival       time.Time
	Departure     time.Time
	Adults        int
	Children      int
	Companions    []Companion

	RoomPrice decimal.Decimal
	// Nil takes the hotel default.
	SSTPercent         *decimal.Decimal
	TourismTaxPerNight *decimal.Decimal
	Discount           decimal.Decimal

	PaidAmount    decimal.Decimal
	PaymentMethod models.PaymentMethod
	Remarks       string
}

type StayoverInput struct {
	NewDeparture      time.Time
	AdditionalPayment decimal.Decimal
	PaymentMethod     models.PaymentMethod
	// Added to the stay's existing discount.
	ExtraDiscount decimal.Decimal
}

type PaymentInput struct {
	Amount decimal.Decimal
	Method models.PaymentMethod
}

type CheckoutResult struct {
	Room models.Room `json:"room"`
	Stay models.Stay `json:"stay"`
	// Outstanding balance at checkout; checkout does not require settlement.
	DueAmount decimal.Decimal `json:"dueAmount"`
}

type StayQuery struct {
	Page   int
	Search string
	Status models.GuestStatus
}

type StayPage struct {
	Stays      []models.Stay `json:"stays"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	HasMore    bool          `json:"hasMore"`
}

func nonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("%s must not be negative", field)
	}
	return nil
}

func normalizeCompanions(in []Companion) (datatypes.JSON, error) {
	out := make([]Companion, 0, len(in))
	for _, c := range in {
		name := strings.TrimSpace(c.FullName)
		if name == "" {
			continue
		}
		typ := strings.TrimSpace(c.Type)
		if typ == "" {
			typ = "Adult"
		}
		out = append(out, Companion{FullName: name, Type: typ})
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(bs), nil
}

func (in *CheckInInput) validate() error {
	in.Guest.Name = strings.TrimSpace(in.Guest.Name)
	in.Guest.Phone = strings.TrimSpace(in.Guest.Phone)
	in.Guest.Email = strings.TrimSpace(in.Guest.Email)

	if in.RoomID == 0 {
		return invalid("room is required")
	}
	if in.Guest.Name == "" {
		return invalid("guest name is required")
	}
	if in.Guest.Phone == "" {
		return invalid("guest phone is required")
	}
	if in.Guest.OTA == "" {
		in.Guest.OTA = models.OTANone
	}
	if !in.Guest.OTA.Valid() {
		return invalid("unknown booking source %q", in.Guest.OTA)
	}
	if in.Arrival.IsZero() || in.Departure.IsZero() {
		return invalid("arrival and departure are required")
	}
	if clock.DateOf(in.Departure).Before(clock.DateOf(in.Arrival)) {
		return invalid("departure must not be before arrival")
	}
	if in.Adults == 0 {
		in.Adults = 1
	}
	if in.Adults < 0 || in.Children < 0 {
		return invalid("guest counts must not be negative")
	}

	for field, d := range map[string]decimal.Decimal{
		"room price":  in.RoomPrice,
		"discount":    in.Discount,
		"paid amount": in.PaidAmount,
	} {
		if err := nonNegative(field, d); err != nil {
			return err
		}
	}
	if in.SSTPercent != nil {
		if err := nonNegative("sst", *in.SSTPercent); err != nil {
			return err
		}
	}
	if in.TourismTaxPerNight != nil {
		if err := nonNegative("tourism tax", *in.TourismTaxPerNight); err != nil {
			return err
		}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return invalid("unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

func loadSettings(tx *gorm.DB) (models.HotelSetting, error) {
	var setting models.HotelSetting
	if err := tx.Order("id ASC").First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.HotelSetting{}, nil
		}
		return models.HotelSetting{}, persistence("load hotel settings", err)
	}
	return setting, nil
}

func lockStay(tx *gorm.DB, id uint) (models.Stay, error) {
	var stay models.Stay
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stay, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Stay{}, ErrStayNotFound
		}
		return models.Stay{}, persistence("lock stay", err)
	}
	return stay, nil
}

// CheckIn creates a checked-in stay and occupies the room in one
// transaction. A linked reservation is closed as CHECKED_IN.
func (s *StayService) CheckIn(ctx context.Context, in CheckInInput) (stay models.Stay, err error) {
	defer func() { observe("check_in", err) }()

	if err := in.validate(); err != nil {
		return models.Stay{}, err
	}
	companions, err := normalizeCompanions(in.Companions)
	if err != nil {
		return models.Stay{}, invalid("companions: %v", err)
	}

	rng := NewDateRange(in.Arrival, in.Departure)
	today := clock.Today(s.clock)
	var (
		room models.Room
		from models.RoomStatus
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = lockRoom(tx, in.RoomID)
		if err != nil {
			return err
		}
		from = room.Status

		ex := exclusion{}
		var reservation models.Reservation
		if in.ReservationID != nil {
			reservation, err = lockReservation(tx, *in.ReservationID)
			if err != nil {
				return err
			}
			if reservation.Status != models.ReservationActive {
				return fmt.Errorf("reservation %s: %w", reservation.ReservationNo, ErrReservationClosed)
			}
			if reservation.RoomID != room.ID {
				return invalid("reservation %s is for room %s", reservation.ReservationNo, reservation.RoomNo)
			}
			ex.reservationID = reservation.ID
		}

		if !CanTransition(room.Status, models.RoomOccupied) {
			return fmt.Errorf("room %s is %s: %w", room.RoomNo, room.Status, ErrRoomUnavailable)
		}
		if err := ensureAvailable(tx, room, rng, today, ex, false); err != nil {
			return err
		}

		setting, err := loadSettings(tx)
		if err != nil {
			return err
		}
		rates := Rates{
			RoomPrice:          in.RoomPrice,
			SSTPercent:         setting.DefaultSSTPercent,
			TourismTaxPerNight: setting.DefaultTourismTaxPerNight,
			Discount:           in.Discount,
		}
		if in.SSTPercent != nil {
			rates.SSTPercent = *in.SSTPercent
		}
		if in.TourismTaxPerNight != nil {
			rates.TourismTaxPerNight = *in.TourismTaxPerNight
		}
		charges := Calculate(rng.Arrival, rng.Departure, rates)
		if charges.Subtotal.IsNegative() {
			return invalid("discount exceeds the stay's charges")
		}

		refID := strings.TrimSpace(in.Guest.RefID)
		if refID == "" {
			refID = uuid.NewString()
		}

		stay = models.Stay{
			Guest: models.StayGuest{
				Name:     in.Guest.Name,
				Phone:    in.Guest.Phone,
				Email:    in.Guest.Email,
				Country:  strings.TrimSpace(in.Guest.Country),
				Passport: strings.TrimSpace(in.Guest.Passport),
				RefID:    refID,
				OTA:      in.Guest.OTA,
				Status:   models.GuestCheckedIn,
			},
			Stay: models.StayPeriod{
				Arrival:   rng.Arrival,
				Departure: rng.Departure,
				Adults:    in.Adults,
				Children:  in.Children,
			},
			Payment: models.StayPayment{
				RoomPrice:          rates.RoomPrice,
				SSTPercent:         rates.SSTPercent,
				TourismTaxPerNight: rates.TourismTaxPerNight,
				Discount:           rates.Discount,
				Subtotal:           charges.Subtotal,
				PaidAmount:         in.PaidAmount,
				DueAmount:          Due(charges.Subtotal, in.PaidAmount),
				Method:             in.PaymentMethod,
				Remarks:            strings.TrimSpace(in.Remarks),
			},
			Companions: companions,
			RoomID:     room.ID,
		}
		if in.ReservationID != nil {
			id := reservation.ID
			stay.ReservationID = &id
		}
		if err := tx.Create(&stay).Error; err != nil {
			return persistence("create stay", err)
		}

		if in.PaidAmount.IsPositive() {
			if err := appendPayment(tx, stay, room.RoomNo, in.PaidAmount, in.PaymentMethod, s.clock.Now()); err != nil {
				return err
			}
		}

		if in.ReservationID != nil {
			if err := tx.Model(&models.Reservation{}).Where("id = ?", reservation.ID).
				Update("status", string(models.ReservationCheckedIn)).Error; err != nil {
				return persistence("close reservation", err)
			}
		}

		stayID := stay.ID
		return applyTransition(tx, &room, models.RoomOccupied, &stayID)
	})
	if err != nil {
		return models.Stay{}, passThrough("check in", err)
	}

	stay.Room = room
	log.Printf("check-in: %s into room %s, %d night(s), subtotal %s",
		stay.Guest.Name, room.RoomNo, Nights(stay.Stay.Arrival, stay.Stay.Departure), Money(stay.Payment.Subtotal))

	events := []queue.Event{
		{
			Type:       queue.GuestCheckedIn,
			RoomID:     room.ID,
			RoomNo:     room.RoomNo,
			StayID:     stay.ID,
			FromStatus: string(from),
			ToStatus:   string(room.Status),
			GuestName:  stay.Guest.Name,
			Amount:     Money(stay.Payment.Subtotal),
		},
	}
	if in.PaidAmount.IsPositive() {
		events = append(events, paymentEvent(stay, room, in.PaidAmount))
	}
	s.committed(ctx, events...)
	return stay, nil
}

func appendPayment(tx *gorm.DB, stay models.Stay, roomNo string, amount decimal.Decimal, method models.PaymentMethod, at time.Time) error {
	p := models.Payment{
		StayID:      stay.ID,
		PaymentDate: at,
		Method:      method,
		Amount:      amount,
		GuestName:   stay.Guest.Name,
		RoomNo:      roomNo,
	}
	if err := tx.Create(&p).Error; err != nil {
		return persistence("record payment", err)
	}
	return nil
}

func paymentEvent(stay models.Stay, room models.Room, amount decimal.Decimal) queue.Event {
	return queue.Event{
		Type:      queue.PaymentRecorded,
		RoomID:    room.ID,
		RoomNo:    room.RoomNo,
		StayID:    stay.ID,
		GuestName: stay.Guest.Name,
		Amount:    Money(amount),
	}
}

// Stayover extends a checked-in stay. The extra nights are checked against
// other bookings of the room, the subtotal is recomputed over the whole stay
// and any additional payment is recorded. A DUE_OUT room whose guest now
// departs today or later is OCCUPIED again.
func (s *StayService) Stayover(ctx context.Context, stayID uint, in StayoverInput) (stay models.Stay, err error) {
	defer func() { observe("stayover", err) }()

	if in.NewDeparture.IsZero() {
		return models.Stay{}, invalid("new departure is required")
	}
	if err := nonNegative("additional payment", in.AdditionalPayment); err != nil {
		return models.Stay{}, err
	}
	if err := nonNegative("discount", in.ExtraDiscount); err != nil {
		return models.Stay{}, err
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return models.Stay{}, invalid("unknown payment method %q", in.PaymentMethod)
	}

	newDeparture := clock.DateOf(in.NewDeparture)
	today := clock.Today(s.clock)
	var (
		room models.Room
		from models.RoomStatus
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stay, err = lockStay(tx, stayID)
		if err != nil {
			return err
		}
		if stay.Guest.Status != models.GuestCheckedIn {
			return fmt.Errorf("stay %d is %s: %w", stay.ID, stay.Guest.Status, ErrNoActiveStay)
		}
		oldDeparture := clock.DateOf(stay.Stay.Departure)
		if !newDeparture.After(oldDeparture) {
			return invalid("new departure must be after %s", oldDeparture.Format("2006-01-02"))
		}

		room, err = lockRoom(tx, stay.RoomID)
		if err != nil {
			return err
		}
		from = room.Status
		extension := DateRange{Arrival: oldDeparture, Departure: newDeparture}
		if err := ensureAvailable(tx, room, extension, today, exclusion{stayID: stay.ID}, true); err != nil {
			return err
		}

		discount := stay.Payment.Discount.Add(in.ExtraDiscount)
		charges := Calculate(stay.Stay.Arrival, newDeparture, Rates{
			RoomPrice:          stay.Payment.RoomPrice,
			SSTPercent:         stay.Payment.SSTPercent,
			TourismTaxPerNight: stay.Payment.TourismTaxPerNight,
			Discount:           discount,
		})
		if charges.Subtotal.IsNegative() {
			return invalid("discount exceeds the stay's charges")
		}
		paid := stay.Payment.PaidAmount.Add(in.AdditionalPayment)

		stay.Stay.Departure = newDeparture
		stay.Payment.Discount = discount
		stay.Payment.Subtotal = charges.Subtotal
		stay.Payment.PaidAmount = paid
		stay.Payment.DueAmount = Due(charges.Subtotal, paid)

		if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).Updates(map[string]interface{}{
			"departure":           newDeparture,
			"payment_discount":    discount,
			"payment_subtotal":    stay.Payment.Subtotal,
			"payment_paid_amount": paid,
			"payment_due_amount":  stay.Payment.DueAmount,
		}).Error; err != nil {
			return persistence("extend stay", err)
		}

		if room.Status == models.RoomDueOut && !newDeparture.Before(today) {
			if err := reoccupy(tx, &room); err != nil {
				return err
			}
		}

		if in.AdditionalPayment.IsPositive() {
			return appendPayment(tx, stay, room.RoomNo, in.AdditionalPayment, in.PaymentMethod, s.clock.Now())
		}
		return nil
	})
	if err != nil {
		return models.Stay{}, passThrough("stayover", err)
	}

	stay.Room = room
	events := []queue.Event{{
		Type:      queue.StayExtended,
		RoomID:    room.ID,
		RoomNo:    room.RoomNo,
		StayID:    stay.ID,
		GuestName: stay.Guest.Name,
		Amount:    Money(stay.Payment.Subtotal),
	}}
	if from != room.Status {
		events = append(events, queue.Event{
			Type:       queue.RoomStatusChanged,
			RoomID:     room.ID,
			RoomNo:     room.RoomNo,
			StayID:     stay.ID,
			FromStatus: string(from),
			ToStatus:   string(room.Status),
		})
	}
	if in.AdditionalPayment.IsPositive() {
		events = append(events, paymentEvent(stay, room, in.AdditionalPayment))
	}
	s.committed(ctx, events...)
	return stay, nil
}

// CheckOut closes the room's active stay with CHECKED_OUT or CANCEL and
// frees the room. An outstanding balance does not block checkout.
func (s *StayService) CheckOut(ctx context.Context, roomID uint, status models.GuestStatus) (res CheckoutResult, err error) {
	defer func() { observe("check_out", err) }()

	if status == "" {
		status = models.GuestCheckedOut
	}
	if status != models.GuestCheckedOut && status != models.GuestCancel {
		return CheckoutResult{}, invalid("checkout status must be %s or %s", models.GuestCheckedOut, models.GuestCancel)
	}

	var from models.RoomStatus
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}
		if room.ActiveStayID == nil {
			return fmt.Errorf("room %s: %w", room.RoomNo, ErrNoActiveStay)
		}
		from = room.Status

		stay, err := lockStay(tx, *room.ActiveStayID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).Updates(map[string]interface{}{
			"guest_status":         string(status),
			"guest_checked_out_at": now,
		}).Error; err != nil {
			return persistence("close stay", err)
		}
		stay.Guest.Status = status
		stay.Guest.CheckedOutAt = &now

		if err := applyTransition(tx, &room, models.RoomAvailable, nil); err != nil {
			return err
		}
		res = CheckoutResult{Room: room, Stay: stay, DueAmount: stay.Payment.DueAmount}
		return nil
	})
	if err != nil {
		return CheckoutResult{}, passThrough("check out", err)
	}

	if res.DueAmount.IsPositive() {
		log.Printf("[WARN] room %s checked out with %s outstanding", res.Room.RoomNo, Money(res.DueAmount))
	}
	s.committed(ctx, queue.Event{
		Type:       queue.GuestCheckedOut,
		RoomID:     res.Room.ID,
		RoomNo:     res.Room.RoomNo,
		StayID:     res.Stay.ID,
		FromStatus: string(from),
		ToStatus:   string(res.Room.Status),
		GuestName:  res.Stay.Guest.Name,
		Amount:     Money(res.DueAmount),
	})
	return res, nil
}

// RecordPayment adds a payment to a stay and appends it to the payment trail
// in the same transaction.
func (s *StayService) RecordPayment(ctx context.Context, stayID uint, in PaymentInput) (stay models.Stay, err error) {
	defer func() { observe("record_payment", err) }()

	if !in.Amount.IsPositive() {
		return models.Stay{}, invalid("payment amount must be greater than zero")
	}
	if in.Method == "" {
		in.Method = models.PaymentCash
	}
	if !in.Method.Valid() {
		return models.Stay{}, invalid("unknown payment method %q", in.Method)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stay, err = lockStay(tx, stayID)
		if err != nil {
			return err
		}
		if err := tx.First(&stay.Room, stay.RoomID).Error; err != nil {
			return persistence("load room", err)
		}

		stay.Payment.PaidAmount = stay.Payment.PaidAmount.Add(in.Amount)
		stay.Payment.DueAmount = Due(stay.Payment.Subtotal, stay.Payment.PaidAmount)
		stay.Payment.Method = in.Method

		if err := tx.Model(&models.Stay{}).Where("id = ?", stay.ID).Updates(map[string]interface{}{
			"payment_paid_amount": stay.Payment.PaidAmount,
			"payment_due_amount":  stay.Payment.DueAmount,
			"payment_method":      string(in.Method),
		}).Error; err != nil {
			return persistence("update stay payment", err)
		}
		return appendPayment(tx, stay, stay.Room.RoomNo, in.Amount, in.Method, s.clock.Now())
	})
	if err != nil {
		return models.Stay{}, passThrough("record payment", err)
	}

	s.committed(ctx, paymentEvent(stay, stay.Room, in.Amount))
	return stay, nil
}

func (s *StayService) Get(ctx context.Context, id uint) (models.Stay, error) {
	var stay models.Stay
	if err := s.DB.WithContext(ctx).Preload("Room").First(&stay, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Stay{}, ErrStayNotFound
		}
		return models.Stay{}, persistence("load stay", err)
	}
	return stay, nil
}

// List pages through stays, newest first, matching the search against the
// guest's name, email and phone.
func (s *StayService) List(ctx context.Context, q StayQuery) (StayPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Status != "" {
		switch q.Status {
		case models.GuestCheckedIn, models.GuestCheckedOut, models.GuestReserved, models.GuestCancel:
		default:
			return StayPage{}, invalid("unknown guest status %q", q.Status)
		}
	}

	query := s.DB.WithContext(ctx).Model(&models.Stay{})
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where("LOWER(guest_name) LIKE ? OR LOWER(guest_email) LIKE ? OR LOWER(guest_phone) LIKE ?", like, like, like)
	}
	if q.Status != "" {
		query = query.Where("guest_status = ?", string(q.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return StayPage{}, persistence("count stays", err)
	}

	stays := []models.Stay{}
	if err := query.Preload("Room").
		Order("created_at DESC").Order("id DESC").
		Offset((q.Page - 1) * StayPageSize).Limit(StayPageSize).
		Find(&stays).Error; err != nil {
		return StayPage{}, persistence("list stays", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(StayPageSize)))
	return StayPage{
		Stays:      stays,
		Total:      total,
		Page:       q.Page,
		TotalPages: totalPages,
		HasMore:    q.Page < totalPages,
	}, nil
}

func (s *StayService) Payments(ctx context.Context, stayID uint) ([]models.Payment, error) {
	db := s.DB.WithContext(ctx)

	var n int64
	if err := db.Model(&models.Stay{}).Where("id = ?", stayID).Count(&n).Error; err != nil {
		return nil, persistence("load stay", err)
	}
	if n == 0 {
		return nil, ErrStayNotFound
	}

	payments := []models.Payment{}
	if err := db.Where("stay_id = ?", stayID).Order("payment_date ASC").Order("id ASC").
		Find(&payments).Error; err != nil {
		return nil, persistence("list payments", err)
	}
	return payments, nil
}
