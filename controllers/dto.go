package controllers

import (
	"encoding/json"
	"time"

	"hotel-frontdesk/models"
	"hotel-frontdesk/services"
)

const dateLayout = "2006-01-02"

type stayGuestResponse struct {
	models.StayGuest
	DisplayStatus models.GuestStatus `json:"displayStatus"`
}

type stayPeriodResponse struct {
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
	Nights    int    `json:"nights"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`
}

type stayPaymentResponse struct {
	RoomPrice     string               `json:"roomPrice"`
	SST           string               `json:"sst"`
	TourismTax    string               `json:"tourismTax"`
	Discount      string               `json:"discount"`
	Subtotal      string               `json:"subtotal"`
	PaidAmount    string               `json:"paidAmount"`
	DueAmount     string               `json:"dueAmount"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Remarks       string               `json:"remarks,omitempty"`
}

type stayResponse struct {
	ID            uint                `json:"id"`
	RoomID        uint                `json:"roomId"`
	RoomNo        string              `json:"roomNo,omitempty"`
	ReservationID *uint               `json:"reservationId,omitempty"`
	Guest         stayGuestResponse   `json:"guest"`
	Stay          stayPeriodResponse  `json:"stay"`
	Payment       stayPaymentResponse `json:"payment"`
	Companions    json.RawMessage     `json:"companions,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func toStayResponse(s models.Stay, today time.Time) stayResponse {
	out := stayResponse{
		ID:            s.ID,
		RoomID:        s.RoomID,
		RoomNo:        s.Room.RoomNo,
		ReservationID: s.ReservationID,
		Guest: stayGuestResponse{
			StayGuest:     s.Guest,
			DisplayStatus: services.GuestDisplayStatus(s, today),
		},
		Stay: stayPeriodResponse{
			Arrival:   s.Stay.Arrival.Format(dateLayout),
			Departure: s.Stay.Departure.Format(dateLayout),
			Nights:    services.Nights(s.Stay.Arrival, s.Stay.Departure),
			Adults:    s.Stay.Adults,
			Children:  s.Stay.Children,
		},
		Payment: stayPaymentResponse{
			RoomPrice:     services.Money(s.Payment.RoomPrice),
			SST:           services.Money(s.Payment.SSTPercent),
			TourismTax:    services.Money(s.Payment.TourismTaxPerNight),
			Discount:      services.Money(s.Payment.Discount),
			Subtotal:      services.Money(s.Payment.Subtotal),
			PaidAmount:    services.Money(s.Payment.PaidAmount),
			DueAmount:     services.Money(s.Payment.DueAmount),
			PaymentMethod: s.Payment.Method,
			Remarks:       s.Payment.Remarks,
		},
		CreatedAt: s.CreatedAt,
	}
	if len(s.Companions) > 0 {
		out.Companions = json.RawMessage(s.Companions)
	}
	return out
}

type paymentResponse struct {
	ID            uint                 `json:"id"`
	GuestID       uint                 `json:"guestId"`
	PaymentDate   time.Time            `json:"paymentDate"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	PaidAmount    string               `json:"paidAmount"`
	GuestName     string               `json:"guestName"`
	RoomNo        string               `json:"roomNo"`
}

func toPaymentResponses(in []models.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(in))
	for _, p := range in {
		out = append(out, paymentResponse{
			ID:            p.ID,
			GuestID:       p.StayID,
			PaymentDate:   p.PaymentDate,
			PaymentMethod: p.Method,
			PaidAmount:    services.Money(p.Amount),
			GuestName:     p.GuestName,
			RoomNo:        p.RoomNo,
		})
	}
	return out
}

type reservationPaymentResponse struct {
	BookingFee  string `json:"bookingFee"`
	SST         string `json:"sst"`
	TourismTax  string `json:"tourismTax"`
	FnfDiscount string `json:"fnfDiscount"`
	TotalAmount string `json:"totalAmount"`
}

type reservationResponse struct {
	ID              uint                       `json:"id"`
	ReservationNo   string                     `json:"reservationNo"`
	Guest           models.ReservationGuest    `json:"guest"`
	RoomID          uint                       `json:"roomId"`
	RoomNo          string                     `json:"roomNo"`
	Arrival         string                     `json:"arrival"`
	Departure       string                     `json:"departure"`
	NumOfGuest      int                        `json:"numOfGuest"`
	RoomDetails     string                     `json:"roomDetails,omitempty"`
	OtherGuests     json.RawMessage            `json:"otherGuest,omitempty"`
	Payment         reservationPaymentResponse `json:"payment"`
	ReservationDate time.Time                  `json:"reservationDate"`
	Status          models.ReservationStatus   `json:"status"`
	CancelledAt     *time.Time                 `json:"cancelledAt,omitempty"`
}

func toReservationResponse(r models.Reservation) reservationResponse {
	out := reservationResponse{
		ID:            r.ID,
		ReservationNo: r.ReservationNo,
		Guest:         r.Guest,
		RoomID:        r.RoomID,
		RoomNo:        r.RoomNo,
		Arrival:       r.Arrival.Format(dateLayout),
		Departure:     r.Departure.Format(dateLayout),
		NumOfGuest:    r.NumOfGuest,
		RoomDetails:   r.RoomDetails,
		Payment: reservationPaymentResponse{
			BookingFee:  services.Money(r.Payment.BookingFee),
			SST:         services.Money(r.Payment.SST),
			TourismTax:  services.Money(r.Payment.TourismTax),
			FnfDiscount: services.Money(r.Payment.Discount),
			TotalAmount: services.Money(r.Payment.TotalAmount),
		},
		ReservationDate: r.ReservedAt,
		Status:          r.Status,
		CancelledAt:     r.CancelledAt,
	}
	if len(r.OtherGuests) > 0 {
		out.OtherGuests = json.RawMessage(r.OtherGuests)
	}
	return out
}

type hotelSettingsResponse struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Currency          string `json:"currency"`
	DefaultSST        string `json:"defaultSst"`
	DefaultTourismTax string `json:"defaultTourismTax"`
}

func toHotelSettingsResponse(h models.HotelSetting) hotelSettingsResponse {
	return hotelSettingsResponse{
		ID:                h.ID,
		Name:              h.Name,
		Address:           h.Address,
		Phone:             h.Phone,
		Email:             h.Email,
		Currency:          h.Currency,
		DefaultSST:        services.Money(h.DefaultSSTPercent),
		DefaultTourismTax: services.Money(h.DefaultTourismTaxPerNight),
	}
}
