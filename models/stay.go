package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type GuestStatus string

const (
	GuestCheckedIn  GuestStatus = "CHECKED_IN"
	GuestCheckedOut GuestStatus = "CHECKED_OUT"
	GuestReserved   GuestStatus = "RESERVED"
	GuestCancel     GuestStatus = "CANCEL"

	// GuestDueOut is a display-only status and is never persisted.
	GuestDueOut GuestStatus = "DUE_OUT"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentCard         PaymentMethod = "Credit/Debit Card"
	PaymentBankTransfer PaymentMethod = "QR/Bank Transfer"
	PaymentCityLedger   PaymentMethod = "City Ledger"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentCityLedger:
		return true
	}
	return false
}

// OTA is the booking source attribution of a guest.
type OTA string

const (
	OTANone         OTA = "N/A"
	OTABookingCom   OTA = "Booking.com"
	OTAWalkingGuest OTA = "Walking Guest"
	OTAAgoda        OTA = "Agoda"
	OTATraveloka    OTA = "Traveloka"
	OTAExpedia      OTA = "Expedia"
	OTATicket       OTA = "Ticket"
	OTATripCom      OTA = "Trip.com"
)

func (o OTA) Valid() bool {
	switch o {
	case OTANone, OTABookingCom, OTAWalkingGuest, OTAAgoda, OTATraveloka, OTAExpedia, OTATicket, OTATripCom:
		return true
	}
	return false
}

type StayGuest struct {
	Name         string      `json:"name" gorm:"size:255;not null;index"`
	Phone        string      `json:"phone" gorm:"size:64;not null"`
	Email        string      `json:"email" gorm:"size:255"`
	Country      string      `json:"country" gorm:"size:64"`
	Passport     string      `json:"passport" gorm:"size:64"`
	RefID        string      `json:"refId" gorm:"size:64;index"`
	OTA          OTA         `json:"otas" gorm:"size:32"`
	Status       GuestStatus `json:"status" gorm:"size:16;index"`
	CheckedOutAt *time.Time  `json:"checkedOutAt,omitempty"`
}

type StayPeriod struct {
	Arrival   time.Time `json:"arrival" gorm:"column:arrival;not null;index"`
	Departure time.Time `json:"departure" gorm:"column:departure;not null;index"`
	Adults    int       `json:"adults" gorm:"column:adults;not null;default:1"`
	Children  int       `json:"children" gorm:"column:children;not null;default:0"`
}

// StayPayment holds the running charge figures of a stay. Amounts are kept at
// full precision and rounded only when rendered.
type StayPayment struct {
	RoomPrice          decimal.Decimal `json:"roomPrice" gorm:"type:decimal(14,4);not null"`
	SSTPercent         decimal.Decimal `json:"sst" gorm:"type:decimal(7,4);not null;default:0"`
	TourismTaxPerNight decimal.Decimal `json:"tourismTax" gorm:"type:decimal(14,4);not null;default:0"`
	Discount           decimal.Decimal `json:"discount" gorm:"type:decimal(14,4);not null;default:0"`
	Subtotal           decimal.Decimal `json:"subtotal" gorm:"type:decimal(14,4);not null"`
	PaidAmount         decimal.Decimal `json:"paidAmount" gorm:"type:decimal(14,4);not null"`
	DueAmount          decimal.Decimal `json:"dueAmount" gorm:"type:decimal(14,4);not null"`
	Method             PaymentMethod   `json:"paymentMethod" gorm:"size:32"`
	Remarks            string          `json:"remarks" gorm:"type:text"`
}

// Stay is a guest occupancy of a room. Stays are never deleted.
type Stay struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Guest   StayGuest   `json:"guest" gorm:"embedded;embeddedPrefix:guest_"`
	Stay    StayPeriod  `json:"stay" gorm:"embedded"`
	Payment StayPayment `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`

	Companions datatypes.JSON `json:"companions,omitempty" gorm:"column:companions"`

	RoomID        uint  `json:"roomId" gorm:"column:room_id;not null;index"`
	ReservationID *uint `json:"reservationId,omitempty" gorm:"column:reservation_id;index"`

	Room Room `json:"room,omitempty" gorm:"foreignKey:RoomID;references:ID"`
}
