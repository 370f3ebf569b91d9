package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCheckedIn ReservationStatus = "CHECKED_IN"
)

type ReservationGuest struct {
	Name        string `json:"name" gorm:"size:255;not null;index"`
	Phone       string `json:"phone" gorm:"size:64;not null"`
	Email       string `json:"email" gorm:"size:255"`
	Nationality string `json:"nationality" gorm:"size:64"`
	Passport    string `json:"passport" gorm:"size:64"`
	OTA         OTA    `json:"ota" gorm:"size:32"`
}

// ReservationPayment carries flat amounts, not rates.
type ReservationPayment struct {
	BookingFee  decimal.Decimal `json:"bookingFee" gorm:"type:decimal(14,4);not null;default:0"`
	SST         decimal.Decimal `json:"sst" gorm:"type:decimal(14,4);not null;default:0"`
	TourismTax  decimal.Decimal `json:"tourismTax" gorm:"type:decimal(14,4);not null;default:0"`
	Discount    decimal.Decimal `json:"fnfDiscount" gorm:"type:decimal(14,4);not null;default:0"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"type:decimal(14,4);not null;default:0"`
}

// Reservation is a forward hold on a room, independent of any Stay.
type Reservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ReservationNo string           `json:"reservationNo" gorm:"column:reservation_no;uniqueIndex;size:64;not null"`
	Guest         ReservationGuest `json:"guest" gorm:"embedded;embeddedPrefix:guest_"`

	RoomID      uint           `json:"roomId" gorm:"column:room_id;not null;index"`
	RoomNo      string         `json:"roomNo" gorm:"column:room_no;size:16;not null;index"`
	Arrival     time.Time      `json:"arrival" gorm:"column:arrival;not null;index"`
	Departure   time.Time      `json:"departure" gorm:"column:departure;not null;index"`
	NumOfGuest  int            `json:"numOfGuest" gorm:"column:num_of_guest"`
	RoomDetails string         `json:"roomDetails" gorm:"column:room_details;type:text"`
	OtherGuests datatypes.JSON `json:"otherGuest,omitempty" gorm:"column:other_guests"`

	Payment ReservationPayment `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`

	ReservedAt  time.Time         `json:"reservationDate" gorm:"column:reserved_at;not null"`
	Status      ReservationStatus `json:"status" gorm:"column:status;size:16;not null;index"`
	CancelledAt *time.Time        `json:"cancelledAt,omitempty" gorm:"column:cancelled_at"`
}
