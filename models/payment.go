package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an append-only audit entry recorded against a Stay.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	StayID      uint            `json:"guestId" gorm:"column:stay_id;not null;index"`
	PaymentDate time.Time       `json:"paymentDate" gorm:"column:payment_date;not null;index"`
	Method      PaymentMethod   `json:"paymentMethod" gorm:"column:payment_method;size:32;not null;index"`
	Amount      decimal.Decimal `json:"paidAmount" gorm:"column:amount;type:decimal(14,4);not null"`

	// Copied from the stay at write time so the sales report needs no join.
	GuestName string `json:"guestName" gorm:"column:guest_name;size:255;index"`
	RoomNo    string `json:"roomNo" gorm:"column:room_no;size:16"`
}
