package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type HotelSetting struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:255" json:"name"`
	Address string `gorm:"type:text" json:"address"`
	Phone   string `gorm:"size:50" json:"phone"`
	Email   string `gorm:"size:150" json:"email"`

	Currency string `gorm:"size:8;default:RM" json:"currency"`

	// Applied to a check-in that leaves the tax fields empty.
	DefaultSSTPercent         decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"defaultSst"`
	DefaultTourismTaxPerNight decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"defaultTourismTax"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
