package services

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rates are the per-stay inputs of the charge calculation.
type Rates struct {
	RoomPrice          decimal.Decimal
	SSTPercent         decimal.Decimal
	TourismTaxPerNight decimal.Decimal
	Discount           decimal.Decimal
}

// Charges is the breakdown of a stay's subtotal.
type Charges struct {
	Nights     int             `json:"nights"`
	RoomCharge decimal.Decimal `json:"roomCharge"`
	SST        decimal.Decimal `json:"sst"`
	TourismTax decimal.Decimal `json:"tourismTax"`
	Discount   decimal.Decimal `json:"discount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Nights counts the billable nights between two dates, rounding partial days
// up. A stay is always at least one night.
func Nights(arrival, departure time.Time) int {
	d := departure.Sub(arrival)
	if d < 0 {
		d = -d
	}
	n := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Calculate prices a stay: room price per night plus SST on the room charge
// plus a flat tourism tax per night, less the discount.
func Calculate(arrival, departure time.Time, r Rates) Charges {
	nights := Nights(arrival, departure)
	n := decimal.NewFromInt(int64(nights))

	room := r.RoomPrice.Mul(n)
	sst := room.Mul(r.SSTPercent).Div(hundred)
	tourism := r.TourismTaxPerNight.Mul(n)

	return Charges{
		Nights:     nights,
		RoomCharge: room,
		SST:        sst,
		TourismTax: tourism,
		Discount:   r.Discount,
		Subtotal:   room.Add(sst).Add(tourism).Sub(r.Discount),
	}
}

// Due is the outstanding balance, never negative.
func Due(subtotal, paid decimal.Decimal) decimal.Decimal {
	due := subtotal.Sub(paid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// Money rounds an amount for display.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
