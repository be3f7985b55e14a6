package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing is a rentable property owned by a host account.
type Listing struct {
	ID            string
	HostID        string
	Title         string
	PricePerNight decimal.Decimal
	MaxGuests     int
	Available     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceFor returns the undiscounted price of staying for the given range.
func (l Listing) PriceFor(stay DateRange) decimal.Decimal {
	return l.PricePerNight.Mul(decimal.NewFromInt(int64(stay.Nights())))
}
