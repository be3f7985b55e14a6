package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for check-in and check-out dates.
const DateLayout = "2006-01-02"

// DateRange is a half-open [CheckIn, CheckOut) range of calendar days.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange truncates both bounds to UTC calendar days.
func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: toDate(checkIn), CheckOut: toDate(checkOut)}
}

// ParseDateRange parses two YYYY-MM-DD dates.
func ParseDateRange(checkIn, checkOut string) (DateRange, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(in, out), nil
}

// Valid reports whether check-out is strictly after check-in.
func (r DateRange) Valid() bool {
	return r.CheckOut.After(r.CheckIn)
}

// Nights counts the nights between check-in and check-out.
func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int((toDate(r.CheckOut).Unix() - toDate(r.CheckIn).Unix()) / secondsPerDay)
}

// Overlaps applies the half-open rule: back-to-back stays do not overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

const secondsPerDay = 24 * 60 * 60

func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Reservation is a confirmed, paid stay on a listing.
type Reservation struct {
	ID               string
	ListingID        string
	GuestID          string
	CheckIn          time.Time
	CheckOut         time.Time
	Guests           int
	TotalPrice       decimal.Decimal
	ConfirmationCode string
	CouponCode       *string
	CreatedAt        time.Time
}

// Stay returns the reserved date range.
func (r Reservation) Stay() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}
