package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBookingRequest payload. Dates use YYYY-MM-DD.
type CreateBookingRequest struct {
	ListingID  string  `json:"listing_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	CouponCode *string `json:"coupon_code,omitempty"`
}

// BookingResponse describes a confirmed reservation.
type BookingResponse struct {
	ID               string          `json:"id"`
	ListingID        string          `json:"listing_id"`
	GuestID          string          `json:"guest_id"`
	CheckIn          string          `json:"check_in"`
	CheckOut         string          `json:"check_out"`
	Nights           int             `json:"nights"`
	Guests           int             `json:"guests"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	ConfirmationCode string          `json:"confirmation_code"`
	CouponCode       *string         `json:"coupon_code,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
