package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/repository"
)

// AvailabilityChecker answers whether a listing is already booked for a date range.
type AvailabilityChecker struct {
	reservations repository.ReservationRepository
}

func NewAvailabilityChecker(reservations repository.ReservationRepository) *AvailabilityChecker {
	return &AvailabilityChecker{reservations: reservations}
}

// IsOverlapping reports whether any reservation on the listing intersects stay.
// Back-to-back stays do not overlap.
func (c *AvailabilityChecker) IsOverlapping(ctx context.Context, listingID string, stay domain.DateRange) (bool, error) {
	overlapping, err := c.reservations.ExistsOverlapping(ctx, listingID, stay)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return overlapping, nil
}
