package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stay-service/internal/api/dto"
	"github.com/spec-kit/stay-service/internal/auth"
	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/service"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// BookingUseCases is the booking surface the handler drives.
type BookingUseCases interface {
	Create(ctx context.Context, actor domain.Actor, input service.CreateBookingInput) (*domain.Reservation, error)
	Cancel(ctx context.Context, actor domain.Actor, reservationID string) error
}

// BookingsHandler manages reservation endpoints.
type BookingsHandler struct {
	service BookingUseCases
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService BookingUseCases) *BookingsHandler {
	return &BookingsHandler{service: bookingService}
}

// CreateBooking POST /bookings.
func (h *BookingsHandler) CreateBooking(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ListingID) == "" {
		return apperrors.NewValidationError("listing_id required", nil)
	}
	listingID, err := parseID("listing_id", req.ListingID)
	if err != nil {
		return err
	}
	stay, err := domain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return apperrors.NewValidationError("check_in and check_out must be YYYY-MM-DD", map[string]any{
			"check_in":  req.CheckIn,
			"check_out": req.CheckOut,
		})
	}

	reservation, err := h.service.Create(c.UserContext(), actor, service.CreateBookingInput{
		ListingID:  listingID,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Guests:     req.Guests,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bookingResponse(reservation)})
}

// CancelBooking DELETE /bookings/:id.
func (h *BookingsHandler) CancelBooking(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	reservationID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Cancel(c.UserContext(), actor, reservationID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func bookingResponse(r *domain.Reservation) dto.BookingResponse {
	return dto.BookingResponse{
		ID:               r.ID,
		ListingID:        r.ListingID,
		GuestID:          r.GuestID,
		CheckIn:          r.CheckIn.Format(domain.DateLayout),
		CheckOut:         r.CheckOut.Format(domain.DateLayout),
		Nights:           r.Stay().Nights(),
		Guests:           r.Guests,
		TotalPrice:       r.TotalPrice,
		ConfirmationCode: r.ConfirmationCode,
		CouponCode:       r.CouponCode,
		CreatedAt:        r.CreatedAt,
	}
}
