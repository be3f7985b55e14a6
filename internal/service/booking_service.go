package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/events"
	"github.com/spec-kit/stay-service/internal/observability"
	"github.com/spec-kit/stay-service/internal/repository"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// BookingService orchestrates reservation creation and cancellation.
type BookingService struct {
	tx           TxRunner
	listings     repository.ListingRepository
	reservations repository.ReservationRepository
	ledger       *LedgerService
	coupons      *CouponService
	availability *AvailabilityChecker
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	newCode      func() (string, error)
	now          func() time.Time
}

// BookingDependencies bundles collaborators for the booking service.
type BookingDependencies struct {
	TxManager       TxRunner
	ListingRepo     repository.ListingRepository
	ReservationRepo repository.ReservationRepository
	Ledger          *LedgerService
	Coupons         *CouponService
	Availability    *AvailabilityChecker
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	// CodeGenerator defaults to NewConfirmationCode.
	CodeGenerator func() (string, error)
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// CreateBookingInput describes a reservation request.
type CreateBookingInput struct {
	ListingID  string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	CouponCode *string
}

// NewBookingService constructs the service.
func NewBookingService(deps BookingDependencies) *BookingService {
	s := &BookingService{
		tx:           deps.TxManager,
		listings:     deps.ListingRepo,
		reservations: deps.ReservationRepo,
		ledger:       deps.Ledger,
		coupons:      deps.Coupons,
		availability: deps.Availability,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		newCode:      deps.CodeGenerator,
		now:          deps.Clock,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.newCode == nil {
		s.newCode = NewConfirmationCode
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create books the listing for the actor, paying the host from the actor's balance.
// Nothing is persisted unless every step succeeds; BOOKING_CREATED is emitted after commit.
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, input CreateBookingInput) (_ *domain.Reservation, err error) {
	ctx, span := observability.StartSpan(ctx, "booking.create",
		attribute.String("listing_id", input.ListingID),
		attribute.String("guest_id", actor.AccountID),
	)
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordBookingOutcome("create", outcomeOf(err))
	}()

	stay := domain.NewDateRange(input.CheckIn, input.CheckOut)
	if !stay.Valid() {
		return nil, apperrors.NewValidationError("check-out must be after check-in", map[string]any{
			"check_in":  stay.CheckIn.Format(domain.DateLayout),
			"check_out": stay.CheckOut.Format(domain.DateLayout),
		})
	}
	if input.Guests < 1 {
		return nil, apperrors.NewValidationError("at least one guest is required", map[string]any{"guests": input.Guests})
	}
	couponCode := normalizeCouponCode(input.CouponCode)

	var (
		reservation *domain.Reservation
		listing     *domain.Listing
	)
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		reservation, listing = nil, nil

		l, err := s.listings.GetForUpdate(ctx, input.ListingID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("listing", map[string]any{"listing_id": input.ListingID})
		}
		if err != nil {
			return fmt.Errorf("lock listing: %w", err)
		}
		if !l.Available {
			return apperrors.NewConflict("listing is not available for booking", map[string]any{"listing_id": l.ID})
		}

		overlapping, err := s.availability.IsOverlapping(ctx, l.ID, stay)
		if err != nil {
			return err
		}
		if overlapping {
			return datesTakenConflict(l.ID, stay)
		}
		if input.Guests > l.MaxGuests {
			return apperrors.NewConflict("guest count exceeds listing capacity", map[string]any{
				"guests":     input.Guests,
				"max_guests": l.MaxGuests,
			})
		}

		amount := l.PriceFor(stay)
		if couponCode != nil {
			amount, err = s.coupons.ApplyCoupon(ctx, actor.AccountID, *couponCode, amount)
			if err != nil {
				return err
			}
		}

		paid, err := s.ledger.Deduct(ctx, actor.AccountID, amount)
		if err != nil {
			return err
		}
		if !paid {
			return apperrors.NewPaymentRejected("insufficient balance", map[string]any{"amount": amount.StringFixed(2)})
		}
		if _, err := s.ledger.Credit(ctx, l.HostID, amount); err != nil {
			return err
		}

		code, err := s.newCode()
		if err != nil {
			return fmt.Errorf("generate confirmation code: %w", err)
		}
		r := &domain.Reservation{
			ListingID:        l.ID,
			GuestID:          actor.AccountID,
			CheckIn:          stay.CheckIn,
			CheckOut:         stay.CheckOut,
			Guests:           input.Guests,
			TotalPrice:       amount,
			ConfirmationCode: code,
			CouponCode:       couponCode,
		}
		if err := s.reservations.Create(ctx, r); err != nil {
			if errors.Is(err, repository.ErrOverlappingReservation) {
				return datesTakenConflict(l.ID, stay)
			}
			return fmt.Errorf("create reservation: %w", err)
		}

		if couponCode != nil {
			if err := s.coupons.MarkUsed(ctx, actor.AccountID, *couponCode); err != nil {
				return err
			}
		}

		reservation, listing = r, l
		return nil
	})
	if err != nil {
		if !isExpectedOutcome(err) {
			s.logger.Error("booking create failed", zap.String("listing_id", input.ListingID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("reservation_id", reservation.ID),
		zap.String("listing_id", reservation.ListingID),
		zap.String("total", reservation.TotalPrice.StringFixed(2)))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventBookingCreated,
		AggregateID: reservation.ID,
		Actor:       events.ActorOf(actor),
		Timestamp:   s.now().UTC(),
		Payload: events.BookingCreatedPayload{
			ReservationID:    reservation.ID,
			ListingID:        reservation.ListingID,
			GuestID:          reservation.GuestID,
			HostID:           listing.HostID,
			CheckIn:          reservation.CheckIn.Format(domain.DateLayout),
			CheckOut:         reservation.CheckOut.Format(domain.DateLayout),
			Guests:           reservation.Guests,
			TotalPrice:       reservation.TotalPrice,
			ConfirmationCode: reservation.ConfirmationCode,
			CouponCode:       reservation.CouponCode,
		},
	})
	return reservation, nil
}

// Cancel deletes the reservation and reverses its payment: the guest is credited and
// the host debited by the reservation total, without a balance check on the host.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, reservationID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "booking.cancel",
		attribute.String("reservation_id", reservationID),
		attribute.String("actor_id", actor.AccountID),
	)
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordBookingOutcome("cancel", outcomeOf(err))
	}()

	var (
		reservation *domain.Reservation
		listing     *domain.Listing
	)
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		reservation, listing = nil, nil

		r, err := s.reservations.GetByID(ctx, reservationID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("reservation", map[string]any{"reservation_id": reservationID})
		}
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if !actor.CanActOn(r.GuestID) {
			return apperrors.NewForbidden("only the guest or a moderator can cancel this reservation")
		}

		l, err := s.listings.GetForUpdate(ctx, r.ListingID)
		if err != nil {
			return fmt.Errorf("lock listing: %w", err)
		}

		if _, err := s.ledger.Credit(ctx, r.GuestID, r.TotalPrice); err != nil {
			return err
		}
		if _, err := s.ledger.Debit(ctx, l.HostID, r.TotalPrice); err != nil {
			return err
		}

		if err := s.reservations.Delete(ctx, r.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("reservation", map[string]any{"reservation_id": reservationID})
			}
			return fmt.Errorf("delete reservation: %w", err)
		}

		reservation, listing = r, l
		return nil
	})
	if err != nil {
		if !isExpectedOutcome(err) {
			s.logger.Error("booking cancel failed", zap.String("reservation_id", reservationID), zap.Error(err))
		}
		return err
	}

	s.logger.Info("booking canceled",
		zap.String("reservation_id", reservation.ID),
		zap.String("actor_id", actor.AccountID))

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:        events.EventBookingCanceled,
		AggregateID: reservation.ID,
		Actor:       events.ActorOf(actor),
		Timestamp:   s.now().UTC(),
		Payload: events.BookingCanceledPayload{
			ReservationID:    reservation.ID,
			ListingID:        reservation.ListingID,
			GuestID:          reservation.GuestID,
			HostID:           listing.HostID,
			RefundedAmount:   reservation.TotalPrice,
			ConfirmationCode: reservation.ConfirmationCode,
		},
	})
	return nil
}

func datesTakenConflict(listingID string, stay domain.DateRange) error {
	return apperrors.NewConflict("listing already booked for the requested dates", map[string]any{
		"listing_id": listingID,
		"check_in":   stay.CheckIn.Format(domain.DateLayout),
		"check_out":  stay.CheckOut.Format(domain.DateLayout),
	})
}

func normalizeCouponCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// isExpectedOutcome separates business rejections from infrastructure failures.
func isExpectedOutcome(err error) bool {
	var domainErr *apperrors.DomainError
	return errors.As(err, &domainErr) && domainErr.HTTPStatus < 500
}
