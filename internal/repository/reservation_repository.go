package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/persistence"
)

// ReservationRepository encapsulates reservation persistence.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Delete(ctx context.Context, id string) error
	// ExistsOverlapping reports whether any reservation on the listing intersects stay.
	ExistsOverlapping(ctx context.Context, listingID string, stay domain.DateRange) (bool, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	const query = `
        INSERT INTO reservations (listing_id, guest_id, check_in, check_out, guests, total_price, confirmation_code, coupon_code)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		reservation.ListingID,
		reservation.GuestID,
		reservation.CheckIn,
		reservation.CheckOut,
		reservation.Guests,
		reservation.TotalPrice,
		reservation.ConfirmationCode,
		reservation.CouponCode,
	).Scan(&reservation.ID, &reservation.CreatedAt)
	if persistence.HasSQLState(err, persistence.CodeExclusionViolation) {
		return fmt.Errorf("%w: %w", ErrOverlappingReservation, err)
	}
	return err
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	const query = `
        SELECT id, listing_id, guest_id, check_in, check_out, guests, total_price, confirmation_code, coupon_code, created_at
        FROM reservations WHERE id=$1`
	var reservation domain.Reservation
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.ListingID,
		&reservation.GuestID,
		&reservation.CheckIn,
		&reservation.CheckOut,
		&reservation.Guests,
		&reservation.TotalPrice,
		&reservation.ConfirmationCode,
		&reservation.CouponCode,
		&reservation.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reservationRepository) ExistsOverlapping(ctx context.Context, listingID string, stay domain.DateRange) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM reservations
            WHERE listing_id=$1 AND check_in < $3 AND check_out > $2
        )`
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, query, listingID, stay.CheckIn, stay.CheckOut).Scan(&exists)
	return exists, err
}
