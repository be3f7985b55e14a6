package repository

import (
	"context"
	"errors"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrOverlappingReservation is returned when the reservations exclusion constraint rejects a stay.
	ErrOverlappingReservation = errors.New("reservation overlaps an existing stay")
	// ErrCouponAlreadyConsumed is returned when an account redeems the same coupon twice.
	ErrCouponAlreadyConsumed = errors.New("coupon already consumed by account")
	// ErrStatusChanged is returned when a guarded status update finds the row in another state.
	ErrStatusChanged = errors.New("status changed concurrently")
)

// conn returns the transaction stored in ctx by the tx manager, or the pool outside one.
func conn(ctx context.Context, pool *pgxpool.Pool) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, pool)
}
