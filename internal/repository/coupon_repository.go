package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/persistence"
)

// CouponRepository encapsulates coupons and their per-account usage.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	HasConsumer(ctx context.Context, code, accountID string) (bool, error)
	AddConsumer(ctx context.Context, code, accountID string) error
}

type couponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository instantiates repository.
func NewCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &couponRepository{pool: pool}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const query = `
        SELECT code, discount_percentage, discount_amount, expires_on, created_at
        FROM coupons WHERE code=$1`
	var coupon domain.Coupon
	if err := conn(ctx, r.pool).QueryRow(ctx, query, code).Scan(
		&coupon.Code,
		&coupon.DiscountPercentage,
		&coupon.DiscountAmount,
		&coupon.ExpiresOn,
		&coupon.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *couponRepository) HasConsumer(ctx context.Context, code, accountID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM coupon_usages WHERE coupon_code=$1 AND account_id=$2)`
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, query, code, accountID).Scan(&exists)
	return exists, err
}

func (r *couponRepository) AddConsumer(ctx context.Context, code, accountID string) error {
	const query = `INSERT INTO coupon_usages (coupon_code, account_id) VALUES ($1,$2)`
	_, err := conn(ctx, r.pool).Exec(ctx, query, code, accountID)
	if persistence.HasSQLState(err, persistence.CodeUniqueViolation) {
		return fmt.Errorf("%w: %w", ErrCouponAlreadyConsumed, err)
	}
	return err
}
