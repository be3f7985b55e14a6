package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/stay-service/internal/repository"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// CouponService validates and redeems discount coupons.
type CouponService struct {
	coupons repository.CouponRepository
	now     func() time.Time
}

// NewCouponService constructs the service. A nil clock defaults to time.Now.
func NewCouponService(coupons repository.CouponRepository, now func() time.Time) *CouponService {
	if now == nil {
		now = time.Now
	}
	return &CouponService{coupons: coupons, now: now}
}

// ApplyCoupon returns originalAmount discounted by the coupon. It does not record usage.
func (s *CouponService) ApplyCoupon(ctx context.Context, accountID, code string, originalAmount decimal.Decimal) (decimal.Decimal, error) {
	coupon, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, apperrors.NewNotFound("coupon", map[string]any{"coupon_code": code})
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get coupon: %w", err)
	}

	if coupon.IsExpired(s.now().UTC()) {
		return decimal.Zero, apperrors.NewCouponExpired(code)
	}

	used, err := s.coupons.HasConsumer(ctx, code, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("check coupon usage: %w", err)
	}
	if used {
		return decimal.Zero, apperrors.NewCouponAlreadyUsed(code)
	}

	return coupon.Apply(originalAmount), nil
}

// MarkUsed records that accountID consumed the coupon. Call it only after payment succeeded.
func (s *CouponService) MarkUsed(ctx context.Context, accountID, code string) error {
	err := s.coupons.AddConsumer(ctx, code, accountID)
	if errors.Is(err, repository.ErrCouponAlreadyConsumed) {
		return apperrors.NewCouponAlreadyUsed(code)
	}
	if err != nil {
		return fmt.Errorf("mark coupon used: %w", err)
	}
	return nil
}
