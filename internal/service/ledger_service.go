package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/repository"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// LedgerService moves money between account balances. Calls join the transaction in ctx.
type LedgerService struct {
	accounts repository.AccountRepository
}

// NewLedgerService constructs the service.
func NewLedgerService(accounts repository.AccountRepository) *LedgerService {
	return &LedgerService{accounts: accounts}
}

// Deduct subtracts amount when the balance covers it. Insufficient funds report false, not an error.
func (s *LedgerService) Deduct(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	if err := validateAmount(amount); err != nil {
		return false, err
	}
	ok, err := s.accounts.DeductIfSufficient(ctx, accountID, amount)
	if err != nil {
		return false, accountError("deduct", accountID, err)
	}
	return ok, nil
}

// Credit adds amount to the balance unconditionally.
func (s *LedgerService) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	account, err := s.accounts.AddToBalance(ctx, accountID, amount)
	if err != nil {
		return nil, accountError("credit", accountID, err)
	}
	return account, nil
}

// Debit subtracts amount without a balance check. Only cancellation reversals use it,
// so a host balance may go negative.
func (s *LedgerService) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	account, err := s.accounts.AddToBalance(ctx, accountID, amount.Neg())
	if err != nil {
		return nil, accountError("debit", accountID, err)
	}
	return account, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.NewValidationError("amount must not be negative", map[string]any{"amount": amount.String()})
	}
	return nil
}

func accountError(op, accountID string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("account", map[string]any{"account_id": accountID})
	}
	return fmt.Errorf("%s balance: %w", op, err)
}
