package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode_SeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", NewPaymentRejected("insufficient funds", nil))

	assert.True(t, HasCode(err, CodePaymentRejected))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodePaymentRejected))
	assert.False(t, HasCode(nil, CodePaymentRejected))
}

func TestToDomainError(t *testing.T) {
	t.Run("keeps domain errors", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("wrapped: %w", NewCouponExpired("SUMMER")))
		require.NotNil(t, de)
		assert.Equal(t, CodeCouponExpired, de.Code)
		assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
		assert.Equal(t, "SUMMER", de.Details["coupon_code"])
	})

	t.Run("maps missing rows to not found", func(t *testing.T) {
		de := ToDomainError(fmt.Errorf("get listing: %w", pgx.ErrNoRows))
		assert.Equal(t, CodeNotFound, de.Code)
		assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	})

	t.Run("hides infrastructure failures", func(t *testing.T) {
		de := ToDomainError(errors.New("connection reset"))
		assert.Equal(t, CodeInternal, de.Code)
		assert.Equal(t, "internal server error", de.Message)
		assert.EqualError(t, de, "internal server error: connection reset")
	})

	t.Run("maps malformed input to validation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "res-1"`}
		de := ToDomainError(fmt.Errorf("get reservation: %w", pgErr))
		assert.Equal(t, CodeValidation, de.Code)
		assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
		assert.ErrorIs(t, de, pgErr)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})
}
