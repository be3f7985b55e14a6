package persistence

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/avito-tech/go-transaction-manager/trm/v2/settings"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/stay-service/internal/observability"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// TxManager runs units of work in serializable transactions and retries serialization failures.
// Repositories pick the transaction up from the context via trmpgx.DefaultCtxGetter.
type TxManager struct {
	manager     *manager.Manager
	settings    trmpgx.Settings
	maxAttempts int
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewTxManager builds a TxManager over pool.
func NewTxManager(pool *pgxpool.Pool, maxAttempts int, logger *zap.Logger, metrics *observability.Metrics) *TxManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TxManager{
		manager: manager.Must(trmpgx.NewDefaultFactory(pool)),
		settings: trmpgx.MustSettings(
			settings.Must(settings.WithCancelable(true)),
			trmpgx.WithTxOptions(pgx.TxOptions{IsoLevel: pgx.Serializable}),
		),
		maxAttempts: maxAttempts,
		logger:      logger,
		metrics:     metrics,
	}
}

// Do runs fn in a serializable transaction, retrying it when postgres aborts it
// with 40001 or 40P01. Exhausted retries surface as a CONFLICT error.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return withRetry(ctx, m.maxAttempts, m.logger, m.metrics, func(ctx context.Context) error {
		return m.manager.DoWithSettings(ctx, m.settings, fn)
	})
}

func withRetry(ctx context.Context, attempts int, logger *zap.Logger, metrics *observability.Metrics, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsSerializationFailure(err) {
			return err
		}
		lastErr = err
		if attempt < attempts {
			metrics.RecordTxRetry()
			logger.Warn("transaction aborted, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	logger.Warn("transaction retries exhausted", zap.Int("attempts", attempts), zap.Error(lastErr))
	return apperrors.NewConflict("concurrent update detected, please retry", map[string]any{"attempts": attempts})
}
