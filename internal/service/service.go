package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/stay-service/internal/events"
	apperrors "github.com/spec-kit/stay-service/pkg/util/errorutil"
)

// TxRunner runs fn inside a transaction carried by ctx. Any error rolls back.
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// publishEvent stamps id and timestamp and hands the event to the dispatcher.
// Delivery is best effort and never fails the caller.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	return apperrors.ToDomainError(err).Code
}
