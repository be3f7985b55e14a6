package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/stay-service/internal/config"
	"github.com/spec-kit/stay-service/internal/domain"
	"github.com/spec-kit/stay-service/internal/events"
	"github.com/spec-kit/stay-service/internal/service"
)

func TestStartNotificationWorker_ForwardsEvents(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, events.NewWatermillLogger(zap.NewNop()))
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := pubSub.Subscribe(ctx, "stay.events")
	require.NoError(t, err)

	dispatcher := events.NewDispatcher(zap.NewNop())
	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{})
	StartNotificationWorker(dispatcher, notifications, events.NewStreamForwarder(pubSub, "stay.events"))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:          "evt-1",
		Type:        events.EventTicketStatusChanged,
		AggregateID: "t-1",
		Actor:       events.Actor{AccountID: "mod", Role: domain.RoleModerator},
		Timestamp:   time.Now().UTC(),
		Payload: events.TicketStatusChangedPayload{
			OwnerID:   "guest",
			OldStatus: domain.TicketStatusOpen,
			NewStatus: domain.TicketStatusInProgress,
			Action:    domain.TicketActionInProgress,
		},
	}))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "TICKET_STATUS_CHANGED", msg.Metadata.Get("event_type"))
	case <-ctx.Done():
		t.Fatal("event was not forwarded")
	}
	dispatcher.Wait()
}

func TestStartNotificationWorker_NilDependencies(t *testing.T) {
	assert.NotPanics(t, func() {
		StartNotificationWorker(nil, nil, nil)
	})
}
