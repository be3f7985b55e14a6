package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

// StreamForwarder republishes dispatched events to a message topic.
type StreamForwarder struct {
	publisher message.Publisher
	topic     string
}

// NewRedisStreamPublisher builds a watermill publisher writing to Redis streams.
func NewRedisStreamPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, logger)
}

// NewStreamForwarder creates a forwarder publishing to topic.
func NewStreamForwarder(publisher message.Publisher, topic string) *StreamForwarder {
	return &StreamForwarder{publisher: publisher, topic: topic}
}

// Register subscribes the forwarder to every event type.
func (f *StreamForwarder) Register(dispatcher Dispatcher) {
	dispatcher.SubscribeAll(f.Forward)
}

// Forward encodes event as JSON and publishes it, keyed by the event id.
func (f *StreamForwarder) Forward(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	id := event.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, body)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("aggregate_id", event.AggregateID)
	msg.SetContext(ctx)

	if err := f.publisher.Publish(f.topic, msg); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}

// Close releases the underlying publisher.
func (f *StreamForwarder) Close() error {
	return f.publisher.Close()
}
