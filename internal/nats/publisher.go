package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishInboundChat publishes an inbound chat message for engine processing.
func (p *Publisher) PublishInboundChat(ctx context.Context, msg InboundChat) error {
	return p.publish(ctx, SubjectInboundChat, msg)
}

// PublishOutboundChat publishes a bot reply for gateway delivery.
func (p *Publisher) PublishOutboundChat(ctx context.Context, msg OutboundChat) error {
	return p.publish(ctx, SubjectOutboundChat, msg)
}

// PublishBotEvent publishes a pipeline lifecycle event.
func (p *Publisher) PublishBotEvent(ctx context.Context, event BotEvent) error {
	return p.publish(ctx, SubjectBotEvent, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
