package broker

import (
	"context"

	"flagpost/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, msg models.MessageEnvelope) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, msg models.MessageEnvelope) error

// NopProducer drops every message. It stands in when no broker is configured.
type NopProducer struct{}

func (NopProducer) Publish(context.Context, string, models.MessageEnvelope) error { return nil }

func (NopProducer) Close() error { return nil }
