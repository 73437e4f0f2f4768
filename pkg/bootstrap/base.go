package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"flagpost/internal/broker"
	"flagpost/internal/config"
	"flagpost/internal/logger"
)

// Base holds what every flagpost service shares: config, logger and broker.
type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
	Consumer broker.Consumer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the producer and, when withConsumer is set, the consumer.
// With no broker configured the producer drops messages and Consumer stays nil.
func (b *Base) InitBroker(serviceName string, withConsumer bool) error {
	producer, err := broker.NewProducer(b.Config.Broker, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}
	if kp, ok := producer.(*broker.KafkaProducer); ok {
		kp.SetServiceName(serviceName)
	}
	b.Producer = producer

	if !withConsumer {
		return nil
	}

	consumer, err := broker.NewConsumer(b.Config.Broker, b.Logger)
	if err != nil {
		_ = producer.Close()
		return fmt.Errorf("failed to create consumer: %w", err)
	}
	if consumer != nil {
		consumer.SetServiceName(serviceName)
	}
	b.Consumer = consumer
	return nil
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	if b.Consumer != nil {
		if err := b.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("consumer close error: %w", err))
		}
	}

	return errs
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Infow("Shutting down application")

	var errs []error
	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}
	errs = append(errs, b.ShutdownBroker()...)

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	b.Logger.Infow("Application exited successfully")
	return nil
}
