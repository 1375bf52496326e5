package tradefeed

import (
	"context"

	tradev1 "github.com/muhammadchandra19/marketplace/internal/domain/trade/v1"
	"github.com/muhammadchandra19/marketplace/pkg/config"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher represents a Kafka publisher for the trade feed.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      logger.Interface
}

// NewPublisher creates a new Kafka publisher for trade feed events.
func NewPublisher(cfg config.TradeKafkaConfig, log logger.Interface) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTradeExecuted publishes a trade feed event. The trade ID keys the
// message so consumers can dedupe redeliveries.
func (p *Publisher) PublishTradeExecuted(ctx context.Context, event *tradev1.ExecutedEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.TradeID),
		Value: event.ToBytes(),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, errors.TracerFromError(err),
			logger.Field{Key: "tradeID", Value: event.TradeID},
			logger.Field{Key: "productID", Value: event.ProductID},
		)
		return errors.NewErrorDetails(
			"failed to publish trade feed event",
			string(errors.NotificationFailure),
			"tradeID",
		)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
