package orderreader

import (
	"context"

	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	"github.com/muhammadchandra19/marketplace/pkg/config"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader represents a Kafka reader for consuming order submissions.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Interface
}

// NewReader creates a new Kafka reader for the order intake topic.
func NewReader(cfg config.OrderKafkaConfig, log logger.Interface) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// ReadMessage reads one message and parses it as a place order request.
func (r *Reader) ReadMessage(ctx context.Context) (kafka.Message, *orderv1.PlaceOrderRequest, error) {
	msg, err := r.kafkaReader.FetchMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{}, nil, err
	}

	req, err := orderv1.FromBytes(msg.Value)
	if err != nil {
		r.logError(err, "UnmarshalOrder")
		return msg, nil, err
	}

	r.logger.Info("ReadMessage",
		logger.Field{Key: "userID", Value: req.UserID},
		logger.Field{Key: "productID", Value: req.ProductID},
		logger.Field{Key: "side", Value: req.Side},
		logger.Field{Key: "volume", Value: req.Volume},
	)

	return msg, req, nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(err, "CommitMessages")
		return err
	}
	return nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
