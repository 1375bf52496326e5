package orderreader

import (
	"context"

	matchingv1 "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/util"
	"github.com/segmentio/kafka-go"
)

// OrderPlacer is the slice of the order usecase the intake loop needs.
//
//go:generate mockgen -source=intake.go -destination=mock/intake_mock.go -package=orderreader_mock
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req *orderv1.PlaceOrderRequest) (*matchingv1.Result, error)
}

// MessageSource abstracts the Kafka reader for the intake loop.
type MessageSource interface {
	ReadMessage(ctx context.Context) (kafka.Message, *orderv1.PlaceOrderRequest, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Intake drives order submissions from Kafka into the order usecase.
// Malformed and rejected submissions are committed and skipped, a dead
// submission must not wedge the partition.
type Intake struct {
	source MessageSource
	orders OrderPlacer
	logger logger.Interface
}

// NewIntake creates a new intake loop.
func NewIntake(source MessageSource, orders OrderPlacer, log logger.Interface) *Intake {
	return &Intake{
		source: source,
		orders: orders,
		logger: log,
	}
}

// Run consumes until the context is cancelled.
func (i *Intake) Run(ctx context.Context) error {
	i.logger.InfoContext(ctx, "starting order intake", logger.Field{
		Key:   "action",
		Value: "order_intake_start",
	})

	for {
		select {
		case <-ctx.Done():
			i.logger.InfoContext(ctx, "order intake stopped", logger.Field{
				Key:   "action",
				Value: "order_intake_stop",
			})
			return i.source.Close()
		default:
			if err := i.processNext(ctx); err != nil {
				if ctx.Err() != nil {
					continue
				}
				i.logger.ErrorContext(ctx, err, logger.Field{
					Key:   "action",
					Value: "process_message",
				})
			}
		}
	}
}

func (i *Intake) processNext(ctx context.Context) error {
	msg, req, err := i.source.ReadMessage(ctx)
	if err != nil {
		if req == nil && len(msg.Value) == 0 {
			// Transport error, nothing to commit.
			return err
		}
		// Malformed payload, skip past it.
		return i.source.CommitMessages(ctx, msg)
	}

	msgCtx := util.WithRequestID(ctx, string(msg.Key))

	_, err = i.orders.PlaceOrder(msgCtx, req)
	if err != nil && !i.isRejection(err) {
		// Infrastructure failure, leave the message uncommitted so it is
		// redelivered.
		return err
	}
	if err != nil {
		i.logger.WarnContext(msgCtx, "Order submission rejected", logger.Field{
			Key:   "error",
			Value: err.Error(),
		})
	}

	return i.source.CommitMessages(ctx, msg)
}

// isRejection reports whether the error is a business rejection rather
// than an infrastructure failure. Rejections are terminal for the
// message, redelivery would reject again.
func (i *Intake) isRejection(err error) bool {
	return errors.HasCode(err, errors.OrderValidationError) ||
		errors.HasCode(err, errors.OrderNotCancellable) ||
		errors.HasCode(err, errors.ProductNotFound)
}
