package matchingv1

import (
	"fmt"

	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	tradev1 "github.com/muhammadchandra19/marketplace/internal/domain/trade/v1"
)

// Result represents the outcome of matching one taker order against the
// resting book.
type Result struct {
	// Taker is the submitted order with its final fill level and status.
	Taker *orderv1.Order `json:"taker"`
	// Trades are the executions produced by this match, in execution order.
	Trades []*tradev1.Trade `json:"trades"`
	// RemainingVolume is the taker volume left resting on the book.
	RemainingVolume int64 `json:"remainingVolume"`
}

// PartialMatchError reports a matching pass that was aborted mid-way by a
// repository failure. Trades executed before the failure are committed and
// carried in Result.
type PartialMatchError struct {
	Result *Result
	Err    error
}

// Error implements the error interface.
func (e *PartialMatchError) Error() string {
	executed := 0
	if e.Result != nil {
		executed = len(e.Result.Trades)
	}
	return fmt.Sprintf("matching aborted after %d trade(s): %v", executed, e.Err)
}

// Unwrap returns the underlying repository error.
func (e *PartialMatchError) Unwrap() error {
	return e.Err
}
