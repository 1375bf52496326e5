package matching

import (
	"context"
	"sync"
	"time"

	matchingv1 "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	"github.com/muhammadchandra19/marketplace/pkg/config"
	"github.com/muhammadchandra19/marketplace/pkg/errors"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
)

// jobResult carries a finished job back to its submitter.
type jobResult struct {
	result *matchingv1.Result
	err    error
}

// job is one unit of serialized work for a product worker.
type job struct {
	ctx      context.Context
	run      func(ctx context.Context) (*matchingv1.Result, error)
	resultCh chan jobResult
}

// productWorker owns the mailbox for a single product. Jobs run one at a
// time in arrival order.
type productWorker struct {
	productID string
	mailbox   chan job
}

// ProductDispatcher serializes matching per product. A worker goroutine
// is created lazily per product and drains its mailbox in FIFO order, so
// two orders for the same product can never match concurrently while
// different products proceed in parallel.
type ProductDispatcher struct {
	engine      matchingv1.Engine
	orders      orderv1.Repository
	logger      logger.Interface
	mailboxSize int

	mu      sync.RWMutex
	workers map[string]*productWorker
	closed  bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher on top of the given engine.
func NewDispatcher(
	engine matchingv1.Engine,
	orders orderv1.Repository,
	log logger.Interface,
	cfg config.MatchingConfig,
) *ProductDispatcher {
	mailboxSize := cfg.MailboxSize
	if mailboxSize <= 0 {
		mailboxSize = 256
	}

	return &ProductDispatcher{
		engine:      engine,
		orders:      orders,
		logger:      log,
		mailboxSize: mailboxSize,
		workers:     make(map[string]*productWorker),
	}
}

// Submit enqueues the taker on its product worker and waits for the
// matching pass to finish. Once a job is picked up it runs to
// completion even if the submitter's context expires first.
func (d *ProductDispatcher) Submit(ctx context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
	return d.dispatch(ctx, taker.ProductID, func(ctx context.Context) (*matchingv1.Result, error) {
		return d.engine.Match(ctx, taker)
	})
}

// Cancel runs a cancellation on the product worker so it cannot
// interleave with a matching pass for the same product.
func (d *ProductDispatcher) Cancel(ctx context.Context, productID, orderID string) error {
	_, err := d.dispatch(ctx, productID, func(ctx context.Context) (*matchingv1.Result, error) {
		return nil, d.orders.MarkCancelled(ctx, orderID)
	})
	return err
}

// Close stops accepting work, closes all mailboxes and waits for
// in-flight jobs to finish.
func (d *ProductDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, worker := range d.workers {
		close(worker.mailbox)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *ProductDispatcher) dispatch(ctx context.Context, productID string, run func(ctx context.Context) (*matchingv1.Result, error)) (*matchingv1.Result, error) {
	worker, err := d.getOrCreateWorker(productID)
	if err != nil {
		return nil, err
	}

	j := job{
		ctx:      ctx,
		run:      run,
		resultCh: make(chan jobResult, 1),
	}

	if err := d.enqueue(ctx, worker, j); err != nil {
		return nil, err
	}

	select {
	case res := <-j.resultCh:
		return res.result, res.err
	case <-ctx.Done():
		return nil, errors.TracerFromError(ctx.Err())
	}
}

// enqueue sends the job to the worker's mailbox. The read lock is held
// across the send so Close, which closes mailboxes under the write
// lock, can never close a mailbox with a send in flight.
func (d *ProductDispatcher) enqueue(ctx context.Context, worker *productWorker, j job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return errors.NewErrorDetails("dispatcher is closed", string(errors.GeneralInternalServerError), "")
	}

	select {
	case worker.mailbox <- j:
		return nil
	case <-ctx.Done():
		return errors.TracerFromError(ctx.Err())
	}
}

// getOrCreateWorker returns the worker for a product, starting one on
// first use. Fast path takes only the read lock.
func (d *ProductDispatcher) getOrCreateWorker(productID string) (*productWorker, error) {
	d.mu.RLock()
	worker, ok := d.workers[productID]
	closed := d.closed
	d.mu.RUnlock()

	if closed {
		return nil, errors.NewErrorDetails("dispatcher is closed", string(errors.GeneralInternalServerError), "")
	}
	if ok {
		return worker, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.NewErrorDetails("dispatcher is closed", string(errors.GeneralInternalServerError), "")
	}
	if worker, ok := d.workers[productID]; ok {
		return worker, nil
	}

	worker = &productWorker{
		productID: productID,
		mailbox:   make(chan job, d.mailboxSize),
	}
	d.workers[productID] = worker

	d.wg.Add(1)
	go d.runWorker(worker)

	d.logger.Info("Started product worker", logger.Field{
		Key:   "productID",
		Value: productID,
	})

	return worker, nil
}

func (d *ProductDispatcher) runWorker(worker *productWorker) {
	defer d.wg.Done()

	for j := range worker.mailbox {
		started := time.Now()
		// The submitter's cancellation is honored only while the job
		// waits in the mailbox. Once picked up it runs to completion on
		// a detached context that keeps the request scoped values.
		result, err := j.run(context.WithoutCancel(j.ctx))
		j.resultCh <- jobResult{result: result, err: err}

		d.logger.Debug("Product worker job finished",
			logger.Field{Key: "productID", Value: worker.productID},
			logger.Field{Key: "duration", Value: time.Since(started)},
		)
	}
}
