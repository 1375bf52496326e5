package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	matchingv1 "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1"
	matchingMock "github.com/muhammadchandra19/marketplace/internal/domain/matching/v1/mock"
	orderv1 "github.com/muhammadchandra19/marketplace/internal/domain/order/v1"
	orderMock "github.com/muhammadchandra19/marketplace/internal/domain/order/v1/mock"
	"github.com/muhammadchandra19/marketplace/pkg/config"
	mockLogger "github.com/muhammadchandra19/marketplace/pkg/logger/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcherForTest(t *testing.T) (*ProductDispatcher, *matchingMock.MockEngine, *orderMock.MockRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	engine := matchingMock.NewMockEngine(ctrl)
	orders := orderMock.NewMockRepository(ctrl)

	log := mockLogger.NewMockInterface(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

	dispatcher := NewDispatcher(engine, orders, log, config.MatchingConfig{MailboxSize: 16})
	t.Cleanup(dispatcher.Close)

	return dispatcher, engine, orders
}

func TestDispatcher_SerializesSameProduct(t *testing.T) {
	dispatcher, engine, _ := newDispatcherForTest(t)
	ctx := context.Background()

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0

	engine.EXPECT().Match(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()

			return &matchingv1.Result{Taker: taker}, nil
		}).Times(8)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order := &orderv1.Order{ID: "order", ProductID: "product-1"}
			_, err := dispatcher.Submit(ctx, order)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxInFlight, "same product must never match concurrently")
}

func TestDispatcher_DifferentProductsRunConcurrently(t *testing.T) {
	dispatcher, engine, _ := newDispatcherForTest(t)
	ctx := context.Background()

	release := make(chan struct{})
	firstRunning := make(chan struct{})

	engine.EXPECT().Match(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
			if taker.ProductID == "product-slow" {
				close(firstRunning)
				<-release
			}
			return &matchingv1.Result{Taker: taker}, nil
		}).Times(2)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := dispatcher.Submit(ctx, &orderv1.Order{ID: "slow", ProductID: "product-slow"})
		assert.NoError(t, err)
	}()

	<-firstRunning

	// The fast product must complete while the slow product is blocked.
	done := make(chan struct{})
	go func() {
		_, err := dispatcher.Submit(ctx, &orderv1.Order{ID: "fast", ProductID: "product-fast"})
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("independent product was blocked behind another product's worker")
	}

	close(release)
	wg.Wait()
}

func TestDispatcher_CancelRunsOnProductWorker(t *testing.T) {
	dispatcher, _, orders := newDispatcherForTest(t)
	ctx := context.Background()

	orders.EXPECT().MarkCancelled(gomock.Any(), "order-1").Return(nil)

	err := dispatcher.Cancel(ctx, "product-1", "order-1")
	require.NoError(t, err)
}

func TestDispatcher_SubmitAfterCloseFails(t *testing.T) {
	dispatcher, _, _ := newDispatcherForTest(t)
	dispatcher.Close()

	_, err := dispatcher.Submit(context.Background(), &orderv1.Order{ID: "order", ProductID: "product-1"})
	assert.Error(t, err)
}

func TestDispatcher_SubmitHonorsContext(t *testing.T) {
	dispatcher, engine, _ := newDispatcherForTest(t)

	release := make(chan struct{})
	engine.EXPECT().Match(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
			<-release
			return &matchingv1.Result{Taker: taker}, nil
		}).AnyTimes()

	// Occupy the worker so the second submit waits.
	go func() {
		_, _ = dispatcher.Submit(context.Background(), &orderv1.Order{ID: "first", ProductID: "product-1"})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := dispatcher.Submit(ctx, &orderv1.Order{ID: "second", ProductID: "product-1"})
	assert.Error(t, err)

	close(release)
}

func TestDispatcher_InFlightJobSurvivesSubmitterTimeout(t *testing.T) {
	dispatcher, engine, _ := newDispatcherForTest(t)

	ctxErrCh := make(chan error, 1)
	engine.EXPECT().Match(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
			time.Sleep(50 * time.Millisecond)
			ctxErrCh <- ctx.Err()
			return &matchingv1.Result{Taker: taker}, nil
		})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := dispatcher.Submit(ctx, &orderv1.Order{ID: "order", ProductID: "product-1"})
	assert.Error(t, err, "submitter stops waiting when its context expires")

	select {
	case ctxErr := <-ctxErrCh:
		assert.NoError(t, ctxErr, "a picked-up job must run to completion on a live context")
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight job never finished")
	}
}

func TestDispatcher_CloseRacingSubmitDoesNotPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctrl := gomock.NewController(t)

		engine := matchingMock.NewMockEngine(ctrl)
		engine.EXPECT().Match(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, taker *orderv1.Order) (*matchingv1.Result, error) {
				return &matchingv1.Result{Taker: taker}, nil
			}).AnyTimes()

		log := mockLogger.NewMockInterface(ctrl)
		log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
		log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

		dispatcher := NewDispatcher(engine, orderMock.NewMockRepository(ctrl), log, config.MatchingConfig{MailboxSize: 4})

		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				// Either outcome is fine, the point is no send on a
				// closed mailbox.
				_, _ = dispatcher.Submit(context.Background(), &orderv1.Order{ID: "order", ProductID: "product-1"})
			}()
		}
		dispatcher.Close()
		wg.Wait()

		ctrl.Finish()
	}
}
