package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muhammadchandra19/marketplace/internal/infrastructure/kafka/tradefeed"
	orderRepo "github.com/muhammadchandra19/marketplace/internal/infrastructure/postgresql/order"
	productRepo "github.com/muhammadchandra19/marketplace/internal/infrastructure/postgresql/product"
	tradeRepo "github.com/muhammadchandra19/marketplace/internal/infrastructure/postgresql/trade"
	"github.com/muhammadchandra19/marketplace/internal/usecase/matching"
	orderUc "github.com/muhammadchandra19/marketplace/internal/usecase/order"
	orderreader "github.com/muhammadchandra19/marketplace/internal/usecase/order-reader"
	productUc "github.com/muhammadchandra19/marketplace/internal/usecase/product"
	"github.com/muhammadchandra19/marketplace/pkg/config"
	"github.com/muhammadchandra19/marketplace/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/marketplace/pkg/logger"
	"github.com/muhammadchandra19/marketplace/pkg/migration"
	"github.com/muhammadchandra19/marketplace/pkg/postgresql"
	"github.com/muhammadchandra19/marketplace/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}

	opts := []logger.Options{
		logger.WithLoggingLevel(logger.ParseLevel(cfg.App.LogLevel)),
		logger.WithServiceName(cfg.App.Name),
	}
	if cfg.App.Environment == "development" {
		opts = append(opts, logger.WithDevelopmentMode())
	}

	log, err = logger.NewLogger(opts...)
	if err != nil {
		panic(err)
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	db, err := postgresql.NewClient(ctx, cfg.PostgreSQL)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "init_db"})
		return
	}
	defer db.Close()

	migrator := migration.NewRunner(db, migration.Config{Dir: cfg.App.MigrationsDir}, log)
	if err := migrator.Up(ctx, 0); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "migrate_db"})
		return
	}

	rclient := redis.NewClient(log, &cfg.Redis)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
		return
	}
	defer rclient.Disconnect(context.Background())

	orders := orderRepo.NewRepository(db, log)
	trades := tradeRepo.NewRepository(db, log)
	products := productRepo.NewRepository(db, log)

	notifier := tradefeed.NewPublisher(cfg.TradeKafka, log)
	defer notifier.Close()

	engine := matching.NewEngine(orders, trades, notifier, log, cfg.Matching)
	dispatcher := matching.NewDispatcher(engine, orders, log, cfg.Matching)
	defer dispatcher.Close()

	productUsecase := productUc.NewUsecase(products, rclient, log, cfg.Matching.ProductCacheTTL, cfg.Redis.PrefixKey)

	orderUsecase := orderUc.NewUsecase(orders, productUsecase, dispatcher, log)

	reader := orderreader.NewReader(cfg.OrderKafka, log)
	intake := orderreader.NewIntake(reader, orderUsecase, log)

	go func() {
		if err := intake.Run(ctx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "order_intake"})
		}
	}()

	hc := healthcheck.New(2 * time.Second)
	hc.Register("postgresql", postgresql.HealthChecker(db))
	hc.Register("redis", rclient.Ping)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler: hc.Handler(http.NotFoundHandler()),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, logger.Field{Key: "action", Value: "http_listen"})
		}
	}()

	log.Info("Matching service started successfully",
		logger.Field{Key: "httpPort", Value: cfg.App.HTTPPort},
		logger.Field{Key: "orderTopic", Value: cfg.OrderKafka.Topic},
		logger.Field{Key: "tradeTopic", Value: cfg.TradeKafka.Topic},
	)

	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "http_shutdown"})
	}

	log.Info("Matching service shutdown complete")
}
