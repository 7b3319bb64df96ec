package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shop-backend/internal/config"
	kafkax "shop-backend/internal/kafka"
	"shop-backend/internal/projector"
	"shop-backend/internal/redisx"
	"shop-backend/internal/shop"
	"shop-backend/internal/telemetry"
	"shop-backend/pkg/logkey"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTel, err := telemetry.Setup(ctx, cfg.ServiceName+"-worker", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("telemetry setup failed", slog.String(logkey.Err, err.Error()))
		os.Exit(1)
	}

	// Redis is the projector's only store; the DB of record is never touched
	// from here.
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &projector.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-projector",
		Log:         logger,
	}

	created := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, shop.TopicOrderCreated, cfg.WorkerCount)
	paid := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, shop.TopicOrderPaid, cfg.WorkerCount)

	start := func(topic string, c *kafkax.Consumer, h kafkax.Handler) {
		go func() {
			slog.Info("projector consumer started",
				slog.String(logkey.Topic, topic),
				slog.String("group", cfg.WorkerGroup),
				slog.Int("workers", cfg.WorkerCount))
			if err := c.Start(ctx, h); err != nil {
				slog.Error("consumer exit", slog.String(logkey.Topic, topic), slog.String(logkey.Err, err.Error()))
				cancel()
			}
		}()
	}
	start(shop.TopicOrderCreated, created, svc.HandleOrderCreated)
	start(shop.TopicOrderPaid, paid, svc.HandleOrderPaid)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		slog.Info("shutting down projector")
	case <-ctx.Done():
	}
	cancel()
	time.Sleep(500 * time.Millisecond)
	_ = shutdownTel(context.Background())
}
