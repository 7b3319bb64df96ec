package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"shop-backend/internal/address"
	"shop-backend/internal/auth"
	"shop-backend/internal/cart"
	"shop-backend/internal/catalog"
	"shop-backend/internal/checkout"
	"shop-backend/internal/config"
	"shop-backend/internal/httpx"
	kafkax "shop-backend/internal/kafka"
	"shop-backend/internal/orders"
	"shop-backend/internal/payment"
	"shop-backend/internal/postgres"
	"shop-backend/internal/redisx"
	"shop-backend/internal/shop"
	"shop-backend/internal/telemetry"
	"shop-backend/pkg/logkey"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTel, err := telemetry.Setup(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("telemetry setup failed", slog.String(logkey.Err, err.Error()))
		os.Exit(1)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		slog.Error("db connect failed", slog.String(logkey.Err, err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		slog.Error("migrate failed", slog.String(logkey.Err, err.Error()))
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderCreated, 1024)
	prodCreated.Start(ctx)
	prodPaid := kafkax.NewProducer(cfg.KafkaBrokers, shop.TopicOrderPaid, 1024)
	prodPaid.Start(ctx)

	// Engines & read models
	cartSvc := cart.NewService(cart.NewStore(db))
	checkoutSvc := checkout.NewService(checkout.NewStore(db))
	paymentSvc := payment.NewService(payment.NewStore(db))
	catalogRepo := &catalog.Repo{DB: db}
	ordersRepo := &orders.Repo{DB: db}
	addressRepo := &address.Repo{DB: db}

	router := httpx.NewRouter()
	(&httpx.ProductsHandler{Products: catalogRepo, Redis: rdb}).Register(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware([]byte(cfg.JWTSecret)))
		(&httpx.CartHandler{Cart: cartSvc}).Register(r)
		(&httpx.CheckoutHandler{Checkout: checkoutSvc, Producer: prodCreated, Redis: rdb, Service: cfg.ServiceName}).Register(r)
		(&httpx.OrdersHandler{Orders: ordersRepo, Payments: paymentSvc, Producer: prodPaid, Redis: rdb, Service: cfg.ServiceName}).Register(r)
		(&httpx.AddressesHandler{Addresses: addressRepo}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		slog.Info("http listening",
			slog.String(logkey.Service, cfg.ServiceName),
			slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("listen failed", slog.String(logkey.Err, err.Error()))
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prodCreated.Close() // stop intake -> flush & close writer
	prodPaid.Close()
	cancel() // stop producer loops
	prodCreated.WaitClosed()
	prodPaid.WaitClosed()
	_ = shutdownTel(ctx2)
}
