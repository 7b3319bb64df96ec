package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "shop-backend/internal/kafka"
	"shop-backend/internal/redisx"
	"shop-backend/internal/shop"
	"shop-backend/pkg/logkey"
)

// Service maintains the order-status read model in Redis from the committed
// event stream. Handlers are idempotent and deduped by event id, so
// at-least-once delivery is safe to replay.
type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         *slog.Logger
}

// HandleOrderCreated seeds the status cache for a fresh order. The write is
// SETNX: order.created and order.paid travel on separate topics, so a paid
// status that landed first must not be regressed to pending.
func (s *Service) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventOrderCreated {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[shop.OrderCreatedPayload](env.Payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, p.UserID, p.OrderID)
	if err := s.Redis.SetNX(ctx, key, string(shop.OrderPending), redisx.TTLStatusCache).Err(); err != nil {
		return err
	}
	s.Log.Info("order projected",
		slog.String(logkey.EventID, env.EventID),
		slog.Int64(logkey.OrderID, p.OrderID),
		slog.Int64(logkey.UserID, p.UserID),
		slog.String("status", string(shop.OrderPending)))
	return nil
}

// HandleOrderPaid moves the cached status to paid and logs the payment
// confirmation line.
func (s *Service) HandleOrderPaid(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventOrderPaid {
		return nil
	}
	if s.seen(ctx, env.EventID) {
		return nil
	}

	p, err := kafkax.UnwrapPayload[shop.OrderPaidPayload](env.Payload)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, p.UserID, p.OrderID)
	if err := s.Redis.Set(ctx, key, string(shop.OrderPaid), redisx.TTLStatusCache).Err(); err != nil {
		return err
	}
	s.Log.Info("payment confirmed",
		slog.String(logkey.EventID, env.EventID),
		slog.Int64(logkey.OrderID, p.OrderID),
		slog.Int64(logkey.UserID, p.UserID),
		slog.String("method", string(p.Method)),
		slog.String("transaction_id", p.TransactionID),
		slog.String("total", p.Total.String()))
	return nil
}

// seen reports whether the event id was already handled and records it
// otherwise. Best effort: Redis trouble degrades to reprocessing, which the
// handlers tolerate.
func (s *Service) seen(ctx context.Context, eventID string) bool {
	key := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, eventID)
	exists, _ := redisx.Exists(ctx, s.Redis, key)
	if exists {
		return true
	}
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
	return false
}
