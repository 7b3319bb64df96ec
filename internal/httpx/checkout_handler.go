package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "shop-backend/internal/kafka"
	"shop-backend/internal/redisx"
	"shop-backend/internal/shop"
)

type CheckoutHandler struct {
	Checkout CheckoutEngine
	Producer Publisher // order.created
	Redis    *redis.Client
	Service  string
}

type checkoutReq struct {
	CartID    int64 `json:"cart_id" validate:"required"`
	AddressID int64 `json:"address_id" validate:"required"`
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req checkoutReq
	if err := decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()

	order, err := h.Checkout.Checkout(ctx, uid, req.CartID, req.AddressID)
	if err != nil {
		span.RecordError(err)
		writeError(w, r, err)
		return
	}
	checkoutCompleted.Add(ctx, 1)

	// commit is done; cache and announce
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, order.UserID, order.ID)
	_ = h.Redis.Set(ctx, statusKey, string(order.Status), redisx.TTLStatusCache).Err()
	h.publishCreated(r, order)

	writeJSON(w, http.StatusCreated, order)
}

func (h *CheckoutHandler) publishCreated(r *http.Request, o *shop.Order) {
	items := make([]shop.ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, shop.ItemPrice{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID(r),
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload: kafkax.MustMarshal(shop.OrderCreatedPayload{
			OrderID: o.ID,
			UserID:  o.UserID,
			Items:   items,
			Total:   o.Total,
		}),
	}
	h.Producer.Publish(shop.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
