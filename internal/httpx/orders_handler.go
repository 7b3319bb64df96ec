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
	"github.com/shopspring/decimal"

	kafkax "shop-backend/internal/kafka"
	"shop-backend/internal/orders"
	"shop-backend/internal/redisx"
	"shop-backend/internal/shop"
)

type OrdersHandler struct {
	Orders   OrderReader
	Payments PaymentEngine
	Producer Publisher // order.paid
	Redis    *redis.Client
	Service  string
}

type payReq struct {
	Method string `json:"method" validate:"required,oneof=pix card boleto"`
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Get("/orders/{id}/status", h.status)
	r.Post("/orders/{id}/pay", h.pay)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Orders.ListByUser(ctx, uid, orders.ListParams{
		Limit:  intQuery(r, "limit", 0),
		Offset: intQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	order, err := h.Orders.ByIDForUser(ctx, uid, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if order == nil {
		writeError(w, r, fmt.Errorf("order %d: %w", orderID, shop.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) try cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, uid, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": s})
		return
	}

	// 2) fallback DB, refill cache
	st, found, err := h.Orders.StatusByIDForUser(ctx, uid, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, fmt.Errorf("order %d: %w", orderID, shop.ErrNotFound))
		return
	}
	_ = h.Redis.Set(ctx, key, string(st), redisx.TTLStatusCache).Err()
	writeJSON(w, http.StatusOK, map[string]string{"status": string(st)})
}

func (h *OrdersHandler) pay(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	orderID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req payReq
	if err := decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "simulate_payment")
	defer span.End()

	pay, settled, err := h.Payments.SimulatePayment(ctx, uid, orderID, shop.PaymentMethod(req.Method))
	if err != nil {
		span.RecordError(err)
		writeError(w, r, err)
		return
	}

	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, uid, orderID)
	_ = h.Redis.Set(ctx, statusKey, string(shop.OrderPaid), redisx.TTLStatusCache).Err()

	if settled {
		paymentsSimulated.Add(ctx, 1)
		h.publishPaid(ctx, r, uid, pay)
	}
	writeJSON(w, http.StatusOK, pay)
}

// publishPaid announces a fresh settlement. The order total rides along so
// consumers need no extra lookup.
func (h *OrdersHandler) publishPaid(ctx context.Context, r *http.Request, uid int64, pay *shop.Payment) {
	total := decimal.Zero
	if o, err := h.Orders.ByIDForUser(ctx, uid, pay.OrderID); err == nil && o != nil {
		total = o.Total
	}

	paidAt := time.Now().UTC()
	if pay.PaidAt != nil {
		paidAt = *pay.PaidAt
	}
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderPaid,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID(r),
		CorrelationID: strconv.FormatInt(pay.OrderID, 10),
		Payload: kafkax.MustMarshal(shop.OrderPaidPayload{
			OrderID:       pay.OrderID,
			UserID:        uid,
			PaymentID:     pay.ID,
			Method:        pay.Method,
			TransactionID: pay.TransactionID,
			Total:         total,
			PaidAt:        paidAt,
		}),
	}
	h.Producer.Publish(shop.PartitionKey(pay.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderPaid)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
