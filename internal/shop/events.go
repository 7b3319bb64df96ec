package shop

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated = "OrderCreated"
	EventOrderPaid    = "OrderPaid"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderCreatedPayload struct {
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"user_id"`
	Items   []ItemPrice     `json:"items"`
	Total   decimal.Decimal `json:"total"`
}

type OrderPaidPayload struct {
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	PaymentID     int64           `json:"payment_id"`
	Method        PaymentMethod   `json:"method"`
	TransactionID string          `json:"transaction_id"`
	Total         decimal.Decimal `json:"total"`
	PaidAt        time.Time       `json:"paid_at"`
}
