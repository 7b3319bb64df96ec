// Package logkey centralizes slog attribute keys so log lines stay
// greppable across the api and the worker.
package logkey

const (
	TraceID = "trace_id"
	Err     = "error"
	Service = "service"
	Topic   = "topic"
	OrderID = "order_id"
	UserID  = "user_id"
	CartID  = "cart_id"
	EventID = "event_id"
)
