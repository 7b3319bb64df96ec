package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("shop-backend/internal/httpx")
	meter  = otel.Meter("shop-backend/internal/httpx")

	checkoutCompleted metric.Int64Counter
	paymentsSimulated metric.Int64Counter
)

func init() {
	checkoutCompleted, _ = meter.Int64Counter("checkout_completed_total",
		metric.WithDescription("Carts successfully converted to orders."))
	paymentsSimulated, _ = meter.Int64Counter("payments_simulated_total",
		metric.WithDescription("Orders settled through the mock gateway."))
}

// traceID picks the id stamped on outgoing events: the active span's trace id
// when one is recording, otherwise the request id.
func traceID(r *http.Request) string {
	if span := trace.SpanFromContext(r.Context()); span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return middleware.GetReqID(r.Context())
}
