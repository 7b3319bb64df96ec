package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"shop-backend/internal/postgres"
	"shop-backend/internal/shop"
	"shop-backend/pkg/logkey"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes. Domain errors carry
// messages meant for the client; 5xx bodies stay generic and the detail goes
// to the log with the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errStatus(err)
	switch {
	case code == http.StatusInternalServerError:
		slog.Error("request failed",
			slog.String(logkey.TraceID, middleware.GetReqID(r.Context())),
			slog.String(logkey.Err, err.Error()))
		writeJSON(w, code, map[string]string{"error": "internal error"})
	case code == http.StatusServiceUnavailable:
		slog.Warn("transient conflict",
			slog.String(logkey.TraceID, middleware.GetReqID(r.Context())),
			slog.String(logkey.Err, err.Error()))
		writeJSON(w, code, map[string]string{"error": "temporarily unavailable, retry"})
	default:
		writeJSON(w, code, map[string]string{"error": err.Error()})
	}
}

func errStatus(err error) int {
	var unavailable *shop.ProductUnavailableError
	var outOfStock *shop.OutOfStockError
	switch {
	case errors.Is(err, shop.ErrInvalidQuantity), errors.Is(err, shop.ErrInvalidCart):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &unavailable), errors.As(err, &outOfStock), errors.Is(err, shop.ErrInvalidState):
		return http.StatusConflict
	case postgres.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
