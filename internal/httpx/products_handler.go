package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"shop-backend/internal/catalog"
	"shop-backend/internal/redisx"
	"shop-backend/internal/shop"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// ProductsHandler serves the public catalog. No auth: browsing needs no user.
type ProductsHandler struct {
	Products ProductReader
	Redis    *redis.Client
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{slug}", h.get)
}

func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	limit := intQuery(r, "limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := intQuery(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	ps, err := h.Products.List(ctx, catalog.ListParams{
		Query:  r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) try cache
	key := fmt.Sprintf(redisx.KeyProductDetail, slug)
	if b, err := h.Redis.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}

	// 2) fallback DB, refill cache
	p, err := h.Products.BySlug(ctx, slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, r, fmt.Errorf("product %q: %w", slug, shop.ErrNotFound))
		return
	}
	b, _ := json.Marshal(p)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLProductDetail).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
