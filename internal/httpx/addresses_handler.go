package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/shop"
)

// AddressesHandler exposes the caller's saved addresses. Read-only: address
// management belongs to the account service, checkout only needs to pick one.
type AddressesHandler struct {
	Addresses AddressReader
}

func (h *AddressesHandler) Register(r chi.Router) {
	r.Get("/addresses", h.list)
	r.Get("/addresses/{id}", h.get)
}

func (h *AddressesHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Addresses.ListByUser(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AddressesHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	addressID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	addr, err := h.Addresses.ByIDForUser(ctx, uid, addressID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if addr == nil {
		writeError(w, r, fmt.Errorf("address %d: %w", addressID, shop.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, addr)
}
