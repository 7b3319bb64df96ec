package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shop-backend/internal/shop"
)

type CartHandler struct {
	Cart CartEngine
}

type addItemReq struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity"`
}

type setItemReq struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity"`
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items", h.setItemQuantity)
	r.Patch("/cart/items/{itemID}", h.updateItem)
	r.Delete("/cart/items/{itemID}", h.removeItemByID)
	r.Delete("/cart/products/{productID}", h.removeProduct)
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := h.Cart.GetOrCreateActiveCart(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.summary(ctx, w, r, cart, http.StatusOK)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req addItemReq
	if err := decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	ctx, span := tracer.Start(ctx, "cart_add_item")
	defer span.End()

	cart, err := h.Cart.AddItem(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		span.RecordError(err)
		writeError(w, r, err)
		return
	}
	h.summary(ctx, w, r, cart, http.StatusOK)
}

func (h *CartHandler) setItemQuantity(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	var req setItemReq
	if err := decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := h.Cart.SetItemQuantity(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.summary(ctx, w, r, cart, http.StatusOK)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req updateItemReq
	if err := decodeValid(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.Cart.UpdateItemQuantity(ctx, uid, itemID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if item == nil { // quantity <= 0 deleted the line
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CartHandler) removeItemByID(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cart.RemoveItemByID(ctx, uid, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) removeProduct(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	productID, err := pathID(r, "productID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := h.Cart.RemoveItem(ctx, uid, productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.summary(ctx, w, r, cart, http.StatusOK)
}

// summary is the common success response: cart mutations answer with the
// freshly priced cart view.
func (h *CartHandler) summary(ctx context.Context, w http.ResponseWriter, r *http.Request, cart *shop.Cart, code int) {
	sum, err := h.Cart.Summarize(ctx, cart)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, code, sum)
}
