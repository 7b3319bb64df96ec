package checkout

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"shop-backend/internal/shop"
)

// Service converts an active cart into a pending order. The whole conversion
// is one transaction: cart row and every referenced product row stay locked
// until commit, and any failure leaves cart, products, and orders untouched.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// Checkout validates the cart under lock, snapshots address and prices onto a
// new pending order, decrements stock, and converts the cart. The stock check
// here is the authoritative one; whatever the cart advisories said earlier is
// irrelevant once the product rows are locked.
func (s *Service) Checkout(ctx context.Context, userID, cartID, addressID int64) (*shop.Order, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	addr, err := s.store.AddressByIDForUser(ctx, tx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if addr == nil {
		return nil, fmt.Errorf("address %d: %w", addressID, shop.ErrInvalidCart)
	}

	cart, err := s.store.ActiveCartForUpdate(ctx, tx, userID, cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("no active cart %d: %w", cartID, shop.ErrInvalidCart)
	}

	items, err := s.store.CartItems(ctx, tx, cart.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart %d is empty: %w", cart.ID, shop.ErrInvalidCart)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.store.ActiveProductsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	// cart_items is unique per product, so a shorter result means a product
	// vanished or was deactivated since it entered the cart.
	if len(products) != len(items) {
		return nil, fmt.Errorf("cart %d references unavailable products: %w", cart.ID, shop.ErrInvalidCart)
	}
	byID := make(map[int64]shop.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("cart %d references unavailable products: %w", cart.ID, shop.ErrInvalidCart)
		}
		if p.Stock < it.Quantity {
			return nil, &shop.OutOfStockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock}
		}
	}

	order := shop.NewOrderFromAddress(userID, addr)
	order.CartID = &cart.ID
	if err := s.store.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	total := decimal.New(0, -2)
	for _, it := range items {
		p := byID[it.ProductID]
		oi := shop.OrderItem{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		}
		if err := s.store.CreateOrderItem(ctx, tx, &oi); err != nil {
			return nil, err
		}
		if err := s.store.DecrementStock(ctx, tx, p.ID, it.Quantity); err != nil {
			return nil, err
		}
		total = total.Add(oi.Subtotal())
		order.Items = append(order.Items, oi)
	}
	if err := s.store.SetOrderTotal(ctx, tx, order.ID, total); err != nil {
		return nil, err
	}
	order.Total = total

	if err := s.store.ConvertCart(ctx, tx, cart.ID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteCartItems(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}
