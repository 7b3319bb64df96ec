package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"shop-backend/internal/postgres"
	"shop-backend/internal/shop"
)

// Service implements the cart operations. Every mutation runs in a single
// transaction with the user's active cart row locked, so concurrent requests
// for the same user serialize instead of corrupting quantities.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// GetOrCreateActiveCart returns the user's active cart, creating it if none
// exists.
func (s *Service) GetOrCreateActiveCart(ctx context.Context, userID int64) (*shop.Cart, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cart, err := s.getOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cart, nil
}

// AddItem adds qty units of a product to the user's active cart, incrementing
// the existing line if one is present. The combined quantity is capped by the
// product's current stock; the stock itself is not reserved until checkout.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, qty int) (*shop.Cart, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", shop.ErrInvalidQuantity)
	}
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	product, err := s.store.ActiveProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &shop.ProductUnavailableError{ProductID: productID}
	}
	if product.Stock < qty {
		return nil, &shop.ProductUnavailableError{ProductID: productID, Insufficient: true, Available: product.Stock}
	}

	cart, err := s.getOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	existing, _, err := s.store.ItemQuantity(ctx, tx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < existing+qty {
		return nil, &shop.ProductUnavailableError{ProductID: productID, Insufficient: true, Available: product.Stock}
	}
	if err := s.store.AddItemQuantity(ctx, tx, cart.ID, productID, qty); err != nil {
		return nil, err
	}
	ts, err := s.store.TouchCart(ctx, tx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.UpdatedAt = ts

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cart, nil
}

// SetItemQuantity pins a product's line to an exact quantity. Zero deletes the
// line; zero for a product not in the cart is a no-op. The product must be
// active and carry enough stock even when the line is being created.
func (s *Service) SetItemQuantity(ctx context.Context, userID, productID int64, qty int) (*shop.Cart, error) {
	if qty < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", shop.ErrInvalidQuantity)
	}
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	product, err := s.store.ActiveProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &shop.ProductUnavailableError{ProductID: productID}
	}

	cart, err := s.getOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	_, found, err := s.store.ItemQuantity(ctx, tx, cart.ID, productID)
	if err != nil {
		return nil, err
	}
	switch {
	case !found && qty == 0:
		// nothing to remove
	case qty == 0:
		if err := s.store.DeleteItemByProduct(ctx, tx, cart.ID, productID); err != nil {
			return nil, err
		}
	default:
		if product.Stock < qty {
			return nil, &shop.ProductUnavailableError{ProductID: productID, Insufficient: true, Available: product.Stock}
		}
		if err := s.store.SetItemQuantity(ctx, tx, cart.ID, productID, qty); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cart, nil
}

// RemoveItem drops a product from the user's active cart. Removing a product
// that is not in the cart is a no-op, not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int64) (*shop.Cart, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cart, err := s.getOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteItemByProduct(ctx, tx, cart.ID, productID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cart, nil
}

// RemoveItemByID deletes a cart line addressed by its own id. The line must
// belong to the user's active cart.
func (s *Service) RemoveItemByID(ctx context.Context, userID, itemID int64) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	item, err := s.store.ItemForUpdate(ctx, tx, userID, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("cart item %d: %w", itemID, shop.ErrNotFound)
	}
	if err := s.store.DeleteItem(ctx, tx, item.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpdateItemQuantity changes a cart line addressed by its own id. A quantity
// of zero or less deletes the line and returns nil. Unlike SetItemQuantity,
// the validation order follows the line: the product is checked only after
// the line is found, and an inactive product blocks the update.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID int64, qty int) (*shop.CartItem, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	item, err := s.store.ItemForUpdate(ctx, tx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("cart item %d: %w", itemID, shop.ErrNotFound)
	}

	if qty <= 0 {
		if err := s.store.DeleteItem(ctx, tx, item.ID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, nil
	}

	product, err := s.store.ProductByID(ctx, tx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, &shop.ProductUnavailableError{ProductID: item.ProductID}
	}
	if qty > product.Stock {
		return nil, &shop.OutOfStockError{ProductID: product.ID, ProductName: product.Name, Available: product.Stock}
	}
	if err := s.store.UpdateItemQuantity(ctx, tx, item.ID, qty); err != nil {
		return nil, err
	}
	item.Quantity = qty

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return item, nil
}

// Summarize prices the cart at current product prices and totals it.
func (s *Service) Summarize(ctx context.Context, cart *shop.Cart) (*shop.CartSummary, error) {
	lines, err := s.store.Lines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	total := decimal.New(0, -2)
	for i := range lines {
		lines[i].Subtotal = lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		total = total.Add(lines[i].Subtotal)
	}
	return &shop.CartSummary{CartID: cart.ID, Items: lines, Total: total}, nil
}

func (s *Service) getOrCreate(ctx context.Context, tx postgres.Tx, userID int64) (*shop.Cart, error) {
	cart, err := s.store.ActiveCartForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	return s.store.CreateActiveCart(ctx, tx, userID)
}
