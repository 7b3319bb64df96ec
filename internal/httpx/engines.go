package httpx

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"shop-backend/internal/catalog"
	"shop-backend/internal/orders"
	"shop-backend/internal/shop"
)

// The handlers talk to the engines and read models through these interfaces
// so tests can stand in for them.

type CartEngine interface {
	GetOrCreateActiveCart(ctx context.Context, userID int64) (*shop.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, qty int) (*shop.Cart, error)
	SetItemQuantity(ctx context.Context, userID, productID int64, qty int) (*shop.Cart, error)
	RemoveItem(ctx context.Context, userID, productID int64) (*shop.Cart, error)
	RemoveItemByID(ctx context.Context, userID, itemID int64) error
	UpdateItemQuantity(ctx context.Context, userID, itemID int64, qty int) (*shop.CartItem, error)
	Summarize(ctx context.Context, cart *shop.Cart) (*shop.CartSummary, error)
}

type CheckoutEngine interface {
	Checkout(ctx context.Context, userID, cartID, addressID int64) (*shop.Order, error)
}

type PaymentEngine interface {
	SimulatePayment(ctx context.Context, userID, orderID int64, method shop.PaymentMethod) (*shop.Payment, bool, error)
}

type ProductReader interface {
	List(ctx context.Context, p catalog.ListParams) ([]shop.Product, error)
	BySlug(ctx context.Context, slug string) (*shop.Product, error)
}

type OrderReader interface {
	ListByUser(ctx context.Context, userID int64, p orders.ListParams) ([]shop.Order, error)
	ByIDForUser(ctx context.Context, userID, orderID int64) (*shop.Order, error)
	StatusByIDForUser(ctx context.Context, userID, orderID int64) (shop.OrderStatus, bool, error)
}

type AddressReader interface {
	ListByUser(ctx context.Context, userID int64) ([]shop.Address, error)
	ByIDForUser(ctx context.Context, userID, addressID int64) (*shop.Address, error)
}

// Publisher is satisfied by kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
