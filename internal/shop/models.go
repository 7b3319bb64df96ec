package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	SKU         string          `json:"sku,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Address is read-only here: checkout snapshots it onto orders, management
// lives outside this service.
type Address struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CEP        string    `json:"cep"`
	Street     string    `json:"street"`
	Number     string    `json:"number"`
	Complement string    `json:"complement,omitempty"`
	District   string    `json:"district"`
	City       string    `json:"city"`
	State      string    `json:"state"` // UF, 2 letters
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Status    CartStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) IsActive() bool { return c.Status == CartActive }

type CartItem struct {
	ID        int64 `json:"id"`
	CartID    int64 `json:"cart_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// SummaryLine prices a cart item at the product's current price. Advisory
// only: nothing here is persisted and checkout re-prices under lock.
type SummaryLine struct {
	CartItemID int64           `json:"cart_item_id"`
	ProductID  int64           `json:"product_id"`
	Slug       string          `json:"slug"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	ImageURL   string          `json:"image_url,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type CartSummary struct {
	CartID int64           `json:"cart_id"`
	Items  []SummaryLine   `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type Order struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Status OrderStatus     `json:"status"`
	Total  decimal.Decimal `json:"total"`

	// Cart that originated the order. Nullable: the cart may be deleted later
	// while the order survives on its own snapshots.
	CartID *int64 `json:"cart_id,omitempty"`

	// Shipping address snapshot, copied field by field at checkout and never
	// re-read from the live address afterwards.
	ShippingCEP        string `json:"shipping_cep"`
	ShippingStreet     string `json:"shipping_street"`
	ShippingNumber     string `json:"shipping_number"`
	ShippingComplement string `json:"shipping_complement,omitempty"`
	ShippingDistrict   string `json:"shipping_district"`
	ShippingCity       string `json:"shipping_city"`
	ShippingState      string `json:"shipping_state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items   []OrderItem `json:"items,omitempty"`
	Payment *Payment    `json:"payment,omitempty"`
}

// NewOrderFromAddress builds a pending order with the shipping snapshot
// already copied from the given address.
func NewOrderFromAddress(userID int64, addr *Address) *Order {
	return &Order{
		UserID:             userID,
		Status:             OrderPending,
		Total:              decimal.Zero,
		ShippingCEP:        addr.CEP,
		ShippingStreet:     addr.Street,
		ShippingNumber:     addr.Number,
		ShippingComplement: addr.Complement,
		ShippingDistrict:   addr.District,
		ShippingCity:       addr.City,
		ShippingState:      addr.State,
	}
}

// RecalcTotal recomputes the order total from its loaded items. The stored
// total is only ever written by checkout or by an explicit call to this.
func (o *Order) RecalcTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	o.Total = total
	return total
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"` // price snapshot taken at checkout
}

func (it *OrderItem) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Payment struct {
	ID            int64         `json:"id"`
	OrderID       int64         `json:"order_id"`
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}
