package shop

type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartConverted CartStatus = "converted"
	CartAbandoned CartStatus = "abandoned"
)

var cartNext = map[CartStatus]map[CartStatus]bool{
	CartActive:    {CartConverted: true, CartAbandoned: true},
	CartConverted: {},
	CartAbandoned: {},
}

func (s CartStatus) CanTransitionTo(to CartStatus) bool { return cartNext[s][to] }

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCanceled  OrderStatus = "canceled"
)

// Cancellation edges exist in the machine even though no operation in this
// service cancels; only pending->paid is exercised here.
var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderPaid: true, OrderCanceled: true},
	OrderPaid:      {OrderShipped: true, OrderCanceled: true},
	OrderShipped:   {OrderDelivered: true},
	OrderDelivered: {},
	OrderCanceled:  {},
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool { return orderNext[s][to] }

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

var paymentNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:  {PaymentPaid: true, PaymentFailed: true},
	PaymentPaid:     {PaymentRefunded: true},
	PaymentFailed:   {},
	PaymentRefunded: {},
}

func (s PaymentStatus) CanTransitionTo(to PaymentStatus) bool { return paymentNext[s][to] }

type PaymentMethod string

const (
	MethodPix    PaymentMethod = "pix"
	MethodCard   PaymentMethod = "card"
	MethodBoleto PaymentMethod = "boleto"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodPix, MethodCard, MethodBoleto:
		return true
	}
	return false
}
