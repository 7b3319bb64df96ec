package payment

import (
	"context"
	"fmt"
	"time"

	"shop-backend/internal/shop"
)

// Service settles orders through a mock gateway. There is no external call:
// settlement is decided locally, inside the same transaction that flips the
// order to paid, so order and payment can never disagree.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

// SimulatePayment marks the order paid. Replaying it against an already paid
// order returns the existing payment unchanged with settled=false, so clients
// can retry safely and callers know nothing new happened. A payment stuck in
// failed or refunded blocks the order instead.
func (s *Service) SimulatePayment(ctx context.Context, userID, orderID int64, method shop.PaymentMethod) (pay *shop.Payment, settled bool, err error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	order, err := s.store.OrderForUpdate(ctx, tx, userID, orderID)
	if err != nil {
		return nil, false, err
	}
	if order == nil {
		return nil, false, fmt.Errorf("order %d: %w", orderID, shop.ErrNotFound)
	}

	pay, err = s.store.PaymentByOrder(ctx, tx, order.ID)
	if err != nil {
		return nil, false, err
	}
	if pay != nil && pay.Status == shop.PaymentPaid {
		if err := tx.Commit(ctx); err != nil {
			return nil, false, fmt.Errorf("commit: %w", err)
		}
		return pay, false, nil
	}
	if pay != nil && pay.Status != shop.PaymentPending {
		return nil, false, fmt.Errorf("payment for order %d is %s: %w", order.ID, pay.Status, shop.ErrInvalidState)
	}
	if !order.Status.CanTransitionTo(shop.OrderPaid) {
		return nil, false, fmt.Errorf("order %d is %s: %w", order.ID, order.Status, shop.ErrInvalidState)
	}

	now := time.Now().UTC()
	txid := "MOCK-" + now.Format("20060102150405")

	if pay != nil {
		// a pending payment is resumed, not duplicated
		if err := s.store.MarkPaymentPaid(ctx, tx, pay.ID, txid, now); err != nil {
			return nil, false, err
		}
		pay.Status = shop.PaymentPaid
		pay.TransactionID = txid
		pay.PaidAt = &now
	} else {
		pay = &shop.Payment{
			OrderID:       order.ID,
			Method:        method,
			Status:        shop.PaymentPaid,
			TransactionID: txid,
			PaidAt:        &now,
		}
		if err := s.store.CreatePayment(ctx, tx, pay); err != nil {
			return nil, false, err
		}
	}
	if err := s.store.SetOrderStatus(ctx, tx, order.ID, shop.OrderPaid); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit: %w", err)
	}
	return pay, true, nil
}
