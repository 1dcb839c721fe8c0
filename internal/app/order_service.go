package app

import (
	"context"

	"github.com/nazyhomayoun/learning-software-testing/internal/clock"
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
	"github.com/nazyhomayoun/learning-software-testing/internal/pricing"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order) error
}

// HoldLedger is the slice of the reservation service settlement drives.
type HoldLedger interface {
	Reserve(ctx context.Context, in ReserveInput) (ReserveResult, error)
	Confirm(ctx context.Context, holdID string) (domain.Hold, error)
	Release(ctx context.Context, holdID string) error
}

// PaymentGateway yields an opaque pass/fail outcome per order. A returned
// error means the charge attempt itself could not run.
type PaymentGateway interface {
	Charge(ctx context.Context, order domain.Order, token string) (domain.PaymentOutcome, error)
}

// Notifier receives order state transitions, fire-and-forget. Failures are
// the notifier's problem; settlement never rolls back over them.
type Notifier interface {
	OrderTransition(ctx context.Context, order domain.Order)
}

// OrderService drives settlement: validate, hold, await payment, commit or
// roll back. Orders are terminal once Confirmed, Failed, or Cancelled.
type OrderService struct {
	repo     OrderRepository
	ledger   HoldLedger
	pricer   *pricing.Engine
	gateway  PaymentGateway
	notifier Notifier
	clock    clock.Clock
}

func NewOrderService(repo OrderRepository, ledger HoldLedger, pricer *pricing.Engine, gateway PaymentGateway, notifier Notifier, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:     repo,
		ledger:   ledger,
		pricer:   pricer,
		gateway:  gateway,
		notifier: notifier,
		clock:    clk,
	}
}

type CreateOrderInput struct {
	TicketTypeID string
	Quantity     int
}

// Create reserves inventory and prices the line in one transaction. On
// success the order is AwaitingPayment and owns its hold; on
// ErrInsufficientCapacity nothing is persisted and the rejection surfaces
// immediately, with no retry.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if in.Quantity <= 0 {
		return domain.Order{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var created domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.ledger.Reserve(txCtx, ReserveInput{
			TicketTypeID: in.TicketTypeID,
			Quantity:     in.Quantity,
		})
		if err != nil {
			return err
		}

		quoted, err := s.pricer.Quote(res.TicketType.UnitPrice, in.Quantity)
		if err != nil {
			return err
		}

		order := domain.Order{
			ID:           newID(),
			TicketTypeID: in.TicketTypeID,
			Quantity:     in.Quantity,
			UnitPrice:    res.TicketType.UnitPrice,
			Total:        s.pricer.SettleTotal(quoted),
			Status:       domain.OrderStatusAwaitingPayment,
			HoldID:       res.Hold.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.CreateOrder(txCtx, order); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.notifier.OrderTransition(ctx, created)
	return created, nil
}

type ConfirmOrderInput struct {
	OrderID        string
	PaymentToken   string
	IdempotencyKey string
}

// Confirm settles an AwaitingPayment order against the payment outcome.
// The idempotency key is claimed on the order row, under its lock, before
// the gateway is called, so at most one confirm per order ever charges: a
// concurrent duplicate sees the claim and gets ErrBusy while the charge is
// in flight, or the confirmed order once it settles. A different key on a
// claimed or confirmed order is an idempotency conflict. A hold that
// expired before payment completed fails the order with
// ErrHoldExpiredDuringPayment; the buyer must start a new order.
func (s *OrderService) Confirm(ctx context.Context, in ConfirmOrderInput) (domain.Order, error) {
	if in.IdempotencyKey == "" {
		return domain.Order{}, domain.ErrIdempotencyKeyRequired
	}

	var order domain.Order
	var replay bool

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if current.Status == domain.OrderStatusConfirmed {
			if current.IdempotencyKey == in.IdempotencyKey {
				order = current
				replay = true
				return nil
			}
			return domain.ErrIdempotencyConflict
		}
		if current.Status.Terminal() {
			return domain.ErrOrderTerminal
		}
		if current.Status != domain.OrderStatusAwaitingPayment {
			return domain.ErrOrderNotAwaitingPayment
		}
		if current.IdempotencyKey != "" {
			if current.IdempotencyKey != in.IdempotencyKey {
				return domain.ErrIdempotencyConflict
			}
			// Same key, charge still in flight.
			return domain.ErrBusy
		}

		current.IdempotencyKey = in.IdempotencyKey
		current.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateOrder(txCtx, current); err != nil {
			return err
		}
		order = current
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	if replay {
		return order, nil
	}

	outcome, err := s.gateway.Charge(ctx, order, in.PaymentToken)
	if err != nil {
		// The charge never ran; drop the claim so a retry can charge.
		s.releaseClaim(ctx, in.OrderID, in.IdempotencyKey)
		return domain.Order{}, err
	}

	now := s.clock.Now()
	var settled domain.Order
	var settleErr error

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetOrderForUpdate(txCtx, in.OrderID)
		if err != nil {
			return err
		}
		if current.Status == domain.OrderStatusConfirmed {
			if current.IdempotencyKey == in.IdempotencyKey {
				settled = current
				return nil
			}
			return domain.ErrIdempotencyConflict
		}
		if current.Status.Terminal() {
			return domain.ErrOrderTerminal
		}

		current.PaymentRef = outcome.Ref
		current.UpdatedAt = now

		if !outcome.Success {
			if err := s.ledger.Release(txCtx, current.HoldID); err != nil {
				return err
			}
			current.Status = domain.OrderStatusFailed
			if err := s.repo.UpdateOrder(txCtx, current); err != nil {
				return err
			}
			settled = current
			settleErr = domain.ErrPaymentDeclined
			return nil
		}

		if _, err := s.ledger.Confirm(txCtx, current.HoldID); err != nil {
			if err == domain.ErrHoldExpired {
				current.Status = domain.OrderStatusFailed
				if uerr := s.repo.UpdateOrder(txCtx, current); uerr != nil {
					return uerr
				}
				settled = current
				settleErr = domain.ErrHoldExpiredDuringPayment
				return nil
			}
			return err
		}

		current.Status = domain.OrderStatusConfirmed
		current.IdempotencyKey = in.IdempotencyKey
		if err := s.repo.UpdateOrder(txCtx, current); err != nil {
			return err
		}
		settled = current
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.notifier.OrderTransition(ctx, settled)
	if settleErr != nil {
		return domain.Order{}, settleErr
	}
	return settled, nil
}

// releaseClaim clears an idempotency key claimed by a confirm whose charge
// attempt never ran. Best effort; a leftover claim only blocks retries with
// the same key until it is cleared.
func (s *OrderService) releaseClaim(ctx context.Context, orderID, key string) {
	_ = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if current.Status != domain.OrderStatusAwaitingPayment || current.IdempotencyKey != key {
			return nil
		}
		current.IdempotencyKey = ""
		current.UpdatedAt = s.clock.Now()
		return s.repo.UpdateOrder(txCtx, current)
	})
}

// Cancel moves any non-terminal order to Cancelled, releasing its hold if
// still Active. Terminal orders are immutable.
func (s *OrderService) Cancel(ctx context.Context, orderID string) (domain.Order, error) {
	now := s.clock.Now()
	var cancelled domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return domain.ErrOrderTerminal
		}

		if order.HoldID != "" {
			if err := s.ledger.Release(txCtx, order.HoldID); err != nil {
				return err
			}
		}

		order.Status = domain.OrderStatusCancelled
		order.UpdatedAt = now
		if err := s.repo.UpdateOrder(txCtx, order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.notifier.OrderTransition(ctx, cancelled)
	return cancelled, nil
}

// Get returns an order by ID.
func (s *OrderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}
