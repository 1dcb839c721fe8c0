package domain

import (
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/money"
)

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusFailed          OrderStatus = "failed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusFailed || s == OrderStatusCancelled
}

// Order is a buyer's purchase attempt for a quantity of one ticket type.
// Each order owns exactly one hold for its lifetime.
type Order struct {
	ID             string
	TicketTypeID   string
	Quantity       int
	UnitPrice      money.Money // snapshot at reservation time
	Total          money.Money // rounded to the minor unit
	Status         OrderStatus
	HoldID         string
	PaymentRef     string
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
