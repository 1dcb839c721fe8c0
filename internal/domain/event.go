package domain

import (
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/money"
)

// Event represents a ticketed event. Inventory is tracked per ticket type.
type Event struct {
	ID       string
	Name     string
	StartsAt time.Time
}

// TicketType is a sellable unit of an event: a seat class or a
// general-admission tier with its own capacity and price.
type TicketType struct {
	ID         string
	EventID    string
	Name       string
	Capacity   int
	UnitPrice  money.Money
	SalesOpen  bool
	SalesStart time.Time
	SalesEnd   time.Time
}

// OnSale reports whether the ticket type can be reserved at the given
// instant. A zero SalesStart/SalesEnd leaves that bound open.
func (t TicketType) OnSale(now time.Time) bool {
	if !t.SalesOpen {
		return false
	}
	if !t.SalesStart.IsZero() && now.Before(t.SalesStart) {
		return false
	}
	if !t.SalesEnd.IsZero() && !now.Before(t.SalesEnd) {
		return false
	}
	return true
}
