package domain

import "time"

type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusConfirmed HoldStatus = "confirmed"
	HoldStatusExpired   HoldStatus = "expired"
	HoldStatusReleased  HoldStatus = "released"
)

// Hold is a temporary claim on inventory for a limited time. It is owned by
// the order that created it until it reaches a terminal status.
type Hold struct {
	ID           string
	TicketTypeID string
	Quantity     int
	Status       HoldStatus
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the hold's window has passed at the given instant.
// Only Active holds can expire; terminal statuses keep their meaning.
func (h Hold) Expired(now time.Time) bool {
	return h.Status == HoldStatusActive && !h.ExpiresAt.After(now)
}
