package domain

import "errors"

var (
	ErrEventNotFound            = errors.New("event not found")
	ErrTicketTypeNotFound       = errors.New("ticket type not found")
	ErrSalesClosed              = errors.New("sales closed for ticket type")
	ErrInsufficientCapacity     = errors.New("insufficient capacity")
	ErrInvalidQuantity          = errors.New("invalid quantity")
	ErrInvalidCapacity          = errors.New("invalid capacity")
	ErrInvalidPrice             = errors.New("invalid price")
	ErrEventNameRequired        = errors.New("event name required")
	ErrTicketTypeNameRequired   = errors.New("ticket type name required")
	ErrIdempotencyKeyRequired   = errors.New("idempotency key required")
	ErrIdempotencyConflict      = errors.New("idempotency conflict")
	ErrHoldNotFound             = errors.New("hold not found")
	ErrHoldExpired              = errors.New("hold expired")
	ErrAlreadyConfirmed         = errors.New("hold already confirmed")
	ErrHoldExpiredDuringPayment = errors.New("hold expired during payment")
	ErrOrderNotFound            = errors.New("order not found")
	ErrOrderTerminal            = errors.New("order already in terminal state")
	ErrOrderNotAwaitingPayment  = errors.New("order not awaiting payment")
	ErrPaymentDeclined          = errors.New("payment declined")
	ErrBusy                     = errors.New("resource busy, retry later")
	ErrStoreUnavailable         = errors.New("store unavailable")
	ErrInvalidID                = errors.New("invalid id")
)
