package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

const (
	codeMethodNotAllowed         = "method_not_allowed"
	codeNotFound                 = "not_found"
	codeInvalidRequestBody       = "invalid_request_body"
	codeInvalidStartsAt          = "invalid_starts_at"
	codeInvalidID                = "invalid_id"
	codeEventNameRequired        = "event_name_required"
	codeTicketTypeNameRequired   = "ticket_type_name_required"
	codeInvalidQuantity          = "invalid_quantity"
	codeInvalidCapacity          = "invalid_capacity"
	codeInvalidPrice             = "invalid_price"
	codeIdempotencyRequired      = "idempotency_key_required"
	codeInsufficientCapacity     = "insufficient_capacity"
	codeSalesClosed              = "sales_closed"
	codeTicketTypeNotFound       = "ticket_type_not_found"
	codeEventNotFound            = "event_not_found"
	codeHoldNotFound             = "hold_not_found"
	codeHoldExpired              = "hold_expired"
	codeHoldExpiredDuringPayment = "hold_expired_during_payment"
	codeAlreadyConfirmed         = "hold_already_confirmed"
	codeOrderNotFound            = "order_not_found"
	codeOrderTerminal            = "order_terminal"
	codeOrderNotAwaitingPayment  = "order_not_awaiting_payment"
	codeIdempotencyConflict      = "idempotency_conflict"
	codePaymentDeclined          = "payment_declined"
	codeBusy                     = "busy"
	codeStoreUnavailable         = "store_unavailable"
	codeInternalError            = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Business
// conditions are expected outcomes; only unknown errors become 500s.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrEventNameRequired):
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case errors.Is(err, domain.ErrTicketTypeNameRequired):
		writeError(w, http.StatusBadRequest, codeTicketTypeNameRequired, err.Error())
	case errors.Is(err, domain.ErrIdempotencyKeyRequired):
		writeError(w, http.StatusBadRequest, codeIdempotencyRequired, err.Error())
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		writeError(w, http.StatusNotFound, codeTicketTypeNotFound, err.Error())
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrHoldNotFound):
		writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientCapacity):
		writeError(w, http.StatusConflict, codeInsufficientCapacity, err.Error())
	case errors.Is(err, domain.ErrSalesClosed):
		writeError(w, http.StatusConflict, codeSalesClosed, err.Error())
	case errors.Is(err, domain.ErrHoldExpired):
		writeError(w, http.StatusConflict, codeHoldExpired, err.Error())
	case errors.Is(err, domain.ErrHoldExpiredDuringPayment):
		writeError(w, http.StatusConflict, codeHoldExpiredDuringPayment, err.Error())
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		writeError(w, http.StatusConflict, codeAlreadyConfirmed, err.Error())
	case errors.Is(err, domain.ErrOrderTerminal):
		writeError(w, http.StatusConflict, codeOrderTerminal, err.Error())
	case errors.Is(err, domain.ErrOrderNotAwaitingPayment):
		writeError(w, http.StatusConflict, codeOrderNotAwaitingPayment, err.Error())
	case errors.Is(err, domain.ErrIdempotencyConflict):
		writeError(w, http.StatusConflict, codeIdempotencyConflict, err.Error())
	case errors.Is(err, domain.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, codePaymentDeclined, err.Error())
	case errors.Is(err, domain.ErrBusy):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, codeBusy, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeStoreUnavailable, "store unavailable")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
