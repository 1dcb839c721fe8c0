package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/app"
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

// OrderAPI is the slice of the order service the order handlers need.
type OrderAPI interface {
	Create(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	Confirm(ctx context.Context, in app.ConfirmOrderInput) (domain.Order, error)
	Cancel(ctx context.Context, orderID string) (domain.Order, error)
	Get(ctx context.Context, orderID string) (domain.Order, error)
}

// HandleOrders serves POST /orders.
func HandleOrders(svc OrderAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createOrderRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.TicketTypeID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "ticket_type_id is required")
			return
		}
		if req.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidQuantity, domain.ErrInvalidQuantity.Error())
			return
		}

		order, err := svc.Create(r.Context(), app.CreateOrderInput{
			TicketTypeID: req.TicketTypeID,
			Quantity:     req.Quantity,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, orderResponseFrom(order))
	}
}

// HandleOrderActions serves GET /orders/{id}, POST /orders/{id}/confirm and
// POST /orders/{id}/cancel.
func HandleOrderActions(svc OrderAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, action, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			order, err := svc.Get(r.Context(), orderID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, orderResponseFrom(order))

		case "confirm":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				writeError(w, http.StatusBadRequest, codeIdempotencyRequired, domain.ErrIdempotencyKeyRequired.Error())
				return
			}
			var req confirmOrderRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			order, err := svc.Confirm(r.Context(), app.ConfirmOrderInput{
				OrderID:        orderID,
				PaymentToken:   req.PaymentToken,
				IdempotencyKey: key,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, orderResponseFrom(order))

		case "cancel":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
				return
			}
			order, err := svc.Cancel(r.Context(), orderID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, orderResponseFrom(order))

		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func parseOrderPath(path string) (orderID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch len(parts) {
	case 2:
		if parts[0] != "orders" || parts[1] == "" {
			return "", "", false
		}
		return parts[1], "", true
	case 3:
		if parts[0] != "orders" || parts[1] == "" {
			return "", "", false
		}
		return parts[1], parts[2], true
	default:
		return "", "", false
	}
}

type createOrderRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

type confirmOrderRequest struct {
	PaymentToken string `json:"payment_token"`
}

type orderResponse struct {
	ID           string    `json:"id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	UnitPrice    string    `json:"unit_price"`
	Total        string    `json:"total"`
	Status       string    `json:"status"`
	HoldID       string    `json:"hold_id,omitempty"`
	PaymentRef   string    `json:"payment_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func orderResponseFrom(o domain.Order) orderResponse {
	return orderResponse{
		ID:           o.ID,
		TicketTypeID: o.TicketTypeID,
		Quantity:     o.Quantity,
		UnitPrice:    o.UnitPrice.StringFixed(2),
		Total:        o.Total.StringFixed(2),
		Status:       string(o.Status),
		HoldID:       o.HoldID,
		PaymentRef:   o.PaymentRef,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
