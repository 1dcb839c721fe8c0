package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/app"
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
	"github.com/nazyhomayoun/learning-software-testing/internal/money"
)

type fakeOrderAPI struct {
	createFn  func(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	confirmFn func(ctx context.Context, in app.ConfirmOrderInput) (domain.Order, error)
	cancelFn  func(ctx context.Context, orderID string) (domain.Order, error)
	getFn     func(ctx context.Context, orderID string) (domain.Order, error)
}

func (f *fakeOrderAPI) Create(ctx context.Context, in app.CreateOrderInput) (domain.Order, error) {
	return f.createFn(ctx, in)
}

func (f *fakeOrderAPI) Confirm(ctx context.Context, in app.ConfirmOrderInput) (domain.Order, error) {
	return f.confirmFn(ctx, in)
}

func (f *fakeOrderAPI) Cancel(ctx context.Context, orderID string) (domain.Order, error) {
	return f.cancelFn(ctx, orderID)
}

func (f *fakeOrderAPI) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return f.getFn(ctx, orderID)
}

func sampleOrder(status domain.OrderStatus) domain.Order {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Order{
		ID:           "ord-1",
		TicketTypeID: "tt-1",
		Quantity:     3,
		UnitPrice:    money.MustFromString("50.00"),
		Total:        money.MustFromString("165.00"),
		Status:       status,
		HoldID:       "hold-1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestHandleOrders(t *testing.T) {
	t.Parallel()

	t.Run("creates order", func(t *testing.T) {
		svc := &fakeOrderAPI{
			createFn: func(_ context.Context, in app.CreateOrderInput) (domain.Order, error) {
				if in.TicketTypeID != "tt-1" || in.Quantity != 3 {
					t.Fatalf("unexpected input %+v", in)
				}
				return sampleOrder(domain.OrderStatusAwaitingPayment), nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"ticket_type_id":"tt-1","quantity":3}`))
		rr := httptest.NewRecorder()
		HandleOrders(svc)(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp orderResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != string(domain.OrderStatusAwaitingPayment) {
			t.Fatalf("expected awaiting_payment, got %s", resp.Status)
		}
		if resp.Total != "165.00" {
			t.Fatalf("expected total 165.00, got %s", resp.Total)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"ticket_type_id":"tt-1","quantity":3,"extra":true}`))
		rr := httptest.NewRecorder()
		HandleOrders(&fakeOrderAPI{})(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeInvalidRequestBody {
			t.Fatalf("expected %s, got %s", codeInvalidRequestBody, resp.Code)
		}
	})

	t.Run("rejects missing ticket type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"quantity":2}`))
		rr := httptest.NewRecorder()
		HandleOrders(&fakeOrderAPI{})(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"ticket_type_id":"tt-1","quantity":0}`))
		rr := httptest.NewRecorder()
		HandleOrders(&fakeOrderAPI{})(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeInvalidQuantity {
			t.Fatalf("expected %s, got %s", codeInvalidQuantity, resp.Code)
		}
	})

	t.Run("maps insufficient capacity to 409", func(t *testing.T) {
		svc := &fakeOrderAPI{
			createFn: func(context.Context, app.CreateOrderInput) (domain.Order, error) {
				return domain.Order{}, domain.ErrInsufficientCapacity
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"ticket_type_id":"tt-1","quantity":99}`))
		rr := httptest.NewRecorder()
		HandleOrders(svc)(rr, req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeInsufficientCapacity {
			t.Fatalf("expected %s, got %s", codeInsufficientCapacity, resp.Code)
		}
	})

	t.Run("maps busy to 503 with retry-after", func(t *testing.T) {
		svc := &fakeOrderAPI{
			createFn: func(context.Context, app.CreateOrderInput) (domain.Order, error) {
				return domain.Order{}, domain.ErrBusy
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"ticket_type_id":"tt-1","quantity":1}`))
		rr := httptest.NewRecorder()
		HandleOrders(svc)(rr, req)

		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		if rr.Header().Get("Retry-After") == "" {
			t.Fatalf("expected Retry-After header")
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		rr := httptest.NewRecorder()
		HandleOrders(&fakeOrderAPI{})(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rr.Code)
		}
	})
}

func TestHandleOrderActions(t *testing.T) {
	t.Parallel()

	t.Run("get order", func(t *testing.T) {
		svc := &fakeOrderAPI{
			getFn: func(_ context.Context, orderID string) (domain.Order, error) {
				if orderID != "ord-1" {
					t.Fatalf("unexpected order ID %s", orderID)
				}
				return sampleOrder(domain.OrderStatusConfirmed), nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/orders/ord-1", nil)
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("get unknown order", func(t *testing.T) {
		svc := &fakeOrderAPI{
			getFn: func(context.Context, string) (domain.Order, error) {
				return domain.Order{}, domain.ErrOrderNotFound
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/orders/nope", nil)
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("confirm passes idempotency key", func(t *testing.T) {
		svc := &fakeOrderAPI{
			confirmFn: func(_ context.Context, in app.ConfirmOrderInput) (domain.Order, error) {
				if in.OrderID != "ord-1" || in.IdempotencyKey != "key-1" || in.PaymentToken != "tok" {
					t.Fatalf("unexpected input %+v", in)
				}
				return sampleOrder(domain.OrderStatusConfirmed), nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/confirm", strings.NewReader(`{"payment_token":"tok"}`))
		req.Header.Set(idempotencyHeader, "key-1")
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("confirm without idempotency key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/confirm", strings.NewReader(`{"payment_token":"tok"}`))
		rr := httptest.NewRecorder()
		HandleOrderActions(&fakeOrderAPI{})(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeIdempotencyRequired {
			t.Fatalf("expected %s, got %s", codeIdempotencyRequired, resp.Code)
		}
	})

	t.Run("confirm maps declined payment to 402", func(t *testing.T) {
		svc := &fakeOrderAPI{
			confirmFn: func(context.Context, app.ConfirmOrderInput) (domain.Order, error) {
				return domain.Order{}, domain.ErrPaymentDeclined
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/confirm", strings.NewReader(`{"payment_token":"decline"}`))
		req.Header.Set(idempotencyHeader, "key-1")
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", rr.Code)
		}
	})

	t.Run("confirm maps lapsed hold to 409", func(t *testing.T) {
		svc := &fakeOrderAPI{
			confirmFn: func(context.Context, app.ConfirmOrderInput) (domain.Order, error) {
				return domain.Order{}, domain.ErrHoldExpiredDuringPayment
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/confirm", strings.NewReader(`{"payment_token":"tok"}`))
		req.Header.Set(idempotencyHeader, "key-1")
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeHoldExpiredDuringPayment {
			t.Fatalf("expected %s, got %s", codeHoldExpiredDuringPayment, resp.Code)
		}
	})

	t.Run("cancel order", func(t *testing.T) {
		svc := &fakeOrderAPI{
			cancelFn: func(_ context.Context, orderID string) (domain.Order, error) {
				return sampleOrder(domain.OrderStatusCancelled), nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/cancel", nil)
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("cancel terminal order", func(t *testing.T) {
		svc := &fakeOrderAPI{
			cancelFn: func(context.Context, string) (domain.Order, error) {
				return domain.Order{}, domain.ErrOrderTerminal
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/cancel", nil)
		rr := httptest.NewRecorder()
		HandleOrderActions(svc)(rr, req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rr.Code)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders/ord-1/refund", nil)
		rr := httptest.NewRecorder()
		HandleOrderActions(&fakeOrderAPI{})(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}
