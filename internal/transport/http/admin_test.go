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

type fakeAdminAPI struct {
	createEventFn      func(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	listEventsFn       func(ctx context.Context) ([]domain.Event, error)
	createTicketTypeFn func(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	listTicketTypesFn  func(ctx context.Context, eventID string) ([]domain.TicketType, error)
	setSalesOpenFn     func(ctx context.Context, ticketTypeID string, open bool) error
}

func (f *fakeAdminAPI) CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error) {
	return f.createEventFn(ctx, in)
}

func (f *fakeAdminAPI) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return f.listEventsFn(ctx)
}

func (f *fakeAdminAPI) CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error) {
	return f.createTicketTypeFn(ctx, in)
}

func (f *fakeAdminAPI) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	return f.listTicketTypesFn(ctx, eventID)
}

func (f *fakeAdminAPI) SetSalesOpen(ctx context.Context, ticketTypeID string, open bool) error {
	return f.setSalesOpenFn(ctx, ticketTypeID, open)
}

func TestHandleAdminEvents(t *testing.T) {
	t.Parallel()

	t.Run("creates event", func(t *testing.T) {
		svc := &fakeAdminAPI{
			createEventFn: func(_ context.Context, in app.CreateEventInput) (domain.Event, error) {
				if in.Name != "Summer Fest" {
					t.Fatalf("unexpected name %q", in.Name)
				}
				if in.StartsAt == nil || !in.StartsAt.Equal(time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)) {
					t.Fatalf("unexpected starts_at %v", in.StartsAt)
				}
				return domain.Event{ID: "ev-1", Name: in.Name, StartsAt: *in.StartsAt}, nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(`{"name":"Summer Fest","starts_at":"2025-07-01T20:00:00Z"}`))
		rr := httptest.NewRecorder()
		HandleAdminEvents(svc)(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("rejects malformed starts_at", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(`{"name":"X","starts_at":"tomorrow"}`))
		rr := httptest.NewRecorder()
		HandleAdminEvents(&fakeAdminAPI{})(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeInvalidStartsAt {
			t.Fatalf("expected %s, got %s", codeInvalidStartsAt, resp.Code)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := &fakeAdminAPI{
			createEventFn: func(context.Context, app.CreateEventInput) (domain.Event, error) {
				return domain.Event{}, domain.ErrEventNameRequired
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/admin/events", strings.NewReader(`{"name":""}`))
		rr := httptest.NewRecorder()
		HandleAdminEvents(svc)(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("lists events", func(t *testing.T) {
		svc := &fakeAdminAPI{
			listEventsFn: func(context.Context) ([]domain.Event, error) {
				return []domain.Event{{ID: "ev-1", Name: "A"}, {ID: "ev-2", Name: "B"}}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
		rr := httptest.NewRecorder()
		HandleAdminEvents(svc)(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		var resp []eventResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 2 {
			t.Fatalf("expected 2 events, got %d", len(resp))
		}
	})
}

func TestHandleAdminTicketTypes(t *testing.T) {
	t.Parallel()

	t.Run("creates ticket type", func(t *testing.T) {
		svc := &fakeAdminAPI{
			createTicketTypeFn: func(_ context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error) {
				if in.EventID != "ev-1" || in.Name != "VIP" || in.Capacity != 50 {
					t.Fatalf("unexpected input %+v", in)
				}
				if !in.UnitPrice.Equal(money.MustFromString("120.50")) {
					t.Fatalf("unexpected unit price %s", in.UnitPrice.String())
				}
				return domain.TicketType{ID: "tt-1", EventID: in.EventID, Name: in.Name, Capacity: in.Capacity, UnitPrice: in.UnitPrice, SalesOpen: in.SalesOpen}, nil
			},
		}
		body := `{"name":"VIP","capacity":50,"unit_price":"120.50","sales_open":true}`
		req := httptest.NewRequest(http.MethodPost, "/admin/events/ev-1/ticket-types", strings.NewReader(body))
		rr := httptest.NewRecorder()
		HandleAdminTicketTypes(svc)(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp ticketTypeResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.UnitPrice != "120.50" {
			t.Fatalf("expected unit price 120.50, got %s", resp.UnitPrice)
		}
	})

	t.Run("rejects unparseable price", func(t *testing.T) {
		body := `{"name":"VIP","capacity":50,"unit_price":"lots"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/events/ev-1/ticket-types", strings.NewReader(body))
		rr := httptest.NewRecorder()
		HandleAdminTicketTypes(&fakeAdminAPI{})(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("maps negative capacity to 400", func(t *testing.T) {
		svc := &fakeAdminAPI{
			createTicketTypeFn: func(context.Context, app.CreateTicketTypeInput) (domain.TicketType, error) {
				return domain.TicketType{}, domain.ErrInvalidCapacity
			},
		}
		body := `{"name":"VIP","capacity":-1,"unit_price":"10"}`
		req := httptest.NewRequest(http.MethodPost, "/admin/events/ev-1/ticket-types", strings.NewReader(body))
		rr := httptest.NewRecorder()
		HandleAdminTicketTypes(svc)(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if resp := decodeError(t, rr); resp.Code != codeInvalidCapacity {
			t.Fatalf("expected %s, got %s", codeInvalidCapacity, resp.Code)
		}
	})

	t.Run("lists ticket types for event", func(t *testing.T) {
		svc := &fakeAdminAPI{
			listTicketTypesFn: func(_ context.Context, eventID string) ([]domain.TicketType, error) {
				if eventID != "ev-1" {
					t.Fatalf("unexpected event ID %s", eventID)
				}
				return []domain.TicketType{{ID: "tt-1", UnitPrice: money.MustFromString("10")}}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/admin/events/ev-1/ticket-types", nil)
		rr := httptest.NewRecorder()
		HandleAdminTicketTypes(svc)(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("toggles sales open", func(t *testing.T) {
		var gotID string
		var gotOpen bool
		svc := &fakeAdminAPI{
			setSalesOpenFn: func(_ context.Context, ticketTypeID string, open bool) error {
				gotID = ticketTypeID
				gotOpen = open
				return nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/admin/ticket-types/tt-1/sales", strings.NewReader(`{"open":false}`))
		rr := httptest.NewRecorder()
		HandleAdminTicketTypes(svc)(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rr.Code)
		}
		if gotID != "tt-1" || gotOpen {
			t.Fatalf("unexpected call: id=%s open=%v", gotID, gotOpen)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/venues", nil)
		rr := httptest.NewRecorder()
		HandleAdminTicketTypes(&fakeAdminAPI{})(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}
