package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/app"
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
	"github.com/nazyhomayoun/learning-software-testing/internal/money"
)

// AdminAPI is the slice of the admin service the admin handlers need.
type AdminAPI interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error)
	SetSalesOpen(ctx context.Context, ticketTypeID string, open bool) error
}

// HandleAdminEvents serves POST and GET /admin/events.
func HandleAdminEvents(svc AdminAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			var startsAt *time.Time
			if req.StartsAt != "" {
				t, err := time.Parse(time.RFC3339, req.StartsAt)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "starts_at must be RFC 3339")
					return
				}
				startsAt = &t
			}

			event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
				Name:     req.Name,
				StartsAt: startsAt,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, eventResponseFrom(event))

		case http.MethodGet:
			events, err := svc.ListEvents(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			out := make([]eventResponse, 0, len(events))
			for _, e := range events {
				out = append(out, eventResponseFrom(e))
			}
			writeJSON(w, http.StatusOK, out)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminTicketTypes serves POST and GET /admin/events/{id}/ticket-types
// and POST /admin/ticket-types/{id}/sales.
func HandleAdminTicketTypes(svc AdminAPI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

		switch {
		case len(parts) == 4 && parts[0] == "admin" && parts[1] == "events" && parts[3] == "ticket-types":
			handleEventTicketTypes(svc, w, r, parts[2])
		case len(parts) == 4 && parts[0] == "admin" && parts[1] == "ticket-types" && parts[3] == "sales":
			handleSetSalesOpen(svc, w, r, parts[2])
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleEventTicketTypes(svc AdminAPI, w http.ResponseWriter, r *http.Request, eventID string) {
	switch r.Method {
	case http.MethodPost:
		var req createTicketTypeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		unitPrice, err := money.FromString(req.UnitPrice)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid unit_price")
			return
		}

		in := app.CreateTicketTypeInput{
			EventID:   eventID,
			Name:      req.Name,
			Capacity:  req.Capacity,
			UnitPrice: unitPrice,
			SalesOpen: req.SalesOpen,
		}
		if req.SalesStart != "" {
			t, err := time.Parse(time.RFC3339, req.SalesStart)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "sales_start must be RFC 3339")
				return
			}
			in.SalesStart = t
		}
		if req.SalesEnd != "" {
			t, err := time.Parse(time.RFC3339, req.SalesEnd)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "sales_end must be RFC 3339")
				return
			}
			in.SalesEnd = t
		}

		tt, err := svc.CreateTicketType(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, ticketTypeResponseFrom(tt))

	case http.MethodGet:
		types, err := svc.ListTicketTypes(r.Context(), eventID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]ticketTypeResponse, 0, len(types))
		for _, tt := range types {
			out = append(out, ticketTypeResponseFrom(tt))
		}
		writeJSON(w, http.StatusOK, out)

	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func handleSetSalesOpen(svc AdminAPI, w http.ResponseWriter, r *http.Request, ticketTypeID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req setSalesOpenRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	if err := svc.SetSalesOpen(r.Context(), ticketTypeID, req.Open); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createEventRequest struct {
	Name     string `json:"name"`
	StartsAt string `json:"starts_at,omitempty"`
}

type eventResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
}

func eventResponseFrom(e domain.Event) eventResponse {
	return eventResponse{ID: e.ID, Name: e.Name, StartsAt: e.StartsAt}
}

type createTicketTypeRequest struct {
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	UnitPrice  string `json:"unit_price"`
	SalesOpen  bool   `json:"sales_open"`
	SalesStart string `json:"sales_start,omitempty"`
	SalesEnd   string `json:"sales_end,omitempty"`
}

type setSalesOpenRequest struct {
	Open bool `json:"open"`
}

type ticketTypeResponse struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	UnitPrice string `json:"unit_price"`
	SalesOpen bool   `json:"sales_open"`
}

func ticketTypeResponseFrom(tt domain.TicketType) ticketTypeResponse {
	return ticketTypeResponse{
		ID:        tt.ID,
		EventID:   tt.EventID,
		Name:      tt.Name,
		Capacity:  tt.Capacity,
		UnitPrice: tt.UnitPrice.StringFixed(2),
		SalesOpen: tt.SalesOpen,
	}
}
