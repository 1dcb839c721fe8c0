package http

import (
	"context"
	"net/http"
	"strings"
)

// AvailabilityReader answers how many units are purchasable right now.
type AvailabilityReader interface {
	Availability(ctx context.Context, ticketTypeID string) (int, error)
}

// HandleAvailability serves GET /ticket-types/{id}/availability.
func HandleAvailability(svc AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ticketTypeID, ok := parseAvailabilityPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		available, err := svc.Availability(r.Context(), ticketTypeID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, availabilityResponse{
			TicketTypeID: ticketTypeID,
			Available:    available,
		})
	}
}

func parseAvailabilityPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "ticket-types" || parts[2] != "availability" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type availabilityResponse struct {
	TicketTypeID string `json:"ticket_type_id"`
	Available    int    `json:"available"`
}
