package memory

import (
	"context"
	"sort"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

func (s *Store) CreateEvent(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	return nil
}

func (s *Store) ListEvents(_ context.Context) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]domain.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

func (s *Store) CreateTicketType(_ context.Context, tt domain.TicketType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticketTypes[tt.ID] = tt
	return nil
}

func (s *Store) ListTicketTypesByEvent(_ context.Context, eventID string) ([]domain.TicketType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var types []domain.TicketType
	for _, tt := range s.ticketTypes {
		if tt.EventID == eventID {
			types = append(types, tt)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (s *Store) SetSalesOpen(_ context.Context, ticketTypeID string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tt, ok := s.ticketTypes[ticketTypeID]
	if !ok {
		return domain.ErrTicketTypeNotFound
	}
	tt.SalesOpen = open
	s.ticketTypes[ticketTypeID] = tt
	return nil
}

// Hold returns a hold by ID for test assertions.
func (s *Store) Hold(holdID string) (domain.Hold, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.holds[holdID]
	return h, ok
}

// Order returns an order by ID for test assertions.
func (s *Store) Order(orderID string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	return o, ok
}
