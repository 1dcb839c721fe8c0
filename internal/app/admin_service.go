package app

import (
	"context"
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/clock"
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
	"github.com/nazyhomayoun/learning-software-testing/internal/money"
)

type AdminRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, tt domain.TicketType) error
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
	SetSalesOpen(ctx context.Context, ticketTypeID string, open bool) error
}

// AdminService manages event setup: events and their sellable ticket types.
// Capacity is set at creation and treated as immutable once sales begin.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Name     string
	StartsAt *time.Time
}

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	startsAt := s.clock.Now()
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:       newID(),
		Name:     in.Name,
		StartsAt: startsAt,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type CreateTicketTypeInput struct {
	EventID    string
	Name       string
	Capacity   int
	UnitPrice  money.Money
	SalesOpen  bool
	SalesStart time.Time
	SalesEnd   time.Time
}

func (s *AdminService) CreateTicketType(ctx context.Context, in CreateTicketTypeInput) (domain.TicketType, error) {
	if in.EventID == "" {
		return domain.TicketType{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.TicketType{}, domain.ErrTicketTypeNameRequired
	}
	if in.Capacity < 0 {
		return domain.TicketType{}, domain.ErrInvalidCapacity
	}
	if in.UnitPrice.IsNegative() {
		return domain.TicketType{}, domain.ErrInvalidPrice
	}

	tt := domain.TicketType{
		ID:         newID(),
		EventID:    in.EventID,
		Name:       in.Name,
		Capacity:   in.Capacity,
		UnitPrice:  in.UnitPrice,
		SalesOpen:  in.SalesOpen,
		SalesStart: in.SalesStart,
		SalesEnd:   in.SalesEnd,
	}
	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return domain.TicketType{}, err
	}
	return tt, nil
}

func (s *AdminService) ListTicketTypes(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListTicketTypesByEvent(ctx, eventID)
}

func (s *AdminService) SetSalesOpen(ctx context.Context, ticketTypeID string, open bool) error {
	if ticketTypeID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.SetSalesOpen(ctx, ticketTypeID, open)
}
