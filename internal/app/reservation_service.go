package app

import (
	"context"
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/clock"
	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

// LedgerRepository is the storage surface for inventory holds. All counter
// reads and writes for one ticket type happen inside WithTx under a
// per-ticket-type row lock acquired by GetTicketTypeForUpdate.
type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	SumActiveHolds(ctx context.Context, ticketTypeID string, now time.Time) (int, error)
	SumConfirmed(ctx context.Context, ticketTypeID string) (int, error)
	CreateHold(ctx context.Context, hold domain.Hold) error
	GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error)
	UpdateHoldStatus(ctx context.Context, holdID string, status domain.HoldStatus) error
	ExpireDueHolds(ctx context.Context, now time.Time) ([]domain.Hold, error)
}

// ReservationService is the inventory ledger: it creates timed holds
// against ticket-type capacity, converts them to sales, releases them, and
// answers availability. sold + held never exceeds capacity.
type ReservationService struct {
	repo    LedgerRepository
	clock   clock.Clock
	holdTTL time.Duration
}

const defaultHoldTTL = 15 * time.Minute

func NewReservationService(repo LedgerRepository, clk clock.Clock, opts ...ReservationOption) *ReservationService {
	svc := &ReservationService{
		repo:    repo,
		clock:   clk,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationOption func(*ReservationService)

// WithHoldTTL overrides the default TTL for new holds.
func WithHoldTTL(d time.Duration) ReservationOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

type ReserveInput struct {
	TicketTypeID string
	Quantity     int
}

type ReserveResult struct {
	Hold       domain.Hold
	TicketType domain.TicketType
}

// Reserve atomically checks availability and creates an Active hold. The
// check and the insert share one transaction holding the ticket-type row
// lock, so concurrent reserves cannot jointly oversell.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (ReserveResult, error) {
	if in.Quantity <= 0 {
		return ReserveResult{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	var result ReserveResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		tt, err := s.repo.GetTicketTypeForUpdate(txCtx, in.TicketTypeID)
		if err != nil {
			return err
		}
		if !tt.OnSale(now) {
			return domain.ErrSalesClosed
		}

		held, err := s.repo.SumActiveHolds(txCtx, in.TicketTypeID, now)
		if err != nil {
			return err
		}
		sold, err := s.repo.SumConfirmed(txCtx, in.TicketTypeID)
		if err != nil {
			return err
		}

		available := tt.Capacity - held - sold
		if in.Quantity > available {
			return domain.ErrInsufficientCapacity
		}

		hold := domain.Hold{
			ID:           newID(),
			TicketTypeID: in.TicketTypeID,
			Quantity:     in.Quantity,
			Status:       domain.HoldStatusActive,
			ExpiresAt:    now.Add(s.holdTTL),
			CreatedAt:    now,
		}
		if err := s.repo.CreateHold(txCtx, hold); err != nil {
			return err
		}

		result = ReserveResult{Hold: hold, TicketType: tt}
		return nil
	})
	if err != nil {
		return ReserveResult{}, err
	}
	return result, nil
}

// Confirm converts an Active hold into a sale. Confirming twice returns
// ErrAlreadyConfirmed; a hold whose window has passed is marked Expired and
// the caller gets ErrHoldExpired, so a confirm racing the sweep has exactly
// one winner.
func (s *ReservationService) Confirm(ctx context.Context, holdID string) (domain.Hold, error) {
	now := s.clock.Now()
	var confirmed domain.Hold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}

		switch hold.Status {
		case domain.HoldStatusConfirmed:
			return domain.ErrAlreadyConfirmed
		case domain.HoldStatusReleased:
			return domain.ErrHoldNotFound
		case domain.HoldStatusExpired:
			return domain.ErrHoldExpired
		}

		if hold.Expired(now) {
			if err := s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusExpired); err != nil {
				return err
			}
			return domain.ErrHoldExpired
		}

		if err := s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusConfirmed); err != nil {
			return err
		}
		hold.Status = domain.HoldStatusConfirmed
		confirmed = hold
		return nil
	})
	if err != nil {
		return domain.Hold{}, err
	}
	return confirmed, nil
}

// Release returns an Active hold's quantity to the pool. Releasing an
// already released or expired hold is a no-op, so callers may retry safely.
func (s *ReservationService) Release(ctx context.Context, holdID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		hold, err := s.repo.GetHoldForUpdate(txCtx, holdID)
		if err != nil {
			return err
		}

		switch hold.Status {
		case domain.HoldStatusReleased, domain.HoldStatusExpired:
			return nil
		case domain.HoldStatusConfirmed:
			return domain.ErrAlreadyConfirmed
		}

		return s.repo.UpdateHoldStatus(txCtx, holdID, domain.HoldStatusReleased)
	})
}

// Availability reports how many units are purchasable right now. It reads
// the same counters Reserve checks, in one transaction, and never returns a
// negative number.
func (s *ReservationService) Availability(ctx context.Context, ticketTypeID string) (int, error) {
	now := s.clock.Now()
	available := 0

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		tt, err := s.repo.GetTicketType(txCtx, ticketTypeID)
		if err != nil {
			return err
		}
		held, err := s.repo.SumActiveHolds(txCtx, ticketTypeID, now)
		if err != nil {
			return err
		}
		sold, err := s.repo.SumConfirmed(txCtx, ticketTypeID)
		if err != nil {
			return err
		}
		available = tt.Capacity - held - sold
		if available < 0 {
			available = 0
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return available, nil
}

// SweepExpired transitions overdue Active holds to Expired and reports the
// holds it expired. It shares the transactional discipline of Reserve and
// Confirm, so it never expires a hold that a concurrent confirm has won.
func (s *ReservationService) SweepExpired(ctx context.Context) ([]domain.Hold, error) {
	now := s.clock.Now()
	var expired []domain.Hold

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		holds, err := s.repo.ExpireDueHolds(txCtx, now)
		if err != nil {
			return err
		}
		expired = holds
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}
