// Package memory provides an in-memory implementation of the storage
// interfaces. It mirrors the Postgres locking discipline with bounded-wait
// per-ticket-type locks, which makes it suitable for deterministic unit and
// race tests without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

const defaultLockWait = 2 * time.Second

type txKey struct{}

type txState struct {
	mu       sync.Mutex
	held     map[string]bool
	releases []func()
}

func (ts *txState) holds(key string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.held[key]
}

func (ts *txState) add(key string, release func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.held[key] = true
	ts.releases = append(ts.releases, release)
}

func (ts *txState) releaseAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for i := len(ts.releases) - 1; i >= 0; i-- {
		ts.releases[i]()
	}
	ts.releases = nil
	ts.held = map[string]bool{}
}

// Store holds all state behind one mutex for map access, plus named locks
// that serialize multi-step transactions the way row locks do in Postgres.
type Store struct {
	mu          sync.RWMutex
	events      map[string]domain.Event
	ticketTypes map[string]domain.TicketType
	holds       map[string]domain.Hold
	orders      map[string]domain.Order

	lockMu   sync.Mutex
	locks    map[string]chan struct{}
	lockWait time.Duration
}

func NewStore() *Store {
	return &Store{
		events:      map[string]domain.Event{},
		ticketTypes: map[string]domain.TicketType{},
		holds:       map[string]domain.Hold{},
		orders:      map[string]domain.Order{},
		locks:       map[string]chan struct{}{},
		lockWait:    defaultLockWait,
	}
}

// SetLockWait shortens the bounded lock wait, mainly for tests asserting
// the busy path.
func (s *Store) SetLockWait(d time.Duration) {
	s.lockWait = d
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	ts := &txState{held: map[string]bool{}}
	defer ts.releaseAll()
	return fn(context.WithValue(ctx, txKey{}, ts))
}

func txFromContext(ctx context.Context) *txState {
	ts, _ := ctx.Value(txKey{}).(*txState)
	return ts
}

// acquire takes the named lock for the remainder of the transaction; a lock
// that cannot be taken within the bounded wait yields ErrBusy rather than
// blocking indefinitely.
func (s *Store) acquire(ctx context.Context, key string) error {
	ts := txFromContext(ctx)
	if ts == nil {
		return nil
	}
	if ts.holds(key) {
		return nil
	}

	s.lockMu.Lock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	s.lockMu.Unlock()

	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		ts.add(key, func() { <-ch })
		return nil
	case <-timer.C:
		return domain.ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) GetTicketType(_ context.Context, ticketTypeID string) (domain.TicketType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tt, ok := s.ticketTypes[ticketTypeID]
	if !ok {
		return domain.TicketType{}, domain.ErrTicketTypeNotFound
	}
	return tt, nil
}

func (s *Store) GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	if err := s.acquire(ctx, "tt:"+ticketTypeID); err != nil {
		return domain.TicketType{}, err
	}
	return s.GetTicketType(ctx, ticketTypeID)
}

func (s *Store) SumActiveHolds(_ context.Context, ticketTypeID string, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, h := range s.holds {
		if h.TicketTypeID == ticketTypeID && h.Status == domain.HoldStatusActive && h.ExpiresAt.After(now) {
			total += h.Quantity
		}
	}
	return total, nil
}

func (s *Store) SumConfirmed(_ context.Context, ticketTypeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, h := range s.holds {
		if h.TicketTypeID == ticketTypeID && h.Status == domain.HoldStatusConfirmed {
			total += h.Quantity
		}
	}
	return total, nil
}

func (s *Store) CreateHold(_ context.Context, hold domain.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[hold.ID] = hold
	return nil
}

func (s *Store) GetHoldForUpdate(ctx context.Context, holdID string) (domain.Hold, error) {
	s.mu.RLock()
	hold, ok := s.holds[holdID]
	s.mu.RUnlock()
	if !ok {
		return domain.Hold{}, domain.ErrHoldNotFound
	}

	// Serialize on the hold's ticket type so counter changes from confirm
	// and release order with concurrent reserves.
	if err := s.acquire(ctx, "tt:"+hold.TicketTypeID); err != nil {
		return domain.Hold{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	hold, ok = s.holds[holdID]
	if !ok {
		return domain.Hold{}, domain.ErrHoldNotFound
	}
	return hold, nil
}

func (s *Store) UpdateHoldStatus(_ context.Context, holdID string, status domain.HoldStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[holdID]
	if !ok {
		return domain.ErrHoldNotFound
	}
	hold.Status = status
	s.holds[holdID] = hold
	return nil
}

func (s *Store) ExpireDueHolds(ctx context.Context, now time.Time) ([]domain.Hold, error) {
	s.mu.RLock()
	dueByType := map[string][]string{}
	for id, h := range s.holds {
		if h.Status == domain.HoldStatusActive && !h.ExpiresAt.After(now) {
			dueByType[h.TicketTypeID] = append(dueByType[h.TicketTypeID], id)
		}
	}
	s.mu.RUnlock()

	typeIDs := make([]string, 0, len(dueByType))
	for ttID := range dueByType {
		typeIDs = append(typeIDs, ttID)
	}
	sort.Strings(typeIDs)

	var expired []domain.Hold
	for _, ttID := range typeIDs {
		// A ticket type whose lock is contended is skipped this pass; the
		// next sweep picks it up.
		if err := s.acquire(ctx, "tt:"+ttID); err != nil {
			if err == domain.ErrBusy {
				continue
			}
			return nil, err
		}
		s.mu.Lock()
		for _, id := range dueByType[ttID] {
			h, ok := s.holds[id]
			if !ok || h.Status != domain.HoldStatusActive || h.ExpiresAt.After(now) {
				continue
			}
			h.Status = domain.HoldStatusExpired
			s.holds[id] = h
			expired = append(expired, h)
		}
		s.mu.Unlock()
	}
	return expired, nil
}
