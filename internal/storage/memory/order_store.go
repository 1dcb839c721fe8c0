package memory

import (
	"context"

	"github.com/nazyhomayoun/learning-software-testing/internal/domain"
)

func (s *Store) CreateOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.HoldID != "" && existing.HoldID == order.HoldID {
			return domain.ErrAlreadyConfirmed
		}
	}
	s.orders[order.ID] = order
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Store) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	if err := s.acquire(ctx, "order:"+orderID); err != nil {
		return domain.Order{}, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *Store) UpdateOrder(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	s.orders[order.ID] = order
	return nil
}
