package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically expires overdue holds so their quantity returns to
// the pool even when no request traffic touches them.
type Sweeper struct {
	ledger   *ReservationService
	interval time.Duration
	log      *logrus.Logger
}

func NewSweeper(ledger *ReservationService, interval time.Duration, log *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sweeper{
		ledger:   ledger,
		interval: interval,
		log:      log,
	}
}

// Run sweeps on the configured interval until ctx is cancelled. Sweep
// failures are logged and the loop continues; a broken store must not kill
// the task.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			expired, err := s.ledger.SweepExpired(ctx)
			if err != nil {
				s.log.WithError(err).Error("sweep expired holds")
				continue
			}
			if len(expired) > 0 {
				s.log.WithField("count", len(expired)).Info("expired holds released")
			}
		}
	}
}
