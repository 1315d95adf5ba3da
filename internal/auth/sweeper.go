package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/balkashynov/doit/internal/store"
)

// Sweeper deletes expired session rows on an interval
type Sweeper struct {
	sessions store.Sessions
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func NewSweeper(sessions store.Sessions, interval time.Duration, log *zap.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Sweep runs one pass
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired sessions deleted", zap.Int64("count", n))
	}
	return n, nil
}

// Run sweeps every interval until ctx is done. Failed passes are logged and
// retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}
