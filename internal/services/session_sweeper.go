package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"reelshelf/internal/database"
)

// SessionSweeper periodically deletes expired sessions and verification tokens.
type SessionSweeper struct {
	db       *sql.DB
	interval time.Duration
	log      *zap.Logger

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewSessionSweeper(db *sql.DB, interval time.Duration, log *zap.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionSweeper{
		db:       db,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until Stop.
func (s *SessionSweeper) Start() {
	s.log.Info("starting session sweeper", zap.Duration("interval", s.interval))
	s.ticker = time.NewTicker(s.interval)

	go func() {
		defer close(s.done)
		s.Sweep(context.Background())
		for {
			select {
			case <-s.ticker.C:
				s.Sweep(context.Background())
			case <-s.stopChan:
				s.log.Info("session sweeper stopped")
				return
			}
		}
	}()
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker == nil {
			close(s.done)
			return
		}
		s.ticker.Stop()
		close(s.stopChan)
	})
	<-s.done
}

// Sweep deletes everything that has expired as of now.
func (s *SessionSweeper) Sweep(ctx context.Context) {
	sessions, tokens, err := database.DeleteExpired(ctx, s.db, time.Now())
	if err != nil {
		s.log.Error("session sweep failed", zap.Error(err))
		return
	}
	if sessions > 0 || tokens > 0 {
		s.log.Info("expired auth rows removed",
			zap.Int64("sessions", sessions),
			zap.Int64("verification_tokens", tokens),
		)
	}
}
