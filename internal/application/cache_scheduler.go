package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheScheduler rebuilds the snapshot on a fixed interval so it does not
// expire while the items table is quiet. Change-driven refreshes still
// happen in the relay.
type CacheScheduler struct {
	refresher Refresher
	interval  time.Duration
	log       zerolog.Logger
}

func NewCacheScheduler(refresher Refresher, intervalSec int, log zerolog.Logger) *CacheScheduler {
	return &CacheScheduler{
		refresher: refresher,
		interval:  time.Duration(intervalSec) * time.Second,
		log:       log,
	}
}

// Start runs the loop until ctx is done. The returned channel is closed
// once the loop has exited.
func (s *CacheScheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("cache scheduler stopped")
				return
			case <-ticker.C:
				s.refresher.Refresh(ctx)
			}
		}
	}()
	return done
}
