package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// Refresher rebuilds the cached snapshot. It never fails from the caller's
// point of view.
type Refresher interface {
	Refresh(ctx context.Context)
}

type CacheRefresher struct {
	items   domain.ItemRepository
	store   domain.SnapshotStore
	ttl     time.Duration
	now     func() time.Time
	metrics *Collector
	log     zerolog.Logger
}

func NewCacheRefresher(
	items domain.ItemRepository,
	store domain.SnapshotStore,
	ttl time.Duration,
	metrics *Collector,
	log zerolog.Logger,
) *CacheRefresher {
	return &CacheRefresher{
		items:   items,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		metrics: metrics,
		log:     log,
	}
}

// Refresh reads every item from the local store and overwrites the cached
// list and statistics. Failures are logged and the write is skipped.
func (r *CacheRefresher) Refresh(ctx context.Context) {
	items, err := r.items.List(ctx)
	if err != nil {
		r.metrics.cacheRefreshed(err)
		r.log.Error().Err(err).Msg("cache refresh: list items")
		return
	}

	snap := domain.BuildSnapshot(items, r.now())
	err = r.store.Save(ctx, snap, r.ttl)
	r.metrics.cacheRefreshed(err)
	if err != nil {
		r.log.Error().Err(err).Msg("cache refresh: save snapshot")
		return
	}
	r.log.Debug().
		Int("total_products", snap.Stats.TotalProducts).
		Float64("total_value", snap.Stats.TotalValue).
		Int("low_stock", snap.Stats.LowStockCount).
		Msg("cache refreshed")
}
