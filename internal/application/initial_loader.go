package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// InitialLoader seeds an empty remote table with every local item. It does
// nothing when the remote already holds rows.
type InitialLoader struct {
	items   domain.ItemRepository
	mirror  domain.RemoteMirror
	metrics *Collector
	log     zerolog.Logger
}

func NewInitialLoader(
	items domain.ItemRepository,
	mirror domain.RemoteMirror,
	metrics *Collector,
	log zerolog.Logger,
) *InitialLoader {
	return &InitialLoader{items: items, mirror: mirror, metrics: metrics, log: log}
}

// Run returns how many items were copied. Per-item failures are logged and
// skipped; only the remote count and the local listing can fail the load.
func (l *InitialLoader) Run(ctx context.Context) (int, error) {
	existing, err := l.mirror.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("initial load: %w", err)
	}
	if existing > 0 {
		l.log.Info().Int("remote_rows", existing).Msg("remote table not empty, skipping initial load")
		return 0, nil
	}

	items, err := l.items.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("initial load: %w", err)
	}

	copied := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return copied, ctx.Err()
		}
		if err := l.mirror.Upsert(ctx, item); err != nil {
			l.metrics.remoteFailed("upsert")
			l.log.Warn().Err(err).Int64("item_id", item.ID).Msg("initial load: upsert failed")
			continue
		}
		copied++
	}
	l.log.Info().Int("copied", copied).Int("local_items", len(items)).Msg("initial load finished")
	return copied, nil
}
