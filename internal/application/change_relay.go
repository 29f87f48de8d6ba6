package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

const closeTimeout = 5 * time.Second

// ChangeRelay turns every change notification from the local store into a
// remote sync, a live event and a cache refresh. One relay per process.
type ChangeRelay struct {
	listener  domain.ChangeListener
	items     domain.ItemRepository
	mirror    domain.RemoteMirror
	refresher Refresher
	publisher domain.Publisher
	metrics   *Collector
	log       zerolog.Logger
}

func NewChangeRelay(
	listener domain.ChangeListener,
	items domain.ItemRepository,
	mirror domain.RemoteMirror,
	refresher Refresher,
	publisher domain.Publisher,
	metrics *Collector,
	log zerolog.Logger,
) *ChangeRelay {
	return &ChangeRelay{
		listener:  listener,
		items:     items,
		mirror:    mirror,
		refresher: refresher,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

// Run waits for notifications until ctx is cancelled (returns nil) or the
// listener fails (returns its error). The listener is closed on return.
func (r *ChangeRelay) Run(ctx context.Context) error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := r.listener.Close(closeCtx); err != nil {
			r.log.Warn().Err(err).Msg("close change listener")
		}
	}()

	r.log.Info().Msg("change relay started")
	for {
		if ctx.Err() != nil {
			r.log.Info().Msg("change relay stopped")
			return nil
		}

		payload, ok, err := r.listener.WaitForChange(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.log.Info().Msg("change relay stopped")
				return nil
			}
			r.log.Error().Err(err).Msg("change relay: listener failed")
			return fmt.Errorf("change relay: %w", err)
		}
		if !ok {
			continue
		}

		// Dispatch only fails on a malformed payload, already logged.
		_ = r.Dispatch(ctx, payload)
	}
}

// Dispatch handles one notification. The only error returned is a
// *domain.DecodeError, in which case nothing downstream was called.
func (r *ChangeRelay) Dispatch(ctx context.Context, payload string) error {
	start := time.Now()

	n, err := domain.DecodeNotification(payload)
	if err != nil {
		r.metrics.notificationDropped()
		r.log.Warn().Err(err).Str("payload", payload).Msg("dropping malformed notification")
		return err
	}

	log := r.log.With().Str("operation", string(n.Operation)).Int64("item_id", n.ItemID).Logger()

	switch n.Operation {
	case domain.OperationDelete:
		if err := r.mirror.Delete(ctx, n.ItemID); err != nil {
			r.remoteFailed(log, "delete", err)
		}
		r.publisher.Publish(ctx, domain.EventItemUpdate, domain.NewItemDeletedEvent(n.ItemID))

	default:
		item, err := r.items.GetByID(ctx, n.ItemID)
		switch {
		case err != nil:
			log.Error().Err(err).Msg("re-read changed item")
		case item == nil:
			// borrado antes de que llegáramos
			log.Debug().Msg("changed item no longer exists")
		default:
			if err := r.mirror.Upsert(ctx, *item); err != nil {
				r.remoteFailed(log, "upsert", err)
			}
			r.publisher.Publish(ctx, domain.EventItemUpdate, domain.NewItemChangedEvent(n.Operation, *item))
		}
	}

	r.refresher.Refresh(ctx)

	r.metrics.notificationDispatched(n.Operation, time.Since(start))
	log.Debug().Dur("took", time.Since(start)).Msg("notification dispatched")
	return nil
}

func (r *ChangeRelay) remoteFailed(log zerolog.Logger, op string, err error) {
	r.metrics.remoteFailed(op)
	var syncErr *domain.RemoteSyncError
	if errors.As(err, &syncErr) {
		log.Warn().Err(syncErr.Err).Str("remote_op", syncErr.Op).Msg("remote sync failed")
		return
	}
	log.Warn().Err(err).Msg("remote sync failed")
}
