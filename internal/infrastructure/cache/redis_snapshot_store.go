package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

const (
	itemsKey = "cache:all_inventory_items"
	statsKey = "cache:inventory_stats"
)

// RedisSnapshotStore keeps the normalized item list and its statistics
// under two keys sharing the same TTL.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

// Save writes both keys in one MULTI so readers never see items from one
// refresh next to stats from another.
func (s *RedisSnapshotStore) Save(ctx context.Context, snap domain.Snapshot, ttl time.Duration) error {
	items := snap.Items
	if items == nil {
		items = []domain.CachedItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return &domain.CacheError{Op: "save", Err: err}
	}
	statsJSON, err := json.Marshal(snap.Stats)
	if err != nil {
		return &domain.CacheError{Op: "save", Err: err}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, itemsKey, itemsJSON, ttl)
		pipe.Set(ctx, statsKey, statsJSON, ttl)
		return nil
	})
	if err != nil {
		return &domain.CacheError{Op: "save", Err: err}
	}
	return nil
}

// Load returns whatever is cached. A missing key leaves its part nil.
func (s *RedisSnapshotStore) Load(ctx context.Context) (*domain.CachedInventory, error) {
	values, err := s.client.MGet(ctx, itemsKey, statsKey).Result()
	if err != nil {
		return nil, &domain.CacheError{Op: "load", Err: err}
	}

	out := &domain.CachedInventory{}
	if raw, ok := values[0].(string); ok {
		if err := json.Unmarshal([]byte(raw), &out.Items); err != nil {
			return nil, &domain.CacheError{Op: "load", Err: fmt.Errorf("%s: %w", itemsKey, err)}
		}
	}
	if raw, ok := values[1].(string); ok {
		var stats domain.Stats
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			return nil, &domain.CacheError{Op: "load", Err: fmt.Errorf("%s: %w", statsKey, err)}
		}
		out.Stats = &stats
	}
	return out, nil
}
