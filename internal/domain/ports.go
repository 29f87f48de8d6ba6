package domain

import (
	"context"
	"time"
)

// ItemRepository is the authoritative local store. Lookups of a missing
// item return nil, nil.
type ItemRepository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Insert(ctx context.Context, fields ItemFields) (*Item, error)
	Update(ctx context.Context, id int64, fields ItemFields) (*Item, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// RemoteMirror is the cloud copy of the items table. Last write wins.
type RemoteMirror interface {
	Upsert(ctx context.Context, item Item) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// SnapshotStore holds the cached item list and statistics. Load returns
// nil parts when the cache is cold.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot, ttl time.Duration) error
	Load(ctx context.Context) (*CachedInventory, error)
}

type CachedInventory struct {
	Items []CachedItem `json:"items"`
	Stats *Stats       `json:"stats"`
}

// Publisher broadcasts an event to whoever is listening right now.
// Fire-and-forget: no backlog, no acknowledgement.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any)
}

// ChangeListener waits for the next change notification. When the poll
// interval elapses without one it returns ok == false and a nil error.
type ChangeListener interface {
	WaitForChange(ctx context.Context) (payload string, ok bool, err error)
	Close(ctx context.Context) error
}
