package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	mu       sync.Mutex
	items    map[int64]domain.Item
	getCalls []int64
	listErr  error
	getErr   error
}

func newFakeRepo(items ...domain.Item) *fakeRepo {
	r := &fakeRepo{items: map[int64]domain.Item{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeRepo) List(context.Context) ([]domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, &domain.StoreError{Op: "list", Err: r.listErr}
	}
	out := make([]domain.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls = append(r.getCalls, id)
	if r.getErr != nil {
		return nil, &domain.StoreError{Op: "get", Err: r.getErr}
	}
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *fakeRepo) Insert(_ context.Context, f domain.ItemFields) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := int64(len(r.items) + 1)
	it := domain.NewItem(id, f)
	r.items[id] = *it
	return it, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, f domain.ItemFields) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return nil, nil
	}
	it := domain.NewItem(id, f)
	r.items[id] = *it
	return it, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

func (r *fakeRepo) gets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.getCalls...)
}

type fakeMirror struct {
	mu        sync.Mutex
	upserts   []domain.Item
	deletes   []int64
	count     int
	countErr  error
	upsertErr error
	deleteErr error
}

func (m *fakeMirror) Upsert(_ context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, item)
	if m.upsertErr != nil {
		return &domain.RemoteSyncError{Op: "upsert", ItemID: item.ID, Err: m.upsertErr}
	}
	return nil
}

func (m *fakeMirror) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	if m.deleteErr != nil {
		return &domain.RemoteSyncError{Op: "delete", ItemID: id, Err: m.deleteErr}
	}
	return nil
}

func (m *fakeMirror) Count(context.Context) (int, error) {
	if m.countErr != nil {
		return 0, &domain.RemoteSyncError{Op: "count", Err: m.countErr}
	}
	return m.count, nil
}

func (m *fakeMirror) calls() ([]domain.Item, []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.upserts...), append([]int64(nil), m.deletes...)
}

type fakeRefresher struct {
	mu    sync.Mutex
	count int
}

func (r *fakeRefresher) Refresh(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
}

func (r *fakeRefresher) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type published struct {
	Event   string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{Event: event, Payload: payload})
}

func (p *fakePublisher) published() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}

type fakeStore struct {
	mu      sync.Mutex
	saved   []domain.Snapshot
	ttl     time.Duration
	saveErr error
}

func (s *fakeStore) Save(_ context.Context, snap domain.Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return &domain.CacheError{Op: "save", Err: s.saveErr}
	}
	s.saved = append(s.saved, snap)
	s.ttl = ttl
	return nil
}

func (s *fakeStore) Load(context.Context) (*domain.CachedInventory, error) {
	return &domain.CachedInventory{}, nil
}

// fakeListener hands out queued payloads; with nothing queued it behaves
// like an idle poll.
type fakeListener struct {
	payloads chan string
	errs     chan error
	poll     time.Duration

	mu     sync.Mutex
	closed bool
}

func newFakeListener() *fakeListener {
	return &fakeListener{
		payloads: make(chan string, 16),
		errs:     make(chan error, 1),
		poll:     10 * time.Millisecond,
	}
}

func (l *fakeListener) WaitForChange(ctx context.Context) (string, bool, error) {
	timer := time.NewTimer(l.poll)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case err := <-l.errs:
		return "", false, err
	case p := <-l.payloads:
		return p, true, nil
	case <-timer.C:
		return "", false, nil
	}
}

func (l *fakeListener) Close(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *fakeListener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
