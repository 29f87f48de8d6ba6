package application

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

func TestInitialLoad_CopiesEverythingIntoEmptyRemote(t *testing.T) {
	repo := newFakeRepo(keyboard(1), keyboard(2), keyboard(3))
	mirror := &fakeMirror{}

	n, err := NewInitialLoader(repo, mirror, NewMetricsCollector(), zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	upserts, _ := mirror.calls()
	assert.Equal(t, []domain.Item{keyboard(1), keyboard(2), keyboard(3)}, upserts)
}

func TestInitialLoad_SkipsWhenRemoteHasRows(t *testing.T) {
	mirror := &fakeMirror{count: 5}

	n, err := NewInitialLoader(newFakeRepo(keyboard(1)), mirror, NewMetricsCollector(), zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	upserts, _ := mirror.calls()
	assert.Empty(t, upserts)
}

func TestInitialLoad_UpsertFailuresAreSkipped(t *testing.T) {
	mirror := &fakeMirror{upsertErr: errBoom}

	n, err := NewInitialLoader(newFakeRepo(keyboard(1), keyboard(2)), mirror, NewMetricsCollector(), zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	upserts, _ := mirror.calls()
	assert.Len(t, upserts, 2)
}

func TestInitialLoad_CountFailure(t *testing.T) {
	mirror := &fakeMirror{countErr: errBoom}

	_, err := NewInitialLoader(newFakeRepo(keyboard(1)), mirror, NewMetricsCollector(), zerolog.Nop()).Run(context.Background())
	var syncErr *domain.RemoteSyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "count", syncErr.Op)
}

func TestMultiPublisher_FansOut(t *testing.T) {
	a, b := &fakePublisher{}, &fakePublisher{}
	MultiPublisher{a, b}.Publish(context.Background(), "item_update", 1)

	assert.Equal(t, []published{{Event: "item_update", Payload: 1}}, a.published())
	assert.Equal(t, []published{{Event: "item_update", Payload: 1}}, b.published())
}
