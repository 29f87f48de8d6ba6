package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// PostgrestMirror keeps the Supabase copy of the items table through its
// PostgREST endpoint (/rest/v1/<table>).
type PostgrestMirror struct {
	client  *postgrest.Client
	table   string
	timeout time.Duration
}

func NewPostgrestMirror(supabaseURL, apiKey, table string, timeout time.Duration) *PostgrestMirror {
	client := postgrest.NewClient(strings.TrimRight(supabaseURL, "/")+"/rest/v1", "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})
	return &PostgrestMirror{client: client, table: table, timeout: timeout}
}

// remoteRow is what gets written remotely: the item columns and nothing else.
type remoteRow struct {
	ItemID int64 `json:"item_id"`
	domain.ItemFields
}

func toRemoteRow(item domain.Item) remoteRow {
	return remoteRow{ItemID: item.ID, ItemFields: item.Fields()}
}

// Upsert reads the remote row by id, then overwrites it or creates it.
func (m *PostgrestMirror) Upsert(ctx context.Context, item domain.Item) error {
	exists, err := m.exists(ctx, item.ID)
	if err != nil {
		return &domain.RemoteSyncError{Op: "upsert", ItemID: item.ID, Err: err}
	}

	row := toRemoteRow(item)
	var q *postgrest.FilterBuilder
	if exists {
		q = m.client.From(m.table).Update(row, "minimal", "").Eq("item_id", idValue(item.ID))
	} else {
		q = m.client.From(m.table).Insert(row, false, "", "minimal", "")
	}
	if _, _, err := m.execute(ctx, q); err != nil {
		return &domain.RemoteSyncError{Op: "upsert", ItemID: item.ID, Err: err}
	}
	return nil
}

func (m *PostgrestMirror) Delete(ctx context.Context, id int64) error {
	q := m.client.From(m.table).Delete("minimal", "").Eq("item_id", idValue(id))
	if _, _, err := m.execute(ctx, q); err != nil {
		return &domain.RemoteSyncError{Op: "delete", ItemID: id, Err: err}
	}
	return nil
}

// Count asks PostgREST for an exact count with a HEAD request; the total comes
// back in Content-Range.
func (m *PostgrestMirror) Count(ctx context.Context) (int, error) {
	q := m.client.From(m.table).Select("item_id", "exact", true)
	_, n, err := m.execute(ctx, q)
	if err != nil {
		return 0, &domain.RemoteSyncError{Op: "count", Err: err}
	}
	return int(n), nil
}

func (m *PostgrestMirror) exists(ctx context.Context, id int64) (bool, error) {
	q := m.client.From(m.table).Select("item_id", "", false).Eq("item_id", idValue(id))
	body, _, err := m.execute(ctx, q)
	if err != nil {
		return false, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("decode select response: %w", err)
	}
	return len(rows) > 0, nil
}

type result struct {
	body  []byte
	count int64
	err   error
}

// execute runs q bounded by ctx and the mirror timeout. The client takes no
// context, so an abandoned request finishes in the background.
func (m *PostgrestMirror) execute(ctx context.Context, q *postgrest.FilterBuilder) ([]byte, int64, error) {
	if m.client.ClientError != nil {
		return nil, 0, m.client.ClientError
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		body, count, err := q.Execute()
		done <- result{body: body, count: count, err: err}
	}()

	select {
	case r := <-done:
		return r.body, r.count, r.err
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

func idValue(id int64) string {
	return strconv.FormatInt(id, 10)
}
