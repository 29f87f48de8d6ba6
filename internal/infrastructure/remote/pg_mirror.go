package remote

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// PgMirror writes the remote copy straight into a Postgres table with the
// same columns as the local one.
type PgMirror struct {
	pool  *pgxpool.Pool
	table string
}

func NewPgMirror(ctx context.Context, dsn, table string) (*PgMirror, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PgMirror{pool: pool, table: pgx.Identifier{table}.Sanitize()}, nil
}

func (m *PgMirror) Upsert(ctx context.Context, item domain.Item) error {
	query := `
        insert into ` + m.table + ` (item_id, name, sku, rate, "purchase rate", "stock on hand")
        values ($1,$2,$3,$4,$5,$6)
        on conflict (item_id) do update
        set name = excluded.name,
            sku = excluded.sku,
            rate = excluded.rate,
            "purchase rate" = excluded."purchase rate",
            "stock on hand" = excluded."stock on hand"
    `
	f := item.Fields()
	_, err := m.pool.Exec(ctx, query,
		item.ID,
		f.Name,
		f.Sku,
		string(f.Rate),
		string(f.PurchaseRate),
		f.StockOnHand,
	)
	if err != nil {
		return &domain.RemoteSyncError{Op: "upsert", ItemID: item.ID, Err: err}
	}
	return nil
}

func (m *PgMirror) Delete(ctx context.Context, id int64) error {
	if _, err := m.pool.Exec(ctx, `delete from `+m.table+` where item_id = $1`, id); err != nil {
		return &domain.RemoteSyncError{Op: "delete", ItemID: id, Err: err}
	}
	return nil
}

func (m *PgMirror) Count(ctx context.Context) (int, error) {
	var n int
	if err := m.pool.QueryRow(ctx, `select count(*) from `+m.table).Scan(&n); err != nil {
		return 0, &domain.RemoteSyncError{Op: "count", Err: err}
	}
	return n, nil
}

func (m *PgMirror) Close() {
	m.pool.Close()
}
