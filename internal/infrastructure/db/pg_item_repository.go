package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/RodolfoDevApp/eventshop-itemsync-go/internal/domain"
)

// PgItemRepository works on the authoritative items table. Every call is a
// single autocommit statement; the table trigger emits the NOTIFY.
type PgItemRepository struct {
	db *sql.DB
}

func NewPgItemRepository(db *sql.DB) *PgItemRepository {
	return &PgItemRepository{db: db}
}

const itemColumns = `item_id, name, sku, rate, "purchase rate", "stock on hand"`

type rowScanner interface {
	Scan(dest ...any) error
}

// NULLs come back as zero values, the way the rows were always read.
func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		id                            int64
		name, sku, rate, purchaseRate sql.NullString
		stock                         sql.NullInt64
	)
	if err := row.Scan(&id, &name, &sku, &rate, &purchaseRate, &stock); err != nil {
		return nil, err
	}
	return domain.NewItem(id, domain.ItemFields{
		Name:         name.String,
		Sku:          sku.String,
		Rate:         domain.Amount(rate.String),
		PurchaseRate: domain.Amount(purchaseRate.String),
		StockOnHand:  int(stock.Int64),
	}), nil
}

func (r *PgItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	query := `
        select ` + itemColumns + `
        from items
        order by item_id
    `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "list", Err: err}
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list", Err: err}
	}
	return items, nil
}

func (r *PgItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
        select ` + itemColumns + `
        from items
        where item_id = $1
    `
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "get", Err: err}
	}
	return item, nil
}

func (r *PgItemRepository) Insert(ctx context.Context, f domain.ItemFields) (*domain.Item, error) {
	query := `
        insert into items (name, sku, rate, "purchase rate", "stock on hand")
        values ($1,$2,$3,$4,$5)
        returning ` + itemColumns
	item, err := scanItem(r.db.QueryRowContext(
		ctx, query,
		f.Name,
		f.Sku,
		string(f.Rate),
		string(f.PurchaseRate),
		f.StockOnHand,
	))
	if err != nil {
		return nil, &domain.StoreError{Op: "insert", Err: err}
	}
	return item, nil
}

// Update reemplaza todas las columnas mutables.
func (r *PgItemRepository) Update(ctx context.Context, id int64, f domain.ItemFields) (*domain.Item, error) {
	query := `
        update items
        set name = $2,
            sku = $3,
            rate = $4,
            "purchase rate" = $5,
            "stock on hand" = $6
        where item_id = $1
        returning ` + itemColumns
	item, err := scanItem(r.db.QueryRowContext(
		ctx, query,
		id,
		f.Name,
		f.Sku,
		string(f.Rate),
		string(f.PurchaseRate),
		f.StockOnHand,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: "update", Err: err}
	}
	return item, nil
}

func (r *PgItemRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `delete from items where item_id = $1`, id)
	if err != nil {
		return false, &domain.StoreError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &domain.StoreError{Op: "delete", Err: err}
	}
	return n > 0, nil
}
