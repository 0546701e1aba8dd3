package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
	"github.com/dmehra2102/pos-backend/pkg/outbox"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const ProductColumns = `id, name, description, price, stock_quantity, min_stock_level, created_at, updated_at`

func ScanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.MinStockLevel, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// StockTx implements the stock side of a unit of work on top of a pgx transaction.
type StockTx struct {
	Tx pgx.Tx
}

func (t StockTx) LockProducts(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rows, err := t.Tx.Query(ctx, `SELECT `+ProductColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]catalog.Product, len(ids))
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// AdjustStock applies delta with a guarded update, so stock can never drop
// below zero even without a prior lock.
func (t StockTx) AdjustStock(ctx context.Context, id int64, delta int) (catalog.Product, error) {
	p, err := ScanProduct(t.Tx.QueryRow(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1 AND stock_quantity + $2 >= 0
		RETURNING `+ProductColumns, id, delta))
	if err == nil {
		return p, nil
	}
	if IsOutOfRange(err) {
		return catalog.Product{}, apperr.Wrap(apperr.KindInvalidArgument, err, "stock adjustment out of range")
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, err
	}

	var name string
	var stock int
	err = t.Tx.QueryRow(ctx, `SELECT name, stock_quantity FROM products WHERE id = $1`, id).Scan(&name, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ProductNotFound(id)
	}
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Product{}, &catalog.InsufficientStockError{ProductID: id, ProductName: name, Available: stock, Requested: -delta}
}

func (t StockTx) AppendEvent(ctx context.Context, e outbox.Event) error {
	return InsertEvent(ctx, t.Tx, e)
}
