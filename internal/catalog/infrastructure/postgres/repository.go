package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/pos-backend/internal/catalog/application"
	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
	platform "github.com/dmehra2102/pos-backend/internal/platform/postgres"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	created, err := platform.ScanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price, stock_quantity, min_stock_level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+platform.ProductColumns,
		p.Name, p.Description, p.Price, p.StockQuantity, p.MinStockLevel))
	if platform.IsCheckViolation(err) || platform.IsOutOfRange(err) {
		return domain.Product{}, apperr.Wrap(apperr.KindInvalidArgument, err, "invalid product")
	}
	return created, err
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Product, error) {
	p, err := platform.ScanProduct(r.pool.QueryRow(ctx, `SELECT `+platform.ProductColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ProductNotFound(id)
	}
	return p, err
}

func (r *Repository) List(ctx context.Context, q domain.Query) ([]domain.Product, error) {
	sql := `SELECT ` + platform.ProductColumns + ` FROM products`
	var args []any
	switch q.Filter {
	case domain.FilterLowStock:
		sql += ` WHERE stock_quantity < min_stock_level ORDER BY id`
	case domain.FilterNeedsRestock:
		sql += ` WHERE stock_quantity <= min_stock_level ORDER BY stock_quantity, id`
	case domain.FilterInStock:
		sql += ` WHERE stock_quantity > 0 ORDER BY id`
	case domain.FilterNameContains:
		sql += ` WHERE name ILIKE '%' || $1 || '%' ORDER BY id`
		args = append(args, q.Name)
	default:
		sql += ` ORDER BY id`
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := platform.ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	updated, err := platform.ScanProduct(r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5, min_stock_level = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+platform.ProductColumns,
		p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.MinStockLevel))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Product{}, domain.ProductNotFound(p.ID)
	case platform.IsCheckViolation(err), platform.IsOutOfRange(err):
		return domain.Product{}, apperr.Wrap(apperr.KindInvalidArgument, err, "invalid product")
	}
	return updated, err
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if platform.IsForeignKeyViolation(err) {
		return apperr.Conflict("product %d is referenced by existing orders", id)
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ProductNotFound(id)
	}
	return nil
}

func (r *Repository) InStockTx(ctx context.Context, fn func(context.Context, application.StockTx) error) error {
	return platform.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, platform.StockTx{Tx: tx})
	})
}
