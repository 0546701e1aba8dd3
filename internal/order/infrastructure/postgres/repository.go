package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/pos-backend/internal/order/application"
	"github.com/dmehra2102/pos-backend/internal/order/domain"
	platform "github.com/dmehra2102/pos-backend/internal/platform/postgres"
)

const orderColumns = `id, order_date, customer_name, customer_email, total_amount, status, updated_at`

const itemColumns = `id, order_id, product_id, product_name, quantity, unit_price`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Do(ctx context.Context, fn func(context.Context, application.Tx) error) error {
	return platform.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txn{StockTx: platform.StockTx{Tx: tx}})
	})
}

type txn struct {
	platform.StockTx
}

func (t *txn) InsertOrder(ctx context.Context, o *domain.Order) error {
	err := t.Tx.QueryRow(ctx, `
		INSERT INTO orders (order_date, customer_name, customer_email, total_amount, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		o.OrderDate, o.CustomerName, o.CustomerEmail, o.TotalAmount, string(o.Status), o.UpdatedAt).Scan(&o.ID)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(`
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice)
	}
	br := t.Tx.SendBatch(ctx, batch)
	for i := range o.Items {
		if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			_ = br.Close()
			return err
		}
		o.Items[i].OrderID = o.ID
	}
	return br.Close()
}

func (t *txn) LockOrder(ctx context.Context, id int64) (domain.Order, error) {
	o, err := scanOrder(t.Tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.OrderNotFound(id)
	}
	if err != nil {
		return domain.Order{}, err
	}
	items, err := loadItems(ctx, t.Tx, []int64{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

func (t *txn) SetStatus(ctx context.Context, id int64, status domain.Status, at time.Time) error {
	ct, err := t.Tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.OrderNotFound(id)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.OrderNotFound(id)
	}
	if err != nil {
		return domain.Order{}, err
	}
	items, err := loadItems(ctx, r.pool, []int64{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

// List returns matching orders, newest first.
func (r *Repository) List(ctx context.Context, q domain.Query) ([]domain.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR lower(customer_email) = lower($2))
		  AND ($3::timestamptz IS NULL OR order_date >= $3)
		  AND ($4::timestamptz IS NULL OR order_date < $4)
		ORDER BY order_date DESC, id DESC`

	rows, err := r.pool.Query(ctx, sql, string(q.Status), q.CustomerEmail, nullTime(q.From), nullTime(q.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *Repository) Items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	items, err := loadItems(ctx, r.pool, []int64{orderID})
	if err != nil {
		return nil, err
	}
	if items[orderID] == nil {
		return []domain.OrderItem{}, nil
	}
	return items[orderID], nil
}

func (r *Repository) StatusTotals(ctx context.Context) ([]domain.StatusTotal, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*), coalesce(sum(total_amount), 0) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StatusTotal
	for rows.Next() {
		var st domain.StatusTotal
		var status string
		if err := rows.Scan(&status, &st.Count, &st.Amount); err != nil {
			return nil, err
		}
		st.Status = domain.Status(status)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *Repository) PopularProducts(ctx context.Context, limit int) ([]domain.ProductSales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT oi.product_id, p.name, sum(oi.quantity) AS units
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status <> 'CANCELLED'
		GROUP BY oi.product_id, p.name
		ORDER BY units DESC, oi.product_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProductSales{}
	for rows.Next() {
		var ps domain.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.UnitsSold); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.OrderDate, &o.CustomerName, &o.CustomerEmail, &o.TotalAmount, &status, &o.UpdatedAt)
	o.Status = domain.Status(status)
	return o, err
}

func loadItems(ctx context.Context, db platform.DBTX, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := db.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
