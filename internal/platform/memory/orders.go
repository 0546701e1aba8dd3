package memory

import (
	"cmp"
	"context"
	"slices"

	orderapp "github.com/dmehra2102/pos-backend/internal/order/application"
	order "github.com/dmehra2102/pos-backend/internal/order/domain"
)

// Orders is the order view of a Store.
type Orders struct {
	s *Store
}

func (r *Orders) Do(ctx context.Context, fn func(context.Context, orderapp.Tx) error) error {
	return r.s.atomically(ctx, func(t *txn) error { return fn(ctx, t) })
}

func (r *Orders) Get(_ context.Context, id int64) (order.Order, error) {
	var (
		o  order.Order
		ok bool
	)
	r.s.read(func(st *state) {
		o, ok = st.orders[id]
		o.Items = slices.Clone(o.Items)
	})
	if !ok {
		return order.Order{}, order.OrderNotFound(id)
	}
	return o, nil
}

// List returns matching orders, newest first.
func (r *Orders) List(_ context.Context, q order.Query) ([]order.Order, error) {
	out := []order.Order{}
	r.s.read(func(st *state) {
		for _, o := range st.orders {
			if q.Match(o) {
				o.Items = slices.Clone(o.Items)
				out = append(out, o)
			}
		}
	})
	slices.SortFunc(out, func(a, b order.Order) int {
		if c := b.OrderDate.Compare(a.OrderDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r *Orders) Items(ctx context.Context, orderID int64) ([]order.OrderItem, error) {
	o, err := r.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Items == nil {
		return []order.OrderItem{}, nil
	}
	return o.Items, nil
}

func (r *Orders) StatusTotals(ctx context.Context) ([]order.StatusTotal, error) {
	all, err := r.List(ctx, order.Query{})
	if err != nil {
		return nil, err
	}
	return order.SummarizeOrders(all), nil
}

func (r *Orders) PopularProducts(_ context.Context, limit int) ([]order.ProductSales, error) {
	byProduct := map[int64]*order.ProductSales{}
	r.s.read(func(st *state) {
		for _, o := range st.orders {
			if o.Status == order.StatusCancelled {
				continue
			}
			for _, it := range o.Items {
				ps, ok := byProduct[it.ProductID]
				if !ok {
					ps = &order.ProductSales{ProductID: it.ProductID, ProductName: it.ProductName}
					byProduct[it.ProductID] = ps
				}
				ps.UnitsSold += int64(it.Quantity)
			}
		}
	})

	out := make([]order.ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	slices.SortFunc(out, func(a, b order.ProductSales) int {
		if c := cmp.Compare(b.UnitsSold, a.UnitsSold); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
