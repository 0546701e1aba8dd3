package memory

import (
	"cmp"
	"context"
	"slices"

	catalogapp "github.com/dmehra2102/pos-backend/internal/catalog/application"
	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

// Products is the catalog view of a Store.
type Products struct {
	s *Store
}

func (r *Products) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	err := r.s.atomically(ctx, func(t *txn) error {
		t.st.productSeq++
		p.ID = t.st.productSeq
		p.CreatedAt = t.now()
		p.UpdatedAt = p.CreatedAt
		t.st.products[p.ID] = p
		return nil
	})
	return p, err
}

func (r *Products) Get(_ context.Context, id int64) (catalog.Product, error) {
	var (
		p  catalog.Product
		ok bool
	)
	r.s.read(func(st *state) { p, ok = st.products[id] })
	if !ok {
		return catalog.Product{}, catalog.ProductNotFound(id)
	}
	return p, nil
}

func (r *Products) List(_ context.Context, q catalog.Query) ([]catalog.Product, error) {
	out := []catalog.Product{}
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if q.Match(p) {
				out = append(out, p)
			}
		}
	})
	slices.SortFunc(out, func(a, b catalog.Product) int {
		if q.Filter == catalog.FilterNeedsRestock {
			if c := cmp.Compare(a.StockQuantity, b.StockQuantity); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *Products) Update(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	err := r.s.atomically(ctx, func(t *txn) error {
		cur, ok := t.st.products[p.ID]
		if !ok {
			return catalog.ProductNotFound(p.ID)
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = t.now()
		t.st.products[p.ID] = p
		return nil
	})
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (r *Products) Delete(ctx context.Context, id int64) error {
	return r.s.atomically(ctx, func(t *txn) error {
		if _, ok := t.st.products[id]; !ok {
			return catalog.ProductNotFound(id)
		}
		for _, o := range t.st.orders {
			for _, it := range o.Items {
				if it.ProductID == id {
					return apperr.Conflict("product %d is referenced by order %d", id, o.ID)
				}
			}
		}
		delete(t.st.products, id)
		return nil
	})
}

func (r *Products) InStockTx(ctx context.Context, fn func(context.Context, catalogapp.StockTx) error) error {
	return r.s.atomically(ctx, func(t *txn) error { return fn(ctx, t) })
}
