package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

func newProduct(stock, min int) Product {
	return Product{ID: 1, Name: "Espresso Beans", Price: decimal.RequireFromString("12.50"), StockQuantity: stock, MinStockLevel: min}
}

func TestValidate(t *testing.T) {
	ok := newProduct(10, 5)
	require.NoError(t, ok.Validate())
	ok.Price = decimal.RequireFromString("1.500")
	require.NoError(t, ok.Validate())

	cases := map[string]func(p *Product){
		"blank name":     func(p *Product) { p.Name = "   " },
		"zero price":     func(p *Product) { p.Price = decimal.Zero },
		"negative price": func(p *Product) { p.Price = decimal.NewFromInt(-1) },
		"negative stock": func(p *Product) { p.StockQuantity = -1 },
		"negative min":   func(p *Product) { p.MinStockLevel = -3 },
		"three decimals": func(p *Product) { p.Price = decimal.RequireFromString("1.005") },
		"huge price":     func(p *Product) { p.Price = decimal.RequireFromString("10000000000") },
		"huge stock":     func(p *Product) { p.StockQuantity = MaxStock + 1 },
		"huge min":       func(p *Product) { p.MinStockLevel = math.MaxInt64 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := newProduct(10, 5)
			mutate(&p)
			require.ErrorIs(t, p.Validate(), apperr.ErrInvalidArgument)
		})
	}
}

func TestDeduct(t *testing.T) {
	p := newProduct(10, 5)
	require.NoError(t, p.Deduct(3))
	require.Equal(t, 7, p.StockQuantity)

	err := p.Deduct(8)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	require.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
	require.EqualError(t, err, "Insufficient stock for product: Espresso Beans. Available: 7, Requested: 8")
	require.Equal(t, 7, p.StockQuantity)

	var ise *InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Equal(t, 7, ise.Available)
	require.Equal(t, 8, ise.Requested)

	require.ErrorIs(t, p.Deduct(-1), apperr.ErrInvalidArgument)
}

func TestRestock(t *testing.T) {
	p := newProduct(0, 5)
	require.NoError(t, p.Restock(0))
	require.NoError(t, p.Restock(12))
	require.Equal(t, 12, p.StockQuantity)
	require.ErrorIs(t, p.Restock(-2), apperr.ErrInvalidArgument)

	require.ErrorIs(t, p.Restock(math.MaxInt64), apperr.ErrInvalidArgument)
	require.ErrorIs(t, p.Restock(MaxStock-11), apperr.ErrInvalidArgument)
	require.Equal(t, 12, p.StockQuantity)
	require.NoError(t, p.Restock(MaxStock-12))
	require.Equal(t, MaxStock, p.StockQuantity)
}

func TestThresholds(t *testing.T) {
	atMin := newProduct(5, 5)
	require.False(t, atMin.IsLowStock())
	require.True(t, atMin.NeedsRestock())

	below := newProduct(4, 5)
	require.True(t, below.IsLowStock())
	require.True(t, below.NeedsRestock())

	empty := newProduct(0, 0)
	require.True(t, empty.IsOutOfStock())
	require.False(t, empty.IsLowStock())
}

func TestComputeStatistics(t *testing.T) {
	stats := ComputeStatistics([]Product{
		newProduct(10, 5),
		newProduct(5, 5),
		newProduct(2, 5),
		newProduct(0, 5),
		newProduct(0, 0),
	})
	require.Equal(t, Statistics{TotalProducts: 5, LowStockCount: 2, OutOfStockCount: 2}, stats)
	require.Equal(t, Statistics{}, ComputeStatistics(nil))
}

func TestQueryMatch(t *testing.T) {
	p := newProduct(3, 5)
	require.True(t, Query{}.Match(p))
	require.True(t, Query{Filter: FilterLowStock}.Match(p))
	require.True(t, Query{Filter: FilterInStock}.Match(p))
	require.True(t, Query{Filter: FilterNameContains, Name: "beans"}.Match(p))
	require.False(t, Query{Filter: FilterNameContains, Name: "tea"}.Match(p))
	require.False(t, Query{Filter: FilterInStock}.Match(newProduct(0, 1)))
}

func TestStockNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := newProduct(rapid.IntRange(0, 50).Draw(t, "initial"), 5)
		ops := rapid.SliceOf(rapid.OneOf(rapid.IntRange(-30, 30), rapid.IntRange(-math.MaxInt64, math.MaxInt64))).Draw(t, "ops")
		for _, op := range ops {
			before := p.StockQuantity
			if op >= 0 {
				_ = p.Restock(op)
			} else if err := p.Deduct(-op); err != nil {
				if p.StockQuantity != before {
					t.Fatalf("failed deduct mutated stock: %d -> %d", before, p.StockQuantity)
				}
			}
			if p.StockQuantity < 0 || p.StockQuantity > MaxStock {
				t.Fatalf("stock out of range: %d", p.StockQuantity)
			}
		}
	})
}
