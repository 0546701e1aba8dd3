package domain

import "strings"

type Filter int

const (
	FilterAll Filter = iota
	// FilterLowStock: stock below the minimum level.
	FilterLowStock
	// FilterNeedsRestock: stock at or below the minimum level, lowest stock first.
	FilterNeedsRestock
	FilterInStock
	// FilterNameContains: case-insensitive substring match on Query.Name.
	FilterNameContains
)

type Query struct {
	Filter Filter
	Name   string
}

func (q Query) Match(p Product) bool {
	switch q.Filter {
	case FilterLowStock:
		return p.IsLowStock()
	case FilterNeedsRestock:
		return p.NeedsRestock()
	case FilterInStock:
		return p.StockQuantity > 0
	case FilterNameContains:
		return containsFold(p.Name, q.Name)
	default:
		return true
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
