package domain

type Statistics struct {
	TotalProducts   int `json:"totalProducts"`
	LowStockCount   int `json:"lowStockCount"`
	OutOfStockCount int `json:"outOfStockCount"`
}

func ComputeStatistics(products []Product) Statistics {
	s := Statistics{TotalProducts: len(products)}
	for _, p := range products {
		if p.IsLowStock() {
			s.LowStockCount++
		}
		if p.IsOutOfStock() {
			s.OutOfStockCount++
		}
	}
	return s
}
