package domain

const (
	AggregateType = "product"
	EventStockLow = "StockLow"
)

type StockLow struct {
	ProductID     int64  `json:"productId"`
	ProductName   string `json:"productName"`
	StockQuantity int    `json:"stockQuantity"`
	MinStockLevel int    `json:"minStockLevel"`
}

func NewStockLow(p Product) StockLow {
	return StockLow{
		ProductID:     p.ID,
		ProductName:   p.Name,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
	}
}
