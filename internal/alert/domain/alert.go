package domain

import (
	"time"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

// LowStockAlert is the latest known low stock condition of one product.
type LowStockAlert struct {
	ProductID     int64     `json:"productId"`
	ProductName   string    `json:"productName"`
	StockQuantity int       `json:"stockQuantity"`
	MinStockLevel int       `json:"minStockLevel"`
	RaisedAt      time.Time `json:"raisedAt"`
}

// Shortfall is how many units bring the product back to its minimum level.
func (a LowStockAlert) Shortfall() int {
	if d := a.MinStockLevel - a.StockQuantity; d > 0 {
		return d
	}
	return 0
}

func AlertNotFound(productID int64) error {
	return apperr.NotFound("no low stock alert for product %d", productID)
}
