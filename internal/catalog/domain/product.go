package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

// MaxStock is the largest stock level or single stock movement the store
// holds; the column is a 32-bit integer.
const MaxStock = math.MaxInt32

// Prices carry at most two decimal places and fit NUMERIC(12, 2).
var maxPrice = decimal.RequireFromString("9999999999.99")

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	MinStockLevel int             `json:"minStockLevel"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.InvalidArgument("product name cannot be empty")
	case !p.Price.IsPositive():
		return apperr.InvalidArgument("product price must be greater than zero")
	case !p.Price.Equal(p.Price.Truncate(2)):
		return apperr.InvalidArgument("product price cannot have more than two decimal places")
	case p.Price.GreaterThan(maxPrice):
		return apperr.InvalidArgument("product price cannot exceed %s", maxPrice)
	case p.StockQuantity < 0:
		return apperr.InvalidArgument("stock quantity cannot be negative")
	case p.StockQuantity > MaxStock:
		return apperr.InvalidArgument("stock quantity cannot exceed %d", MaxStock)
	case p.MinStockLevel < 0:
		return apperr.InvalidArgument("minimum stock level cannot be negative")
	case p.MinStockLevel > MaxStock:
		return apperr.InvalidArgument("minimum stock level cannot exceed %d", MaxStock)
	}
	return nil
}

// IsLowStock is the reporting threshold: strictly below the minimum level.
func (p Product) IsLowStock() bool { return p.StockQuantity < p.MinStockLevel }

// NeedsRestock is true at or below the minimum level.
func (p Product) NeedsRestock() bool { return p.StockQuantity <= p.MinStockLevel }

func (p Product) IsOutOfStock() bool { return p.StockQuantity == 0 }

func (p Product) CanSupply(quantity int) bool { return quantity <= p.StockQuantity }

// Deduct removes amount from stock. Stock is never taken below zero.
func (p *Product) Deduct(amount int) error {
	if amount < 0 {
		return apperr.InvalidArgument("deduct amount cannot be negative")
	}
	if !p.CanSupply(amount) {
		return &InsufficientStockError{ProductID: p.ID, ProductName: p.Name, Available: p.StockQuantity, Requested: amount}
	}
	p.StockQuantity -= amount
	return nil
}

func (p *Product) Restock(amount int) error {
	if amount < 0 {
		return apperr.InvalidArgument("restock amount cannot be negative")
	}
	if amount > MaxStock-p.StockQuantity {
		return apperr.InvalidArgument("restock of %d would take stock above %d", amount, MaxStock)
	}
	p.StockQuantity += amount
	return nil
}

type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product: %s. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Kind() apperr.Kind { return apperr.KindInsufficientStock }

func (e *InsufficientStockError) Is(target error) bool {
	return target == apperr.ErrInsufficientStock
}

func ProductNotFound(id int64) error {
	return apperr.NotFound("product not found with id: %d", id)
}
