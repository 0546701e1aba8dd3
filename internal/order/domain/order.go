package domain

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

// MaxQuantity bounds a line, and the total asked of one product, to what the
// stock column can hold.
const MaxQuantity = math.MaxInt32

type Order struct {
	ID            int64           `json:"id"`
	OrderDate     time.Time       `json:"orderDate"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	Items         []OrderItem     `json:"orderItems"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Line is one requested (product, quantity) pair of a new order.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type PlaceOrder struct {
	CustomerName  string
	CustomerEmail string
	Lines         []Line
}

func (c PlaceOrder) Validate() error {
	if strings.TrimSpace(c.CustomerName) == "" {
		return apperr.InvalidArgument("customer name is required")
	}
	if len(c.Lines) == 0 {
		return apperr.InvalidArgument("order must contain at least one item")
	}
	for i, l := range c.Lines {
		if l.ProductID <= 0 {
			return apperr.InvalidArgument("item %d: product id is required", i)
		}
		if l.Quantity <= 0 {
			return apperr.InvalidArgument("item %d: quantity must be greater than zero", i)
		}
		if l.Quantity > MaxQuantity {
			return apperr.InvalidArgument("item %d: quantity cannot exceed %d", i, MaxQuantity)
		}
	}
	return nil
}

// Demand sums requested quantities per product, so a product listed on two
// lines is checked against its stock once for the combined amount.
func (c PlaceOrder) Demand() (map[int64]int, error) {
	d := make(map[int64]int, len(c.Lines))
	for _, l := range c.Lines {
		if l.Quantity <= 0 || l.Quantity > MaxQuantity-d[l.ProductID] {
			return nil, apperr.InvalidArgument("total quantity for product %d cannot exceed %d", l.ProductID, MaxQuantity)
		}
		d[l.ProductID] += l.Quantity
	}
	return d, nil
}

func NewOrder(customerName, customerEmail string, now time.Time) Order {
	return Order{
		OrderDate:     now,
		CustomerName:  strings.TrimSpace(customerName),
		CustomerEmail: strings.TrimSpace(customerEmail),
		TotalAmount:   decimal.Zero,
		Status:        StatusPending,
		UpdatedAt:     now,
	}
}

// AddItem appends a line priced at unitPrice and folds it into the total.
func (o *Order) AddItem(productID int64, productName string, quantity int, unitPrice decimal.Decimal) {
	item := OrderItem{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.LineTotal())
}

func (o Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func OrderNotFound(id int64) error {
	return apperr.NotFound("order not found with id: %d", id)
}
