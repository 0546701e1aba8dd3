package domain

import "github.com/shopspring/decimal"

const (
	AggregateType           = "order"
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type OrderPlaced struct {
	OrderID      int64           `json:"orderId"`
	CustomerName string          `json:"customerName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Items        []OrderItem     `json:"items"`
}

type OrderStatusChanged struct {
	OrderID       int64  `json:"orderId"`
	From          Status `json:"from"`
	To            Status `json:"to"`
	StockRestored bool   `json:"stockRestored"`
}
