package domain

import "github.com/shopspring/decimal"

// StatusTotal is one row of a per-status aggregate over orders.
type StatusTotal struct {
	Status Status
	Count  int64
	Amount decimal.Decimal
}

type Statistics struct {
	TotalOrders     int64           `json:"totalOrders"`
	PendingOrders   int64           `json:"pendingOrders"`
	ConfirmedOrders int64           `json:"confirmedOrders"`
	CompletedOrders int64           `json:"completedOrders"`
	CancelledOrders int64           `json:"cancelledOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}

// ComputeStatistics folds per-status totals. Revenue counts COMPLETED orders only.
func ComputeStatistics(rows []StatusTotal) Statistics {
	s := Statistics{TotalRevenue: decimal.Zero}
	for _, r := range rows {
		s.TotalOrders += r.Count
		switch r.Status {
		case StatusPending:
			s.PendingOrders += r.Count
		case StatusConfirmed:
			s.ConfirmedOrders += r.Count
		case StatusCompleted:
			s.CompletedOrders += r.Count
			s.TotalRevenue = s.TotalRevenue.Add(r.Amount)
		case StatusCancelled:
			s.CancelledOrders += r.Count
		}
	}
	return s
}

// SummarizeOrders groups orders by status; used where no aggregate query exists.
func SummarizeOrders(orders []Order) []StatusTotal {
	idx := map[Status]int{}
	var rows []StatusTotal
	for _, o := range orders {
		i, ok := idx[o.Status]
		if !ok {
			i = len(rows)
			idx[o.Status] = i
			rows = append(rows, StatusTotal{Status: o.Status, Amount: decimal.Zero})
		}
		rows[i].Count++
		rows[i].Amount = rows[i].Amount.Add(o.TotalAmount)
	}
	return rows
}

type ProductSales struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitsSold   int64  `json:"unitsSold"`
}
