package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"pending", "PENDING", " Pending "} {
		st, err := ParseStatus(in)
		require.NoError(t, err)
		require.Equal(t, StatusPending, st)
	}
	_, err := ParseStatus("shipped")
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	require.EqualError(t, err, "Invalid status: shipped")
}

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(struct{ S Status }{StatusCancelled})
	require.NoError(t, err)
	require.JSONEq(t, `{"S":"CANCELLED"}`, string(b))

	var v struct{ S Status }
	require.NoError(t, json.Unmarshal([]byte(`{"S":"completed"}`), &v))
	require.Equal(t, StatusCompleted, v.S)
	require.Error(t, json.Unmarshal([]byte(`{"S":"lost"}`), &v))
}

func TestStrictTransitions(t *testing.T) {
	p := StrictTransitions{}
	allowed := [][2]Status{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		require.NoError(t, p.Allow(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
	denied := [][2]Status{
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCompleted},
		{StatusConfirmed, StatusPending},
	}
	for _, tr := range denied {
		require.ErrorIs(t, p.Allow(tr[0], tr[1]), apperr.ErrInvalidArgument, "%s -> %s", tr[0], tr[1])
	}
	require.NoError(t, PermissiveTransitions{}.Allow(StatusCancelled, StatusPending))
	require.IsType(t, StrictTransitions{}, NewTransitionPolicy(true))
	require.IsType(t, PermissiveTransitions{}, NewTransitionPolicy(false))
}

func TestRestoresStock(t *testing.T) {
	require.True(t, RestoresStock(StatusPending, StatusCancelled))
	require.True(t, RestoresStock(StatusCompleted, StatusCancelled))
	require.False(t, RestoresStock(StatusCancelled, StatusCancelled))
	require.False(t, RestoresStock(StatusPending, StatusCompleted))
}

func TestPlaceOrderValidate(t *testing.T) {
	ok := PlaceOrder{CustomerName: "Ana", Lines: []Line{{ProductID: 1, Quantity: 2}}}
	require.NoError(t, ok.Validate())

	cases := map[string]PlaceOrder{
		"no customer": {Lines: []Line{{ProductID: 1, Quantity: 1}}},
		"no lines":    {CustomerName: "Ana"},
		"zero qty":    {CustomerName: "Ana", Lines: []Line{{ProductID: 1, Quantity: 0}}},
		"no product":  {CustomerName: "Ana", Lines: []Line{{Quantity: 1}}},
		"huge qty":    {CustomerName: "Ana", Lines: []Line{{ProductID: 1, Quantity: math.MaxInt64}}},
	}
	for name, cmd := range cases {
		require.ErrorIs(t, cmd.Validate(), apperr.ErrInvalidArgument, name)
	}
}

func TestDemandSumsDuplicates(t *testing.T) {
	cmd := PlaceOrder{Lines: []Line{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}, {ProductID: 1, Quantity: 3}}}
	d, err := cmd.Demand()
	require.NoError(t, err)
	require.Equal(t, map[int64]int{1: 5, 2: 1}, d)
}

func TestDemandRejectsOverflowingSum(t *testing.T) {
	cmd := PlaceOrder{Lines: []Line{{ProductID: 1, Quantity: MaxQuantity}, {ProductID: 1, Quantity: 1}}}
	require.NoError(t, cmd.Validate())
	_, err := cmd.Demand()
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)

	cmd = PlaceOrder{Lines: []Line{{ProductID: 1, Quantity: math.MaxInt64}, {ProductID: 1, Quantity: math.MaxInt64}}}
	_, err = cmd.Demand()
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestOrderTotals(t *testing.T) {
	o := NewOrder(" Ana ", "", time.Now())
	require.Equal(t, "Ana", o.CustomerName)
	require.Equal(t, StatusPending, o.Status)

	o.AddItem(1, "Latte", 3, decimal.RequireFromString("4.25"))
	o.AddItem(2, "Muffin", 2, decimal.RequireFromString("2.10"))
	require.True(t, decimal.RequireFromString("16.95").Equal(o.TotalAmount))
	require.True(t, o.ComputedTotal().Equal(o.TotalAmount))
	require.True(t, decimal.RequireFromString("12.75").Equal(o.Items[0].LineTotal()))
}

func TestComputeStatistics(t *testing.T) {
	orders := []Order{
		{Status: StatusPending, TotalAmount: decimal.NewFromInt(5)},
		{Status: StatusCompleted, TotalAmount: decimal.RequireFromString("10.50")},
		{Status: StatusCompleted, TotalAmount: decimal.RequireFromString("4.25")},
		{Status: StatusCancelled, TotalAmount: decimal.NewFromInt(99)},
	}
	s := ComputeStatistics(SummarizeOrders(orders))
	require.EqualValues(t, 4, s.TotalOrders)
	require.EqualValues(t, 1, s.PendingOrders)
	require.EqualValues(t, 2, s.CompletedOrders)
	require.EqualValues(t, 1, s.CancelledOrders)
	require.Zero(t, s.ConfirmedOrders)
	require.True(t, decimal.RequireFromString("14.75").Equal(s.TotalRevenue))

	empty := ComputeStatistics(nil)
	require.True(t, empty.TotalRevenue.IsZero())
}

func TestQueryMatch(t *testing.T) {
	day := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	o := Order{Status: StatusPending, CustomerEmail: "ana@example.com", OrderDate: day}

	require.True(t, Query{}.Match(o))
	require.True(t, Query{Status: StatusPending}.Match(o))
	require.False(t, Query{Status: StatusCompleted}.Match(o))
	require.True(t, Query{CustomerEmail: "ANA@example.com"}.Match(o))

	from, to := Today(day)
	require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), from)
	require.True(t, Query{From: from, To: to}.Match(o))
	require.False(t, Query{From: to}.Match(o))
}
