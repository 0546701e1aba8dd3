package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/dmehra2102/pos-backend/internal/catalog/application"
	catalog "github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/internal/order/application"
	"github.com/dmehra2102/pos-backend/internal/order/domain"
	orderhttp "github.com/dmehra2102/pos-backend/internal/order/infrastructure/http"
	"github.com/dmehra2102/pos-backend/internal/platform/memory"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
)

type fixture struct {
	srv     *httptest.Server
	catalog *catalogapp.Service
}

func setup(t *testing.T) fixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	orders := store.Orders()
	svc := application.NewService(log, orders, orders, domain.StrictTransitions{})

	r := chi.NewRouter()
	r.Mount("/api/orders", orderhttp.NewHandler(log, svc).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fixture{srv: srv, catalog: catalogapp.NewService(log, store.Products())}
}

func (f fixture) do(t *testing.T, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestCreateOrderFlow(t *testing.T) {
	f := setup(t)
	p, err := f.catalog.Create(context.Background(), catalog.Product{Name: "Latte", Price: decimal.RequireFromString("4.00"), StockQuantity: 10, MinStockLevel: 5})
	require.NoError(t, err)

	var o domain.Order
	code := f.do(t, http.MethodPost, "/api/orders",
		`{"customerName":"Ana","customerEmail":"ana@example.com","items":[{"productId":`+itoa(p.ID)+`,"quantity":3}]}`, &o)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, domain.StatusPending, o.Status)
	require.True(t, decimal.RequireFromString("12").Equal(o.TotalAmount))

	var fetched domain.Order
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/orders/"+itoa(o.ID), "", &fetched))
	require.Equal(t, o.ID, fetched.ID)

	var items []domain.OrderItem
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/orders/"+itoa(o.ID)+"/items", "", &items))
	require.Len(t, items, 1)

	var errResp httpx.ErrorResponse
	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/orders/"+itoa(o.ID)+"/status", `{"status":"teleported"}`, &errResp))
	require.Equal(t, "Invalid status: teleported", errResp.Error)

	var cancelled domain.Order
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/api/orders/"+itoa(o.ID)+"/status", `{"status":"cancelled"}`, &cancelled))
	require.Equal(t, domain.StatusCancelled, cancelled.Status)

	after, err := f.catalog.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 10, after.StockQuantity)

	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/api/orders/"+itoa(o.ID)+"/complete", "", &errResp))

	var stats domain.Statistics
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/orders/statistics", "", &stats))
	require.EqualValues(t, 1, stats.TotalOrders)
	require.EqualValues(t, 1, stats.CancelledOrders)
}

func TestCreateOrderErrors(t *testing.T) {
	f := setup(t)
	p, err := f.catalog.Create(context.Background(), catalog.Product{Name: "Donut", Price: decimal.NewFromInt(2), StockQuantity: 2})
	require.NoError(t, err)

	var errResp httpx.ErrorResponse
	code := f.do(t, http.MethodPost, "/api/orders",
		`{"customerName":"Ana","orderItems":[{"productId":`+itoa(p.ID)+`,"quantity":5}]}`, &errResp)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Insufficient stock for product: Donut. Available: 2, Requested: 5", errResp.Error)

	code = f.do(t, http.MethodPost, "/api/orders", `{"customerName":"Ana","items":[{"productId":77,"quantity":1}]}`, &errResp)
	require.Equal(t, http.StatusNotFound, code)

	code = f.do(t, http.MethodPost, "/api/orders", `{"customerName":`, &errResp)
	require.Equal(t, http.StatusBadRequest, code)

	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/orders/12345", "", &errResp))
	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/orders/abc", "", &errResp))
	require.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/orders/status/lost", "", &errResp))

	var orders []domain.Order
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/orders", "", &orders))
	require.Empty(t, orders)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
