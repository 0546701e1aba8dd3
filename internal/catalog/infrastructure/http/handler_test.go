package http_test

import (
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

	"github.com/dmehra2102/pos-backend/internal/catalog/application"
	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
	cataloghttp "github.com/dmehra2102/pos-backend/internal/catalog/infrastructure/http"
	"github.com/dmehra2102/pos-backend/internal/platform/memory"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, memory.New().Products())
	r := chi.NewRouter()
	r.Mount("/api/products", cataloghttp.NewHandler(log, svc).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestProductLifecycle(t *testing.T) {
	srv := newServer(t)

	var p domain.Product
	code := call(t, srv, http.MethodPost, "/api/products",
		`{"name":"Matcha","description":"ceremonial","price":"18.90","stockQuantity":6,"minStockLevel":5}`, &p)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "Matcha", p.Name)
	require.True(t, decimal.RequireFromString("18.90").Equal(p.Price))

	var errResp httpx.ErrorResponse
	require.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/api/products", `{"name":"","price":1}`, &errResp))

	require.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodGet, "/api/products/0", "", &errResp))

	id := "/api/products/1"
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPut, id+"/deduct?quantity=2", "", &p))
	require.Equal(t, 4, p.StockQuantity)

	require.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPut, id+"/deduct?quantity=9", "", &errResp))
	require.Equal(t, "Insufficient stock for product: Matcha. Available: 4, Requested: 9", errResp.Error)

	require.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPut, id+"/restock", "", &errResp))
	require.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPut, id+"/restock?quantity=-1", "", &errResp))
	require.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPut, id+"/restock?quantity=9223372036854775807", "", &errResp))
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPut, id+"/restock?quantity=10", "", &p))
	require.Equal(t, 14, p.StockQuantity)

	var avail struct {
		Available bool `json:"available"`
	}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, id+"/availability?quantity=14", "", &avail))
	require.True(t, avail.Available)

	var list []domain.Product
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/products/search?name=MATCH", "", &list))
	require.Len(t, list, 1)
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/products/low-stock", "", &list))
	require.Empty(t, list)

	var stats domain.Statistics
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/products/statistics", "", &stats))
	require.Equal(t, domain.Statistics{TotalProducts: 1}, stats)

	require.Equal(t, http.StatusNoContent, call(t, srv, http.MethodDelete, id, "", nil))
	require.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, id, "", &errResp))
}
