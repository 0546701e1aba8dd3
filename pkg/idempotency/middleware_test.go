package idempotency

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memClaimer struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memClaimer) Claim(_ context.Context, k string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[k] {
		return false, nil
	}
	m.keys[k] = true
	return true, nil
}

func (m *memClaimer) Release(_ context.Context, k string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, k)
	return nil
}

func TestMiddleware(t *testing.T) {
	claimer := &memClaimer{keys: map[string]bool{}}
	status := http.StatusCreated
	calls := 0
	h := Middleware(slog.New(slog.NewTextHandler(io.Discard, nil)), claimer)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(status)
		}))

	do := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		if key != "" {
			req.Header.Set(HeaderKey, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusCreated, do("k1"))
	require.Equal(t, http.StatusConflict, do("k1"))
	require.Equal(t, 1, calls)

	// no header means no de-duplication
	require.Equal(t, http.StatusCreated, do(""))
	require.Equal(t, http.StatusCreated, do(""))
	require.Equal(t, 3, calls)

	// a failed request frees its key
	status = http.StatusBadRequest
	require.Equal(t, http.StatusBadRequest, do("k2"))
	status = http.StatusCreated
	require.Equal(t, http.StatusCreated, do("k2"))
}

func TestStoreKey(t *testing.T) {
	s := NewStore(nil, 0)
	require.Equal(t, "idem:pos.events:3:42", s.Key("pos.events", 3, 42))
	require.Equal(t, "idem:http:abc", s.requestKey("abc"))
}
