package idempotency

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
)

const HeaderKey = "Idempotency-Key"

type Claimer interface {
	Claim(ctx context.Context, requestKey string) (bool, error)
	Release(ctx context.Context, requestKey string) error
}

// Middleware rejects a repeated Idempotency-Key with 409. A key whose request
// did not succeed is released so the client can retry with it. Requests
// without the header pass through untouched.
func Middleware(log *slog.Logger, c Claimer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := c.Claim(r.Context(), key)
			if err != nil {
				log.Error("idempotency claim failed", "key", key, "err", err)
				httpx.WriteError(w, log, err)
				return
			}
			if !ok {
				httpx.WriteError(w, log, apperr.Conflict("request with %s %q was already processed", HeaderKey, key))
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := c.Release(context.WithoutCancel(r.Context()), key); err != nil {
					log.Warn("idempotency release failed", "key", key, "err", err)
				}
			}
		})
	}
}
