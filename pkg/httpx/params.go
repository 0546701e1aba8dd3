package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

// PathID parses the chi URL parameter name as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument("invalid %s: %q", name, raw)
	}
	return id, nil
}

// QueryInt reads an integer query parameter. A missing parameter yields def,
// unless def is negative, in which case the parameter is required.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if def < 0 {
			return 0, apperr.InvalidArgument("query parameter %s is required", name)
		}
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.InvalidArgument("query parameter %s must be an integer", name)
	}
	return v, nil
}
