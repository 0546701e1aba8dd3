package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmehra2102/pos-backend/internal/alert/application"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

// Routes is mounted at /alerts.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/low-stock", h.list)
	r.Delete("/low-stock/{productId}", h.acknowledge)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.List(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, alerts)
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "productId")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if err := h.service.Acknowledge(r.Context(), id); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
