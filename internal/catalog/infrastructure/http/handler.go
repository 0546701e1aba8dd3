package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/pos-backend/internal/catalog/application"
	"github.com/dmehra2102/pos-backend/internal/catalog/domain"
	"github.com/dmehra2102/pos-backend/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

type productReq struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	MinStockLevel int             `json:"minStockLevel"`
}

func (p productReq) product() domain.Product {
	return domain.Product{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
	}
}

type availabilityResp struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Available bool  `json:"available"`
}

// Routes is mounted at /products.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/low-stock", h.lowStock)
	r.Get("/needs-restock", h.needsRestock)
	r.Get("/in-stock", h.inStock)
	r.Get("/search", h.search)
	r.Get("/statistics", h.statistics)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Put("/restock", h.restock)
		r.Put("/deduct", h.deduct)
		r.Get("/availability", h.availability)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.writeList(w)(h.service.List(r.Context()))
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	h.writeList(w)(h.service.LowStock(r.Context()))
}

func (h *Handler) needsRestock(w http.ResponseWriter, r *http.Request) {
	h.writeList(w)(h.service.NeedsRestock(r.Context()))
}

func (h *Handler) inStock(w http.ResponseWriter, r *http.Request) {
	h.writeList(w)(h.service.InStock(r.Context()))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	h.writeList(w)(h.service.Search(r.Context(), r.URL.Query().Get("name")))
}

func (h *Handler) writeList(w http.ResponseWriter) func([]domain.Product, error) {
	return func(products []domain.Product, err error) {
		if err != nil {
			httpx.WriteError(w, h.log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, products)
	}
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req productReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	p, err := h.service.Create(ctx, req.product())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("product.id", p.ID))
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	var req productReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	p, err := h.service.Update(ctx, id, req.product())
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "RestockProduct", h.service.Restock)
}

func (h *Handler) deduct(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "DeductStock", h.service.Deduct)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id int64, amount int) (domain.Product, error)) {
	ctx, span := h.tracer.Start(r.Context(), op)
	defer span.End()

	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	qty, err := httpx.QueryInt(r, "quantity", -1)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("product.id", id), attribute.Int("quantity", qty))

	p, err := fn(ctx, id, qty)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	qty, err := httpx.QueryInt(r, "quantity", 1)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	ok, err := h.service.Available(r.Context(), id, qty)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, availabilityResp{ProductID: id, Quantity: qty, Available: ok})
}
