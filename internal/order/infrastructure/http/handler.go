package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/pos-backend/internal/order/application"
	"github.com/dmehra2102/pos-backend/internal/order/domain"
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
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Items         []domain.Line `json:"items"`
	OrderItems    []domain.Line `json:"orderItems"`
}

func (r createOrderReq) command() domain.PlaceOrder {
	lines := r.Items
	if len(lines) == 0 {
		lines = r.OrderItems
	}
	return domain.PlaceOrder{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		Lines:         lines,
	}
}

type statusReq struct {
	Status string `json:"status"`
}

// Routes is mounted at /orders. createMiddleware wraps only POST /orders.
func (h *Handler) Routes(createMiddleware ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.With(createMiddleware...).Post("/", h.createOrder)
	r.Get("/status/{status}", h.byStatus)
	r.Get("/customer", h.byCustomer)
	r.Get("/today", h.today)
	r.Get("/statistics", h.statistics)
	r.Get("/popular-products", h.popularProducts)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.getOrder)
		r.Get("/items", h.items)
		r.Put("/status", h.updateStatus)
		r.Put("/cancel", h.transition("CancelOrder", domain.StatusCancelled))
		r.Put("/complete", h.transition("CompleteOrder", domain.StatusCompleted))
		r.Put("/confirm", h.transition("ConfirmOrder", domain.StatusConfirmed))
	})
	return r
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PlaceOrder")
	defer span.End()

	var req createOrderReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}

	o, err := h.service.PlaceOrder(ctx, req.command())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		httpx.WriteError(w, h.log, err)
		return
	}
	span.SetAttributes(attribute.Int64("order.id", o.ID), attribute.String("order.total", o.TotalAmount.String()))
	httpx.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	o, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) items(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	items, err := h.service.Items(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.writeOrders(w)(h.service.List(r.Context()))
}

func (h *Handler) byStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	h.writeOrders(w)(h.service.ByStatus(r.Context(), status))
}

func (h *Handler) byCustomer(w http.ResponseWriter, r *http.Request) {
	h.writeOrders(w)(h.service.ByCustomer(r.Context(), r.URL.Query().Get("email")))
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	h.writeOrders(w)(h.service.Today(r.Context()))
}

func (h *Handler) writeOrders(w http.ResponseWriter) func([]domain.Order, error) {
	return func(orders []domain.Order, err error) {
		if err != nil {
			httpx.WriteError(w, h.log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, orders)
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

func (h *Handler) popularProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit", 0)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	top, err := h.service.PopularProducts(r.Context(), limit)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, top)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		httpx.WriteError(w, h.log, err)
		return
	}
	h.transition("UpdateOrderStatus", status)(w, r)
}

func (h *Handler) transition(op string, status domain.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), op)
		defer span.End()

		id, err := httpx.PathID(r, "id")
		if err != nil {
			httpx.WriteError(w, h.log, err)
			return
		}
		span.SetAttributes(attribute.Int64("order.id", id), attribute.String("order.status", status.String()))

		o, err := h.service.UpdateStatus(ctx, id, status)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			httpx.WriteError(w, h.log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, o)
	}
}
