// Package httpx is the web POS adapter: the JSON API behind the admin and
// point-of-sale screens. It translates HTTP requests into service and
// engine calls and maps typed failures onto status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rloza/tiendapos/internal/analytics"
	"github.com/rloza/tiendapos/internal/catalog"
	"github.com/rloza/tiendapos/internal/checkout"
	"github.com/rloza/tiendapos/internal/order"
)

// Handler serves the POS/admin API.
type Handler struct {
	products  *catalog.Service
	orders    order.Repository
	engine    *checkout.Engine
	analytics *analytics.Service
}

func NewHandler(products *catalog.Service, orders order.Repository, engine *checkout.Engine, an *analytics.Service) *Handler {
	return &Handler{
		products:  products,
		orders:    orders,
		engine:    engine,
		analytics: an,
	}
}

// --- products ---

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	p, err := h.products.Create(r.Context(), productFromRequest(req))
	if err != nil {
		h.writeProductError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeProductError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeProductError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	p := productFromRequest(req)
	p.ID = chi.URLParam(r, "id")
	updated, err := h.products.Update(r.Context(), p)
	if err != nil {
		h.writeProductError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeProductError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- orders ---

// CreateOrder is the POS checkout: the client holds the cart and submits
// an explicit item list; the engine does all validation and commits.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	items := make([]checkout.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	o, err := h.engine.Checkout(r.Context(), checkout.Request{
		Items:         items,
		CustomerRef:   req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		Channel:       order.ChannelPOS,
	})
	if err != nil {
		if checkout.IsRejection(err) {
			writeError(w, http.StatusBadRequest, "checkout_rejected", err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "checkout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "checkout_failed", "")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list orders", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.FindByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, order.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "get order", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// UpdateOrderStatus completes a pending order. This is the only mutation
// the ledger permits after commit, and it touches the status column alone.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if order.Status(req.Status) != order.StatusCompleted {
		writeError(w, http.StatusBadRequest, "invalid_status", "only Completed is accepted")
		return
	}
	id := chi.URLParam(r, "id")
	err := h.orders.UpdateStatus(r.Context(), id, order.StatusPending, order.StatusCompleted)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", "")
	case errors.Is(err, order.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", "order is not pending")
	case err != nil:
		slog.ErrorContext(r.Context(), "update order status", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// --- analytics ---

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "analytics", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- helpers ---

func productFromRequest(req productRequest) catalog.Product {
	return catalog.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
}

func (h *Handler) writeProductError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", "")
	case errors.Is(err, catalog.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, "invalid_product", err.Error())
	case errors.Is(err, catalog.ErrDuplicateSKU):
		writeError(w, http.StatusConflict, "duplicate_sku", err.Error())
	default:
		slog.ErrorContext(r.Context(), "product request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}
