package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cortilabs/cuisine/internal/events"
	"github.com/cortilabs/cuisine/internal/menu"
)

const MaxBodyBytes = 1 << 20 // 1 MB

// ResetResult acknowledges a service reset with processing counts.
type ResetResult struct {
	OrdersProcessed int `json:"ordersProcessed"`
	OrdersDeleted   int `json:"ordersDeleted"`
}

// Handler drives the order lifecycle: creation reserves stock line by line,
// deletion and service reset release it, and every mutation is broadcast.
type Handler struct {
	orders   OrderRepo
	items    menu.MenuItemRepo
	ledger   *menu.Ledger
	notifier events.Notifier
	logger   apt.Logger
	config   *apt.Config
}

// HandlerDeps groups the handler dependencies
type HandlerDeps struct {
	Orders   OrderRepo
	Items    menu.MenuItemRepo
	Ledger   *menu.Ledger
	Notifier events.Notifier
}

// NewHandler creates a new Handler for order operations
func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if hd.Notifier == nil {
		hd.Notifier = events.NewNoopNotifier()
	}
	return &Handler{
		orders:   hd.Orders,
		items:    hd.Items,
		ledger:   hd.Ledger,
		notifier: hd.Notifier,
		logger:   logger,
		config:   config,
	}
}

// RegisterRoutes registers all routes for order operations
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Post("/", h.CreateOrder)
		r.Get("/stats", h.GetStats)
		r.Delete("/reset-service", h.ResetService)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}", h.UpdateOrder)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.DeleteOrder)
	})
}

// CreateOrder handles POST /orders.
//
// Lines are reserved in input order; the first unsatisfiable line rejects the
// whole order with that line's failure. Reservations already applied for
// earlier lines are NOT rolled back: a rejected multi-line order leaves them
// decremented until the stock is corrected through the menu endpoints.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	var req CreateOrderRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if validationErrors := ValidateCreateOrder(&req); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	o := NewOrder()
	o.TableNumber = req.TableNumber
	o.Notes = req.Notes
	o.TotalAmount = req.TotalAmount
	o.Items = linesFromRequest(req.Items)
	o.BeforeCreate()

	for _, line := range o.Items {
		if _, err := h.ledger.Reserve(ctx, line.MenuItemID, line.Quantity); err != nil {
			var insufficient *menu.InsufficientStockError
			switch {
			case errors.As(err, &insufficient):
				log.Debug("order rejected", "reason", "insufficient stock", "menu_item", insufficient.ItemName)
				h.respondValidationErrors(w, []ValidationError{{
					Field:   "items",
					Message: fmt.Sprintf("insufficient stock for %s", insufficient.ItemName),
				}})
			case errors.Is(err, menu.ErrNotFound):
				log.Debug("order rejected", "reason", "unknown menu item", "menu_item_id", line.MenuItemID.String())
				h.respondValidationErrors(w, []ValidationError{{
					Field:   "items",
					Message: fmt.Sprintf("menu item %s does not exist", line.MenuItemID.String()),
				}})
			default:
				log.Error("cannot reserve stock", "error", err, "menu_item_id", line.MenuItemID.String())
				apt.RespondError(w, http.StatusInternalServerError, "Could not create order")
			}
			return
		}
	}

	if err := h.orders.Create(ctx, o); err != nil {
		log.Error("cannot create order", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create order")
		return
	}

	h.resolveOrder(ctx, o, log)
	h.notifier.Broadcast(ctx, events.TopicOrderCreated, o)

	links := apt.RESTfulLinksFor(o)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, o, links...)
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orders.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("error loading order", "error", err, "id", id.String())
		}
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	h.resolveOrder(ctx, o, log)

	links := apt.RESTfulLinksFor(o)
	apt.RespondSuccess(w, o, links...)
}

// ListOrders handles GET /orders. Orders come back newest first with each
// line's menu item resolved against the current record.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	orders, err := h.orders.List(ctx)
	if err != nil {
		log.Error("cannot list orders", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	for _, o := range orders {
		h.resolveOrder(ctx, o, log)
	}

	apt.RespondCollection(w, orders, "order")
}

// UpdateStatus handles PUT /orders/{id}/status.
//
// Only pending, preparing and completed are accepted. Transitions are not
// restricted to forward edges: a regression is applied as requested.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if validationErrors := ValidateStatus(req.Status); len(validationErrors) > 0 {
		log.Debug("invalid status", "status", req.Status)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	o, err := h.orders.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("error loading order", "error", err, "id", id.String())
		}
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	o.SetStatus(req.Status)

	if err := h.orders.Save(ctx, o); err != nil {
		log.Error("cannot update order status", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	h.resolveOrder(ctx, o, log)
	h.notifier.Broadcast(ctx, events.TopicOrderUpdated, o)

	links := apt.RESTfulLinksFor(o)
	apt.RespondSuccess(w, o, links...)
}

// UpdateOrder handles PUT /orders/{id}.
//
// Partial patch of notes, table number, total amount, status and items.
// Replacing items swaps the line list wholesale without touching the stock
// ledger; no reservation or release is recomputed for the changed lines.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}

	if req.Status != nil {
		if validationErrors := ValidateStatus(*req.Status); len(validationErrors) > 0 {
			log.Debug("invalid status", "status", *req.Status)
			h.respondValidationErrors(w, validationErrors)
			return
		}
	}

	o, err := h.orders.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("error loading order", "error", err, "id", id.String())
		}
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	if req.TableNumber != nil {
		o.TableNumber = *req.TableNumber
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}
	if req.TotalAmount != nil {
		o.TotalAmount = *req.TotalAmount
	}
	if req.Items != nil {
		o.Items = linesFromRequest(*req.Items)
	}
	if req.Status != nil {
		o.SetStatus(*req.Status)
	} else {
		o.BeforeUpdate()
	}

	if err := h.orders.Save(ctx, o); err != nil {
		log.Error("cannot update order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	h.resolveOrder(ctx, o, log)
	h.notifier.Broadcast(ctx, events.TopicOrderUpdated, o)

	links := apt.RESTfulLinksFor(o)
	apt.RespondSuccess(w, o, links...)
}

// DeleteOrder handles DELETE /orders/{id}.
//
// Every line's reservation is released back to the ledger before the record
// is removed. A line whose menu item no longer exists is logged and skipped
// so the deletion always completes.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	o, err := h.orders.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("error loading order", "error", err, "id", id.String())
		}
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	h.releaseLines(ctx, o, log)

	if err := h.orders.Delete(ctx, id); err != nil {
		log.Error("cannot delete order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete order")
		return
	}

	h.notifier.Broadcast(ctx, events.TopicOrderDeleted, id.String())

	h.respondJSON(w, http.StatusOK, map[string]any{
		"message":  "Order deleted",
		"order_id": id.String(),
	})
}

// ResetService handles DELETE /orders/reset-service.
//
// Destructive, irreversible bulk operation: releases every outstanding
// reservation across all orders, then deletes all orders. Confirmation is a
// UI concern, not enforced here.
func (h *Handler) ResetService(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	orders, err := h.orders.List(ctx)
	if err != nil {
		log.Error("cannot list orders for reset", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not reset service")
		return
	}

	for _, o := range orders {
		h.releaseLines(ctx, o, log)
	}

	deleted, err := h.orders.DeleteAll(ctx)
	if err != nil {
		log.Error("cannot delete orders", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not reset service")
		return
	}

	h.notifier.Broadcast(ctx, events.TopicServiceReset, nil)

	log.Info("service reset", "orders_processed", len(orders), "orders_deleted", deleted)
	h.respondJSON(w, http.StatusOK, ResetResult{
		OrdersProcessed: len(orders),
		OrdersDeleted:   int(deleted),
	})
}

// GetStats handles GET /orders/stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	stats, err := h.orders.Stats(ctx)
	if err != nil {
		log.Error("cannot compute order stats", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not compute stats")
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

// Helper methods

// releaseLines returns every line's reserved quantity to the ledger.
// Missing menu items are logged and skipped rather than aborting the bulk
// operation, so delete/reset always complete even when referential data is
// inconsistent.
func (h *Handler) releaseLines(ctx context.Context, o *Order, log apt.Logger) {
	for _, line := range o.Items {
		if _, err := h.ledger.Release(ctx, line.MenuItemID, line.Quantity); err != nil {
			if errors.Is(err, menu.ErrNotFound) {
				log.Info("menu item missing during release, skipping",
					"order_id", o.ID.String(),
					"menu_item_id", line.MenuItemID.String(),
				)
				continue
			}
			log.Error("cannot release stock", "error", err,
				"order_id", o.ID.String(),
				"menu_item_id", line.MenuItemID.String(),
			)
		}
	}
}

// resolveOrder attaches the current menu item record to every line for
// consumers. A dangling reference resolves to a nil line item.
func (h *Handler) resolveOrder(ctx context.Context, o *Order, log apt.Logger) {
	for i := range o.Items {
		item, err := h.items.Get(ctx, o.Items[i].MenuItemID)
		if err != nil {
			if !errors.Is(err, menu.ErrNotFound) {
				log.Error("cannot resolve menu item", "error", err, "menu_item_id", o.Items[i].MenuItemID.String())
			}
			o.Items[i].MenuItem = nil
			continue
		}
		o.Items[i].MenuItem = item
	}
}

// linesFromRequest converts request lines, defaulting quantities below one to
// one.
func linesFromRequest(lines []OrderLineRequest) []OrderLine {
	result := make([]OrderLine, len(lines))
	for i, line := range lines {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		result[i] = OrderLine{
			MenuItemID: line.MenuItemID,
			Quantity:   qty,
			Notes:      line.Notes,
		}
	}
	return result
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr, "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, dst any, log apt.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("error decoding JSON", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}

	return true
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	h.respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "Validation failed",
		"errors": errors,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
