package menu

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cortilabs/cuisine/internal/events"
)

const MaxBodyBytes = 1 << 20 // 1 MB

// Handler handles HTTP requests for menu item management
type Handler struct {
	items    MenuItemRepo
	notifier events.Notifier
	logger   apt.Logger
	config   *apt.Config
}

// HandlerDeps groups the handler dependencies
type HandlerDeps struct {
	Items    MenuItemRepo
	Notifier events.Notifier
}

// NewHandler creates a new Handler for menu item operations
func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if hd.Notifier == nil {
		hd.Notifier = events.NewNoopNotifier()
	}
	return &Handler{
		items:    hd.Items,
		notifier: hd.Notifier,
		logger:   logger,
		config:   config,
	}
}

// RegisterRoutes registers all routes for menu item management
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menu/items", func(r chi.Router) {
		r.Post("/", h.CreateMenuItem)
		r.Get("/", h.ListMenuItems)
		r.Get("/{id}", h.GetMenuItem)
		r.Put("/{id}", h.UpdateMenuItem)
		r.Delete("/{id}", h.DeleteMenuItem)
	})
}

// CreateMenuItem handles POST /menu/items
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	item, ok := h.decodeMenuItemPayload(w, r, log)
	if !ok {
		return
	}

	item.EnsureID()
	item.BeforeCreate()

	if validationErrors := ValidateMenuItem(item); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.items.Create(ctx, item); err != nil {
		log.Error("cannot create menu item", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create menu item")
		return
	}

	h.notifier.Broadcast(ctx, events.TopicItemCreated, item)

	links := apt.RESTfulLinksFor(item)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, item, links...)
}

// GetMenuItem handles GET /menu/items/{id}
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, err := h.items.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error("error loading menu item", "error", err, "id", id.String())
		}
		apt.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	links := apt.RESTfulLinksFor(item)
	apt.RespondSuccess(w, item, links...)
}

// ListMenuItems handles GET /menu/items
func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	items, err := h.items.List(ctx)
	if err != nil {
		log.Error("cannot list menu items", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not list menu items")
		return
	}

	apt.RespondCollection(w, items, "menu/items")
}

// UpdateMenuItem handles PUT /menu/items/{id}
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, ok := h.decodeMenuItemPayload(w, r, log)
	if !ok {
		return
	}

	item.ID = id
	item.BeforeUpdate()

	if validationErrors := ValidateMenuItem(item); len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		h.respondValidationErrors(w, validationErrors)
		return
	}

	if err := h.items.Save(ctx, item); err != nil {
		if errors.Is(err, ErrNotFound) {
			apt.RespondError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		log.Error("cannot update menu item", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}

	h.notifier.Broadcast(ctx, events.TopicItemUpdated, item)

	links := apt.RESTfulLinksFor(item)
	apt.RespondSuccess(w, item, links...)
}

// DeleteMenuItem handles DELETE /menu/items/{id}
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.items.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			apt.RespondError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		log.Error("cannot delete menu item", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete menu item")
		return
	}

	h.notifier.Broadcast(ctx, events.TopicItemDeleted, id.String())

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

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

func (h *Handler) decodeMenuItemPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (*MenuItem, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return nil, false
	}

	var item MenuItem
	if err := json.Unmarshal(body, &item); err != nil {
		log.Debug("error decoding JSON", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	return &item, true
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Validation failed",
		"errors": errors,
	})
}
