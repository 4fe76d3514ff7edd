package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/menulink/ordercore/internal/cart"
	"github.com/menulink/ordercore/internal/catalog"
	"github.com/menulink/ordercore/internal/handoff"
	"github.com/menulink/ordercore/internal/order"
	"github.com/menulink/ordercore/internal/session"
)

// Handoff channel names accepted by the checkout endpoint.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelStore    = "store"
)

// Handler exposes the ordering session flow over HTTP.
type Handler struct {
	sessions *session.Manager
	composer *order.Composer
	deepLink handoff.DeepLink
	orders   handoff.Store
}

func NewHandler(sessions *session.Manager, composer *order.Composer, deepLink handoff.DeepLink, orders handoff.Store) *Handler {
	return &Handler{
		sessions: sessions,
		composer: composer,
		deepLink: deepLink,
		orders:   orders,
	}
}

// OpenSession starts a new ordering session for a business: initial
// catalog load plus a live change subscription.
func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.BusinessID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "business_id is required")
		return
	}

	s, err := h.sessions.Open(r.Context(), req.BusinessID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "business_not_found", err.Error())
		case errors.Is(err, catalog.ErrTransient):
			writeError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "session_open_failed", err.Error())
		}
		return
	}

	slog.InfoContext(r.Context(), "session opened", "session_id", s.ID, "business_id", s.BusinessID)
	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID:      s.ID,
		BusinessID:     s.BusinessID,
		CatalogVersion: s.Snapshot().Version(),
	})
}

// CloseSession discards the cart and detaches the catalog subscription.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(id); err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCatalog returns the session's current catalog view for display.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mapCatalogToResponse(s.Snapshot()))
}

// GetCart returns the priced, reconciled cart view.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, mapViewToResponse(s.View()))
}

// AddLine adds one unit of an item+variant selection to the cart, merging
// with an existing line when the selection matches.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "item_id is required")
		return
	}

	if _, err := s.AddLine(req.ItemID, req.SizeID, req.ExtraIDs); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "item_not_found", err.Error())
		case errors.Is(err, cart.ErrItemUnavailable):
			writeError(w, http.StatusConflict, "item_unavailable", err.Error())
		case errors.Is(err, cart.ErrUnknownVariant):
			writeError(w, http.StatusBadRequest, "unknown_variant", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "add_line_failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, mapViewToResponse(s.View()))
}

// IncrementLine raises a line's quantity by one. Unknown keys are a no-op.
func (h *Handler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Increment(chi.URLParam(r, "key"))
	writeJSON(w, http.StatusOK, mapViewToResponse(s.View()))
}

// DecrementLine lowers a line's quantity by one, dropping the line at zero.
func (h *Handler) DecrementLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Decrement(chi.URLParam(r, "key"))
	writeJSON(w, http.StatusOK, mapViewToResponse(s.View()))
}

// RemoveLine deletes a line unconditionally.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.RemoveLine(chi.URLParam(r, "key"))
	writeJSON(w, http.StatusOK, mapViewToResponse(s.View()))
}

// Checkout composes the final order and hands it off over the requested
// channel. On success the session is closed; validation failures leave it
// open for correction.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	composed, err := s.Compose(h.composer, order.Customer{
		Name:  req.CustomerName,
		Phone: req.CustomerPhone,
	}, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrMissingName):
			writeError(w, http.StatusUnprocessableEntity, "missing_name", err.Error())
		case errors.Is(err, order.ErrInvalidPhone):
			writeError(w, http.StatusUnprocessableEntity, "invalid_phone", err.Error())
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "compose_failed", err.Error())
		}
		return
	}

	message := h.composer.RenderMessage(composed)
	res := CheckoutResponse{
		Order:   mapOrderToResponse(composed),
		Message: message,
	}

	switch req.Channel {
	case ChannelWhatsApp:
		link, err := h.deepLink.Build(message)
		if err != nil {
			// Configuration problem: the order was not delivered anywhere,
			// so the session stays open.
			writeError(w, http.StatusConflict, "missing_destination", err.Error())
			return
		}
		res.DeepLink = link
	case ChannelStore, "":
		if err := h.orders.Save(r.Context(), composed); err != nil {
			slog.ErrorContext(r.Context(), "order save failed", "order_id", composed.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "order_save_failed", err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown_channel", "channel must be \"whatsapp\" or \"store\"")
		return
	}

	// The flow is complete: destroy the cart and the subscription.
	_ = h.sessions.Close(s.ID)

	slog.InfoContext(r.Context(), "order handed off",
		"order_id", composed.ID, "session_id", s.ID, "channel", req.Channel,
		"grand_total", composed.GrandTotal.String())
	writeJSON(w, http.StatusCreated, res)
}

// GetOrder retrieves a persisted order by ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, handoff.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "order_lookup_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

// session resolves the {id} path parameter, writing the 404 itself so
// handlers can early-return on !ok.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
		return nil, false
	}
	return s, true
}

func mapViewToResponse(v session.View) CartResponse {
	lines := make([]CartLineResponse, 0, len(v.Lines))
	for _, lp := range v.Lines {
		lines = append(lines, CartLineResponse{
			Key:       lp.Key,
			ItemID:    lp.ItemID,
			Name:      lp.ItemName,
			Quantity:  lp.Quantity,
			Stale:     lp.Stale,
			UnitPrice: lp.UnitPrice.StringFixed(2),
			LineTotal: lp.LineTotal.StringFixed(2),
		})
	}
	return CartResponse{
		Lines:     lines,
		ItemCount: v.ItemCount,
		Total:     v.Total.StringFixed(2),
	}
}

func mapCatalogToResponse(snap *catalog.Snapshot) CatalogResponse {
	categories := make([]CategoryResponse, 0, len(snap.Categories()))
	for _, c := range snap.Categories() {
		categories = append(categories, CategoryResponse{ID: c.ID, Name: c.Name})
	}

	items := make([]CatalogItemResponse, 0, len(snap.Items()))
	for _, it := range snap.Items() {
		items = append(items, CatalogItemResponse{
			ID:         it.ID,
			Name:       it.Name,
			Price:      it.BasePrice.StringFixed(2),
			CategoryID: it.CategoryID,
			Image:      it.ImageURL,
			Available:  it.Purchasable(),
			Sizes:      mapSizes(it.Sizes),
			Extras:     mapExtras(it.Extras),
		})
	}

	return CatalogResponse{
		Version:    snap.Version(),
		Categories: categories,
		Items:      items,
	}
}

func mapSizes(sizes []catalog.Size) []VariantResponse {
	out := make([]VariantResponse, 0, len(sizes))
	for _, s := range sizes {
		out = append(out, VariantResponse{ID: s.ID, Name: s.Name, Price: s.PriceModifier.StringFixed(2)})
	}
	return out
}

func mapExtras(extras []catalog.Extra) []VariantResponse {
	out := make([]VariantResponse, 0, len(extras))
	for _, e := range extras {
		out = append(out, VariantResponse{ID: e.ID, Name: e.Name, Price: e.Price.StringFixed(2)})
	}
	return out
}

func mapOrderToResponse(o *order.ComposedOrder) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ItemID:    l.ItemID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal.StringFixed(2),
		})
	}
	return OrderResponse{
		ID:            o.ID,
		Business:      o.BusinessName,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Lines:         lines,
		Notes:         o.Notes,
		GrandTotal:    o.GrandTotal.StringFixed(2),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
