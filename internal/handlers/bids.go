package handlers

import (
	"net/http"
)

// Ставки создает воркер мессенджера, здесь только просмотр и удаление.

// ListBidsHandler GET /api/bids?item_id=
func (h *Handler) ListBidsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	itemID, err := parseQueryID(r, "item_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	bids, err := h.Store.ListBids(r.Context(), itemID, params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// GetBidHandler GET /api/bids/{id}
func (h *Handler) GetBidHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	bid, err := h.Store.GetBid(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

// DeleteBidHandler DELETE /api/bids/{id}
func (h *Handler) DeleteBidHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteBid(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}
