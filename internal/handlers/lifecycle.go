package handlers

import (
	"net/http"
)

const idempotencyHeader = "Idempotency-Key"

// StartAuctionHandler POST /api/auctions/{id}/start
func (h *Handler) StartAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.Lifecycle.Start(r.Context(), id, r.Header.Get(idempotencyHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, out.HTTPStatus, out)
}

// PauseAuctionHandler POST /api/auctions/{id}/pause
func (h *Handler) PauseAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.Lifecycle.Pause(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, out.HTTPStatus, out)
}

// FinishAuctionHandler POST /api/auctions/{id}/finish
func (h *Handler) FinishAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out, err := h.Lifecycle.Finish(r.Context(), id, r.Header.Get(idempotencyHeader))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, out.HTTPStatus, out)
}
