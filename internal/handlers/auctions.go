package handlers

import (
	"net/http"
	"time"

	"auctions/internal/apperrors"
	"auctions/models"
)

type auctionRequest struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description"`
	Status      models.AuctionStatus `json:"status" validate:"omitempty,oneof=DRAFT SCHEDULED RUNNING PAUSED FINISHED CANCELLED"`
	StartsAt    *time.Time           `json:"starts_at"`
	EndsAt      *time.Time           `json:"ends_at"`
	WAGroupID   *int64               `json:"wa_group_id" validate:"omitempty,gt=0"`
}

// editableStatus статусы, которые можно выставить напрямую.
// RUNNING, PAUSED и FINISHED ставятся только через start/pause/finish.
func editableStatus(s models.AuctionStatus) bool {
	return s == models.StatusDraft || s == models.StatusScheduled || s == models.StatusCancelled
}

func (req *auctionRequest) apply(a *models.Auction) error {
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return apperrors.Validation("ends_at must not be before starts_at")
	}
	if req.Status != "" && req.Status != a.Status {
		if !editableStatus(req.Status) {
			return apperrors.Conflict("status %s can only be set through the lifecycle endpoints", req.Status)
		}
		a.Status = req.Status
	}
	a.Title = req.Title
	a.Description = req.Description
	a.StartsAt = req.StartsAt
	a.EndsAt = req.EndsAt
	a.WAGroupID = req.WAGroupID
	return nil
}

// ListAuctionsHandler GET /api/auctions?status=
func (h *Handler) ListAuctionsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	status := models.AuctionStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		h.writeError(w, r, apperrors.InvalidArgument("invalid status %q", status))
		return
	}

	auctions, err := h.Store.ListAuctions(r.Context(), status, params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auctions)
}

// CreateAuctionHandler POST /api/auctions
func (h *Handler) CreateAuctionHandler(w http.ResponseWriter, r *http.Request) {
	var req auctionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	a := &models.Auction{Status: models.StatusDraft}
	if err := req.apply(a); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.CreateAuction(r.Context(), a); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetAuctionHandler GET /api/auctions/{id}, вместе с лотами, правилами и шаблонами
func (h *Handler) GetAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	detail, err := h.Store.GetAuctionDetail(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateAuctionHandler PUT /api/auctions/{id}
func (h *Handler) UpdateAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req auctionRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	a, err := h.Store.GetAuction(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := req.apply(a); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.UpdateAuction(r.Context(), a); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteAuctionHandler DELETE /api/auctions/{id}
func (h *Handler) DeleteAuctionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteAuction(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}
