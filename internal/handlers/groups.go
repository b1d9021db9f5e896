package handlers

import (
	"net/http"

	"auctions/models"
)

type groupRequest struct {
	WAChatID string `json:"wa_chat_id" validate:"required,max=128"`
	Name     string `json:"name" validate:"max=200"`
}

// ListMessagingGroupsHandler GET /api/messaging-groups
func (h *Handler) ListMessagingGroupsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	groups, err := h.Store.ListMessagingGroups(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *Handler) CreateMessagingGroupHandler(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g := &models.MessagingGroup{WAChatID: req.WAChatID, Name: req.Name}
	if err := h.Store.CreateMessagingGroup(r.Context(), g); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *Handler) GetMessagingGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := h.Store.GetMessagingGroup(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *Handler) UpdateMessagingGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req groupRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g := &models.MessagingGroup{ID: id, WAChatID: req.WAChatID, Name: req.Name}
	if err := h.Store.UpdateMessagingGroup(r.Context(), g); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteMessagingGroupHandler у аукционов группы ссылка обнуляется
func (h *Handler) DeleteMessagingGroupHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteMessagingGroup(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}
