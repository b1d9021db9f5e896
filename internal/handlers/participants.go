package handlers

import (
	"net/http"
	"strings"

	"auctions/internal/apperrors"
	"auctions/models"
)

type participantRequest struct {
	DisplayName string  `json:"display_name" validate:"max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	WAUserID    *string `json:"wa_user_id" validate:"omitempty,max=64"`
}

// blankToNil пустые строки храним как NULL, иначе частичные уникальные индексы ломаются
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (req *participantRequest) apply(p *models.Participant) error {
	p.DisplayName = strings.TrimSpace(req.DisplayName)
	p.Phone = blankToNil(req.Phone)
	p.WAUserID = blankToNil(req.WAUserID)
	if p.Phone == nil && p.WAUserID == nil {
		return apperrors.Validation("phone or wa_user_id is required")
	}
	return nil
}

// ListParticipantsHandler GET /api/participants
func (h *Handler) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	participants, err := h.Store.ListParticipants(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

// CreateParticipantHandler POST /api/participants
func (h *Handler) CreateParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p := &models.Participant{}
	if err := req.apply(p); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.CreateParticipant(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetParticipantHandler GET /api/participants/{id}
func (h *Handler) GetParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.Store.GetParticipant(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateParticipantHandler PUT /api/participants/{id}
func (h *Handler) UpdateParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req participantRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p := &models.Participant{ID: id}
	if err := req.apply(p); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.UpdateParticipant(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteParticipantHandler DELETE /api/participants/{id}, ставки участника удаляются каскадом
func (h *Handler) DeleteParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteParticipant(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}
