package handlers

import (
	"net/http"

	"auctions/models"
)

type ruleRequest struct {
	Auction int64  `json:"auction" validate:"required,gt=0"`
	Key     string `json:"key" validate:"required,max=64"`
	Value   string `json:"value"`
}

type templateRequest struct {
	Auction  int64  `json:"auction" validate:"required,gt=0"`
	Key      string `json:"key" validate:"required,max=64"`
	Template string `json:"template" validate:"required"`
}

// Rules

// ListRulesHandler GET /api/rules?auction_id=
func (h *Handler) ListRulesHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, err := parseQueryID(r, "auction_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rules, err := h.Store.ListRules(r.Context(), auctionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) CreateRuleHandler(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rule := &models.Rule{AuctionID: req.Auction, Key: req.Key, Value: req.Value}
	if err := h.Store.CreateRule(r.Context(), rule); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (h *Handler) GetRuleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rule, err := h.Store.GetRule(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) UpdateRuleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req ruleRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rule := &models.Rule{ID: id, AuctionID: req.Auction, Key: req.Key, Value: req.Value}
	if err := h.Store.UpdateRule(r.Context(), rule); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) DeleteRuleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteRule(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}

// Message templates

// ListMessageTemplatesHandler GET /api/message-templates?auction_id=
func (h *Handler) ListMessageTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	auctionID, err := parseQueryID(r, "auction_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	templates, err := h.Store.ListMessageTemplates(r.Context(), auctionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) CreateMessageTemplateHandler(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m := &models.MessageTemplate{AuctionID: req.Auction, Key: req.Key, Template: req.Template}
	if err := h.Store.CreateMessageTemplate(r.Context(), m); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) GetMessageTemplateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.Store.GetMessageTemplate(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) UpdateMessageTemplateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req templateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m := &models.MessageTemplate{ID: id, AuctionID: req.Auction, Key: req.Key, Template: req.Template}
	if err := h.Store.UpdateMessageTemplate(r.Context(), m); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMessageTemplateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.DeleteMessageTemplate(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeNoContent(w)
}
