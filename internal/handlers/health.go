package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// KeepAliveHandler пустой 200, чтобы хостинг не усыплял инстанс
func (h *Handler) KeepAliveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadyHandler проверяет соединение с базой
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// MessagingHealthHandler GET /api/messaging/health, статус воркера как есть
func (h *Handler) MessagingHealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := h.Messaging.Health(r.Context())
	status := http.StatusOK
	if !resp.OK() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}
