package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes маршруты /api. protect оборачивает админские маршруты (проверка токена).
func (h *Handler) Routes(protect func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/ping", h.PingHandler)
	r.Get("/keep-alive", h.KeepAliveHandler)
	r.Get("/ready", h.ReadyHandler)

	r.Group(func(r chi.Router) {
		if protect != nil {
			r.Use(protect)
		}

		r.Get("/messaging/health", h.MessagingHealthHandler)

		// аукционы
		r.Get("/auctions", h.ListAuctionsHandler)
		r.Post("/auctions", h.CreateAuctionHandler)
		r.Get("/auctions/{id}", h.GetAuctionHandler)
		r.Put("/auctions/{id}", h.UpdateAuctionHandler)
		r.Delete("/auctions/{id}", h.DeleteAuctionHandler)
		r.Post("/auctions/{id}/start", h.StartAuctionHandler)
		r.Post("/auctions/{id}/pause", h.PauseAuctionHandler)
		r.Post("/auctions/{id}/finish", h.FinishAuctionHandler)

		// лоты
		r.Get("/items", h.ListItemsHandler)
		r.Post("/items", h.CreateItemHandler)
		r.Post("/items/bulk", h.BulkCreateItemsHandler)
		r.Get("/items/{id}", h.GetItemHandler)
		r.Put("/items/{id}", h.UpdateItemHandler)
		r.Delete("/items/{id}", h.DeleteItemHandler)

		r.Get("/participants", h.ListParticipantsHandler)
		r.Post("/participants", h.CreateParticipantHandler)
		r.Get("/participants/{id}", h.GetParticipantHandler)
		r.Put("/participants/{id}", h.UpdateParticipantHandler)
		r.Delete("/participants/{id}", h.DeleteParticipantHandler)

		// ставки только чтение и удаление
		r.Get("/bids", h.ListBidsHandler)
		r.Get("/bids/{id}", h.GetBidHandler)
		r.Delete("/bids/{id}", h.DeleteBidHandler)

		r.Get("/rules", h.ListRulesHandler)
		r.Post("/rules", h.CreateRuleHandler)
		r.Get("/rules/{id}", h.GetRuleHandler)
		r.Put("/rules/{id}", h.UpdateRuleHandler)
		r.Delete("/rules/{id}", h.DeleteRuleHandler)

		r.Get("/message-templates", h.ListMessageTemplatesHandler)
		r.Post("/message-templates", h.CreateMessageTemplateHandler)
		r.Get("/message-templates/{id}", h.GetMessageTemplateHandler)
		r.Put("/message-templates/{id}", h.UpdateMessageTemplateHandler)
		r.Delete("/message-templates/{id}", h.DeleteMessageTemplateHandler)

		r.Get("/messaging-groups", h.ListMessagingGroupsHandler)
		r.Post("/messaging-groups", h.CreateMessagingGroupHandler)
		r.Get("/messaging-groups/{id}", h.GetMessagingGroupHandler)
		r.Put("/messaging-groups/{id}", h.UpdateMessagingGroupHandler)
		r.Delete("/messaging-groups/{id}", h.DeleteMessagingGroupHandler)
	})

	return r
}
