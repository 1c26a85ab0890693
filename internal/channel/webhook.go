package channel

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg domain.InboundMessage) error
}

// WebhookHandler receives inbound chat messages pushed by the channel.
type WebhookHandler struct {
	handler MessageHandler
	logger  *slog.Logger
}

func NewWebhookHandler(handler MessageHandler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		handler: handler,
		logger:  logger,
	}
}

type webhookResponse struct {
	Status string `json:"status"`
}

func (h *WebhookHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var msg domain.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg.SenderID == "" {
		h.writeError(w, http.StatusBadRequest, "missing sender id")
		return
	}

	if msg.IsGroup {
		h.writeJSON(w, http.StatusAccepted, webhookResponse{Status: "ignored"})
		return
	}

	if err := h.handler.Handle(r.Context(), msg); err != nil {
		h.logger.Error("failed to deliver reply", "error", err, "sender_id", msg.SenderID)
		h.writeError(w, http.StatusBadGateway, "reply delivery failed")
		return
	}

	h.writeJSON(w, http.StatusOK, webhookResponse{Status: "processed"})
}

func (h *WebhookHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *WebhookHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
