package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

const maxWebhookBody = 64 << 10

// Handler is the public entry point: chat webhooks and the staff order API are
// both forwarded to the bot service.
type Handler struct {
	botProxy *ServiceProxy
	logger   *slog.Logger
}

func NewHandler(botProxy *ServiceProxy, logger *slog.Logger) *Handler {
	return &Handler{
		botProxy: botProxy,
		logger:   logger,
	}
}

func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, r.URL.Path, r.Body)
}

// HandleWebhook drops group chat messages before they reach the bot.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var msg domain.InboundMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg.IsGroup {
		h.logger.Info("group message dropped", "sender_id", msg.SenderID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"status":"ignored"}`+"\n")
		return
	}

	h.proxyRequest(w, r, "/webhook/messages", bytes.NewReader(body))
}

func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, path string, body io.Reader) {
	resp, err := h.botProxy.Forward(r.Context(), r.Method, path, r.Header.Get("Content-Type"), body)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "path", path)
		h.writeError(w, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.Info("request proxied", "method", r.Method, "path", path, "status", resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
