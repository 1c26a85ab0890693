package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

// NotificationHandler turns confirmed-order events into staff emails sent
// through the email service.
type NotificationHandler struct {
	emailServiceURL string
	staffEmail      string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL, staffEmail string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		staffEmail:      staffEmail,
		httpClient:      client,
		logger:          logger,
	}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderConfirmedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// A malformed event will never decode; drop it instead of blocking the partition.
		h.logger.Error("discarding undecodable order confirmed event", "error", err)
		return nil
	}

	if event.OrderID == "" {
		h.logger.Error("discarding order confirmed event without order id")
		return nil
	}

	h.logger.Info("processing order confirmed event", "order_id", event.OrderID, "customer_id", event.CustomerID)

	if err := h.sendStaffEmail(ctx, event); err != nil {
		h.logger.Error("failed to send staff email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send staff email: %w", err)
	}

	h.logger.Info("staff email sent", "order_id", event.OrderID)
	return nil
}

func (h *NotificationHandler) sendStaffEmail(ctx context.Context, event domain.OrderConfirmedEvent) error {
	if h.staffEmail == "" {
		return errors.New("staff email address not configured")
	}

	customer := event.CustomerName
	if customer == "" {
		customer = event.CustomerID
	}

	body := emailRequest{
		To:      h.staffEmail,
		Subject: fmt.Sprintf("Nuevo pedido confirmado: %s (%s)", customer, event.OrderID),
		Body:    event.Summary,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
