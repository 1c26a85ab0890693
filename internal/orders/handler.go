package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

// Handler exposes order history and the fulfillment action to shop staff.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

type pickupLabels struct {
	Day       string `json:"day"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Confirmed string `json:"confirmed,omitempty"`
}

type orderResponse struct {
	domain.Order
	Labels pickupLabels `json:"pickup_labels"`
}

func (h *Handler) toResponse(order domain.Order) orderResponse {
	loc := h.manager.Location()
	labels := pickupLabels{
		Day:   order.PickupWindow.DayLabel(time.Now(), loc),
		Start: order.PickupWindow.StartLabel(loc),
		End:   order.PickupWindow.EndLabel(loc),
	}
	if order.ConfirmedPickupAt != nil {
		labels.Confirmed = domain.ClockLabel(*order.ConfirmedPickupAt, loc)
	}
	return orderResponse{Order: order, Labels: labels}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.manager.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, h.toResponse(*order))
}

func (h *Handler) HandleMarkSent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.manager.MarkSent(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		h.writeError(w, http.StatusConflict, "order is not confirmed")
		return
	case err != nil:
		h.logger.Error("failed to mark order sent", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, h.toResponse(order))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.manager.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, h.toResponse(order))
	}

	h.logger.Info("orders listed", "count", len(out))
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
