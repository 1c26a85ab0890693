// Package notify alerts shop staff about confirmed orders. Channels are tried
// in order until one delivers; if none does, the summary is only logged.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/clock"
	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

var ErrNotConfigured = errors.New("notification channel not configured")

type Channel interface {
	Name() string
	Deliver(ctx context.Context, order domain.Order, summary string) error
}

type Dispatcher struct {
	channels []Channel
	loc      *time.Location
	clock    clock.Clock
	logger   *slog.Logger
}

func NewDispatcher(loc *time.Location, clk clock.Clock, logger *slog.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		loc:      loc,
		clock:    clk,
		logger:   logger,
	}
}

// NotifyConfirmedOrder reports whether any channel delivered the alert.
func (d *Dispatcher) NotifyConfirmedOrder(ctx context.Context, order domain.Order) bool {
	summary := Summary(order, d.loc, d.clock.Now())

	for _, ch := range d.channels {
		err := ch.Deliver(ctx, order, summary)
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		if err != nil {
			d.logger.Warn("staff notification failed", "error", err, "channel", ch.Name(), "order_id", order.ID)
			continue
		}
		d.logger.Info("staff notified", "channel", ch.Name(), "order_id", order.ID)
		return true
	}

	d.logger.Warn("staff notification pending delivery", "order_id", order.ID, "summary", summary)
	return false
}

// Summary is the staff-facing description of a confirmed order.
func Summary(order domain.Order, loc *time.Location, now time.Time) string {
	customer := order.CustomerName
	if customer == "" {
		customer = order.CustomerID
	}

	pickupAt := "sin confirmar"
	if order.ConfirmedPickupAt != nil {
		pickupAt = domain.ClockLabel(*order.ConfirmedPickupAt, loc)
	}

	return fmt.Sprintf("📬 Pedido confirmado\nCliente: %s\nNúmero: %s\nPedido: %s\nRetiro: %s %s",
		customer,
		order.CustomerID,
		order.OrderText,
		order.PickupWindow.DayLabel(now, loc),
		pickupAt,
	)
}
