package notify

import (
	"context"
	"errors"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

type TextSender interface {
	SendText(ctx context.Context, to, text string) error
}

// ChatChannel sends the summary as a chat message to the staff number.
type ChatChannel struct {
	sender TextSender
	target string
}

func NewChatChannel(sender TextSender, target string) *ChatChannel {
	return &ChatChannel{sender: sender, target: target}
}

func (c *ChatChannel) Name() string { return "chat" }

func (c *ChatChannel) Deliver(ctx context.Context, _ domain.Order, summary string) error {
	if c.target == "" || c.sender == nil {
		return ErrNotConfigured
	}
	return c.sender.SendText(ctx, c.target, summary)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// EventChannel publishes an OrderConfirmedEvent; the notification worker turns
// it into a staff email.
type EventChannel struct {
	publisher Publisher
}

func NewEventChannel(publisher Publisher) *EventChannel {
	return &EventChannel{publisher: publisher}
}

func (c *EventChannel) Name() string { return "event" }

func (c *EventChannel) Deliver(ctx context.Context, order domain.Order, summary string) error {
	if c.publisher == nil {
		return ErrNotConfigured
	}
	if order.ConfirmedPickupAt == nil {
		return errors.New("order has no confirmed pickup time")
	}

	event := domain.OrderConfirmedEvent{
		OrderID:           order.ID,
		CustomerID:        order.CustomerID,
		CustomerName:      order.CustomerName,
		OrderText:         order.OrderText,
		ConfirmedPickupAt: *order.ConfirmedPickupAt,
		Summary:           summary,
		Timestamp:         order.UpdatedAt,
	}
	return c.publisher.Publish(ctx, order.ID, event)
}
