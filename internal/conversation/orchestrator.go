package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/pickup-orderbot/internal/clock"
	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
	"github.com/joao-fontenele/pickup-orderbot/internal/intent"
	"github.com/joao-fontenele/pickup-orderbot/internal/keylock"
	"github.com/joao-fontenele/pickup-orderbot/internal/orders"
)

var tracer = otel.Tracer("conversation")

type Lifecycle interface {
	Active(ctx context.Context, customerID string) (*domain.Order, error)
	Create(ctx context.Context, in orders.NewOrderInput) (orders.CreateResult, error)
	Confirm(ctx context.Context, customerID string, hour, minute int) (orders.ConfirmResult, error)
}

type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

type Notifier interface {
	NotifyConfirmedOrder(ctx context.Context, order domain.Order) bool
}

// Orchestrator turns one inbound message into replies. Messages from the same
// sender are handled one at a time in arrival order.
type Orchestrator struct {
	lifecycle Lifecycle
	sender    Sender
	notifier  Notifier
	templates Templates
	clock     clock.Clock
	locks     *keylock.Locker
	logger    *slog.Logger
	metrics   *instruments
}

func NewOrchestrator(lifecycle Lifecycle, sender Sender, notifier Notifier, templates Templates, clk clock.Clock, logger *slog.Logger) (*Orchestrator, error) {
	m, err := newInstruments(otel.Meter("conversation"))
	if err != nil {
		return nil, fmt.Errorf("create conversation instruments: %w", err)
	}

	return &Orchestrator{
		lifecycle: lifecycle,
		sender:    sender,
		notifier:  notifier,
		templates: templates,
		clock:     clk,
		locks:     keylock.New(),
		logger:    logger,
		metrics:   m,
	}, nil
}

type outcome struct {
	intent    domain.Intent
	replies   []string
	confirmed *domain.Order
}

// Handle returns an error only when a reply could not be delivered. Order
// state already committed is kept in that case.
func (o *Orchestrator) Handle(ctx context.Context, msg domain.InboundMessage) error {
	if msg.IsGroup {
		return nil
	}

	unlock := o.locks.Lock(msg.SenderID)
	defer unlock()

	ctx, span := tracer.Start(ctx, "conversation.handle",
		trace.WithAttributes(attribute.String("chat.sender_id", msg.SenderID)),
	)
	defer span.End()

	out := o.respond(ctx, msg)
	span.SetAttributes(attribute.String("chat.intent", string(out.intent)))
	o.metrics.messages.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", string(out.intent))))

	var sendErr error
	for _, reply := range out.replies {
		if err := o.sender.SendText(ctx, msg.SenderID, reply); err != nil {
			o.metrics.replyFailures.Add(ctx, 1)
			sendErr = fmt.Errorf("send reply to %s: %w", msg.SenderID, err)
			break
		}
	}

	if out.confirmed != nil {
		if !o.notifier.NotifyConfirmedOrder(ctx, *out.confirmed) {
			o.metrics.notificationFailures.Add(ctx, 1)
		}
	}

	if sendErr != nil {
		span.RecordError(sendErr)
		span.SetStatus(codes.Error, sendErr.Error())
	}
	return sendErr
}

func (o *Orchestrator) respond(ctx context.Context, msg domain.InboundMessage) outcome {
	text := strings.TrimSpace(msg.Body)
	kind := intent.Classify(text)
	out := outcome{intent: kind}

	active, err := o.lifecycle.Active(ctx, msg.SenderID)
	if err != nil {
		o.logger.Error("failed to load active order", "error", err, "customer_id", msg.SenderID)
		out.replies = []string{o.templates.Apology()}
		return out
	}

	switch kind {
	case domain.IntentGreeting:
		if active != nil {
			out.replies = []string{o.templates.PendingReminder(*active)}
		} else {
			out.replies = []string{o.templates.Greeting(firstName(msg.DisplayName))}
		}

	case domain.IntentTimeConfirmation:
		out.replies, out.confirmed = o.confirm(ctx, msg.SenderID, text, active)

	case domain.IntentOrderRequest:
		out.replies = o.create(ctx, msg, text, active)

	default:
		if active != nil {
			out.replies = []string{o.templates.PendingReminder(*active)}
		} else {
			out.replies = []string{o.templates.Help()}
		}
	}
	return out
}

func (o *Orchestrator) confirm(ctx context.Context, customerID, text string, active *domain.Order) ([]string, *domain.Order) {
	if active == nil {
		return []string{o.templates.NoOrderYet()}, nil
	}

	hour, minute, _ := intent.ExtractTime(text)
	result, err := o.lifecycle.Confirm(ctx, customerID, hour, minute)
	switch {
	case errors.Is(err, domain.ErrNoActiveOrder):
		return []string{o.templates.NoOrderYet()}, nil
	case errors.Is(err, domain.ErrTimeOutOfRange):
		return []string{o.templates.TimeOutOfRange(*active)}, nil
	case err != nil:
		o.logger.Error("failed to confirm pickup", "error", err, "customer_id", customerID)
		return []string{o.templates.Apology()}, nil
	}

	o.metrics.confirmations.Add(ctx, 1)
	replies := []string{o.templates.PickupConfirmed(result.Order)}
	if !result.Changed {
		return replies, nil
	}
	confirmed := result.Order
	return replies, &confirmed
}

func (o *Orchestrator) create(ctx context.Context, msg domain.InboundMessage, text string, active *domain.Order) []string {
	if active != nil {
		return []string{o.templates.PendingReminder(*active)}
	}

	now := o.clock.Now()
	result, err := o.lifecycle.Create(ctx, orders.NewOrderInput{
		CustomerID:   msg.SenderID,
		CustomerName: firstName(msg.DisplayName),
		OrderText:    text,
		ReceivedAt:   now,
	})
	if err != nil {
		o.logger.Error("failed to create order", "error", err, "customer_id", msg.SenderID)
		return []string{o.templates.Apology()}
	}

	if !result.Created {
		return []string{o.templates.PendingReminder(result.Order)}
	}

	o.metrics.ordersCreated.Add(ctx, 1)
	return []string{
		o.templates.OrderCreated(result.Order, now),
		o.templates.AskForTime(),
	}
}

func firstName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
