package conversation

import "go.opentelemetry.io/otel/metric"

type instruments struct {
	messages             metric.Int64Counter
	ordersCreated        metric.Int64Counter
	confirmations        metric.Int64Counter
	replyFailures        metric.Int64Counter
	notificationFailures metric.Int64Counter
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	messages, err := meter.Int64Counter("orderbot.messages",
		metric.WithDescription("Inbound chat messages handled, by intent"))
	if err != nil {
		return nil, err
	}
	created, err := meter.Int64Counter("orderbot.orders.created",
		metric.WithDescription("Orders created from chat requests"))
	if err != nil {
		return nil, err
	}
	confirmations, err := meter.Int64Counter("orderbot.pickups.confirmed",
		metric.WithDescription("Pickup times confirmed by customers"))
	if err != nil {
		return nil, err
	}
	replyFailures, err := meter.Int64Counter("orderbot.replies.failed",
		metric.WithDescription("Replies the chat channel did not accept"))
	if err != nil {
		return nil, err
	}
	notificationFailures, err := meter.Int64Counter("orderbot.notifications.undelivered",
		metric.WithDescription("Confirmed orders no staff channel could be notified about"))
	if err != nil {
		return nil, err
	}

	return &instruments{
		messages:             messages,
		ordersCreated:        created,
		confirmations:        confirmations,
		replyFailures:        replyFailures,
		notificationFailures: notificationFailures,
	}, nil
}
