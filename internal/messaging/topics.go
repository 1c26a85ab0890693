package messaging

const (
	// TopicOrderConfirmed carries domain.OrderConfirmedEvent payloads keyed by order id.
	TopicOrderConfirmed = "order.confirmed"

	GroupStaffNotifier = "staff-notifier"
)
