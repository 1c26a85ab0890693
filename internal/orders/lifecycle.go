package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
	"github.com/joao-fontenele/pickup-orderbot/internal/pickup"
)

// Manager drives orders through pending -> confirmed -> sent. It is the only
// component that mutates the store.
type Manager struct {
	store      Store
	calculator *pickup.Calculator
	logger     *slog.Logger
}

func NewManager(store Store, calculator *pickup.Calculator, logger *slog.Logger) *Manager {
	return &Manager{
		store:      store,
		calculator: calculator,
		logger:     logger,
	}
}

// Location is the shop timezone used for windows and labels.
func (m *Manager) Location() *time.Location {
	return m.calculator.Location()
}

type NewOrderInput struct {
	CustomerID   string
	CustomerName string
	OrderText    string
	ReceivedAt   time.Time
}

// Create registers a pending order unless the customer already has an active
// one, in which case that order is returned with Created=false.
func (m *Manager) Create(ctx context.Context, in NewOrderInput) (CreateResult, error) {
	result, err := m.store.CreateIfAbsent(ctx, in.CustomerID, func() domain.Order {
		receivedAt := in.ReceivedAt.UTC()
		window := m.calculator.Compute(receivedAt)
		return domain.Order{
			CustomerName: in.CustomerName,
			OrderText:    in.OrderText,
			RequestedAt:  receivedAt,
			PickupWindow: domain.PickupWindow{
				Start: window.Start.UTC(),
				End:   window.End.UTC(),
			},
			Status:    domain.OrderStatusPending,
			CreatedAt: receivedAt,
			UpdatedAt: receivedAt,
		}
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("create order: %w", err)
	}

	if result.Created {
		m.logger.Info("order created",
			"order_id", result.Order.ID,
			"customer_id", result.Order.CustomerID,
			"pickup_start", result.Order.PickupWindow.Start,
			"pickup_end", result.Order.PickupWindow.End,
		)
	}
	return result, nil
}

type ConfirmResult struct {
	Order domain.Order
	// Changed is false when the same pickup time was already confirmed.
	Changed bool
}

// Confirm fixes the pickup time of the customer's active order to hour:minute
// on the window's start date. Times outside the window plus grace are rejected
// with domain.ErrTimeOutOfRange and leave the order untouched.
func (m *Manager) Confirm(ctx context.Context, customerID string, hour, minute int) (ConfirmResult, error) {
	active, err := m.store.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("confirm pickup: %w", err)
	}
	if active == nil {
		return ConfirmResult{}, domain.ErrNoActiveOrder
	}

	candidate, ok := m.calculator.ConfirmationTime(active.PickupWindow, hour, minute)
	if !ok || !pickup.IsWithinWindow(candidate, active.PickupWindow) {
		m.logger.Info("pickup time rejected",
			"order_id", active.ID,
			"customer_id", customerID,
			"requested", fmt.Sprintf("%02d:%02d", hour, minute),
		)
		return ConfirmResult{}, domain.ErrTimeOutOfRange
	}
	candidate = candidate.UTC()

	updated, err := m.store.ConfirmPickup(ctx, customerID, candidate)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("confirm pickup: %w", err)
	}
	if updated == nil {
		return ConfirmResult{}, domain.ErrNoActiveOrder
	}

	changed := active.ConfirmedPickupAt == nil || !active.ConfirmedPickupAt.Equal(candidate)
	m.logger.Info("pickup confirmed",
		"order_id", updated.ID,
		"customer_id", customerID,
		"confirmed_pickup_at", candidate,
		"changed", changed,
	)
	return ConfirmResult{Order: *updated, Changed: changed}, nil
}

// MarkSent records fulfillment of a confirmed order. Calling it again on a
// sent order is a no-op.
func (m *Manager) MarkSent(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := m.store.MarkSent(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("mark order sent: %w", err)
	}
	if order == nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if order.Status != domain.OrderStatusSent {
		return *order, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, domain.OrderStatusSent)
	}

	m.logger.Info("order sent", "order_id", order.ID, "customer_id", order.CustomerID)
	return *order, nil
}

func (m *Manager) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.store.GetByID(ctx, orderID)
}

func (m *Manager) Active(ctx context.Context, customerID string) (*domain.Order, error) {
	return m.store.FindActiveByCustomer(ctx, customerID)
}

func (m *Manager) List(ctx context.Context) ([]domain.Order, error) {
	return m.store.List(ctx)
}
