package orders

import (
	"context"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
)

// Store persists orders. Mutating operations are atomic per customer: two
// concurrent calls for the same customer never both create, nor both confirm
// from the same pre-confirmation state.
type Store interface {
	FindActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error)
	CreateIfAbsent(ctx context.Context, customerID string, build func() domain.Order) (CreateResult, error)
	ConfirmPickup(ctx context.Context, customerID string, confirmedAt time.Time) (*domain.Order, error)
	MarkSent(ctx context.Context, orderID string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}

type CreateResult struct {
	Order   domain.Order
	Created bool
}

// prepareNew fills the fields a store owns on a freshly built order.
func prepareNew(order domain.Order, customerID, id string) domain.Order {
	order.ID = id
	order.CustomerID = customerID
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	return order
}
