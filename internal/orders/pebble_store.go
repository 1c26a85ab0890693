package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"

	"github.com/joao-fontenele/pickup-orderbot/internal/clock"
	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
	"github.com/joao-fontenele/pickup-orderbot/internal/keylock"
)

// Key layout:
//
//	order/<id>            JSON-encoded domain.Order
//	active/<customer id>  id of the customer's active order
const (
	orderPrefix  = "order/"
	activePrefix = "active/"
)

// PebbleStore keeps orders in an embedded Pebble database for single-node
// deployments. Mutations for one customer run one at a time under a key lock
// and are committed as a single synced batch.
type PebbleStore struct {
	db    *pebble.DB
	locks *keylock.Locker
	clock clock.Clock
}

func OpenPebbleStore(dir string, clk clock.Clock, opts *pebble.Options) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, domain.NewStorageError("open pebble", err)
	}
	return &PebbleStore{db: db, locks: keylock.New(), clock: clk}, nil
}

func (s *PebbleStore) Close() error { return s.db.Close() }

func orderKey(id string) []byte          { return []byte(orderPrefix + id) }
func activeKey(customerID string) []byte { return []byte(activePrefix + customerID) }

func (s *PebbleStore) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = closer.Close() }()
	return append([]byte(nil), value...), nil
}

func decodeOrder(key, value []byte) (*domain.Order, error) {
	var order domain.Order
	if err := json.Unmarshal(value, &order); err != nil {
		return nil, domain.NewStorageError("decode order", fmt.Errorf("key %s: %w", key, err))
	}
	return &order, nil
}

func (s *PebbleStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	key := orderKey(id)
	value, err := s.get(key)
	if err != nil {
		return nil, domain.NewStorageError("get order", err)
	}
	if value == nil {
		return nil, nil
	}
	return decodeOrder(key, value)
}

func (s *PebbleStore) FindActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error) {
	id, err := s.get(activeKey(customerID))
	if err != nil {
		return nil, domain.NewStorageError("find active order", err)
	}
	if id == nil {
		return nil, nil
	}

	order, err := s.GetByID(ctx, string(id))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewStorageError("find active order",
			fmt.Errorf("active index for customer %s points at missing order %s", customerID, id))
	}
	return order, nil
}

func (s *PebbleStore) CreateIfAbsent(ctx context.Context, customerID string, build func() domain.Order) (CreateResult, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	existing, err := s.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		return CreateResult{}, err
	}
	if existing != nil {
		return CreateResult{Order: *existing, Created: false}, nil
	}

	order := prepareNew(build(), customerID, uuid.New().String())
	if err := s.write(order, true); err != nil {
		return CreateResult{}, err
	}
	return CreateResult{Order: order, Created: true}, nil
}

func (s *PebbleStore) ConfirmPickup(ctx context.Context, customerID string, confirmedAt time.Time) (*domain.Order, error) {
	unlock := s.locks.Lock(customerID)
	defer unlock()

	order, err := s.FindActiveByCustomer(ctx, customerID)
	if err != nil || order == nil {
		return nil, err
	}

	at := confirmedAt
	order.ConfirmedPickupAt = &at
	order.Status = domain.OrderStatusConfirmed
	order.UpdatedAt = s.clock.Now()

	if err := s.write(*order, true); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PebbleStore) MarkSent(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, err
	}

	unlock := s.locks.Lock(order.CustomerID)
	defer unlock()

	// Re-read under the customer lock; a confirmation may have landed meanwhile.
	order, err = s.GetByID(ctx, orderID)
	if err != nil || order == nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusConfirmed {
		return order, nil
	}

	order.Status = domain.OrderStatusSent
	order.UpdatedAt = s.clock.Now()

	if err := s.write(*order, false); err != nil {
		return nil, err
	}
	return order, nil
}

// write stores the order and keeps the active index in step with its status.
func (s *PebbleStore) write(order domain.Order, active bool) error {
	value, err := json.Marshal(order)
	if err != nil {
		return domain.NewStorageError("encode order", err)
	}

	batch := s.db.NewBatch()
	defer func() { _ = batch.Close() }()

	if err := batch.Set(orderKey(order.ID), value, nil); err != nil {
		return domain.NewStorageError("write order", err)
	}
	if active {
		err = batch.Set(activeKey(order.CustomerID), []byte(order.ID), nil)
	} else {
		err = batch.Delete(activeKey(order.CustomerID), nil)
	}
	if err != nil {
		return domain.NewStorageError("write active index", err)
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return domain.NewStorageError("commit batch", err)
	}
	return nil
}

func (s *PebbleStore) List(_ context.Context) ([]domain.Order, error) {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(orderPrefix),
		UpperBound: prefixEnd(orderPrefix),
	})
	if err != nil {
		return nil, domain.NewStorageError("list orders", err)
	}
	defer func() { _ = it.Close() }()

	orders := []domain.Order{}
	for it.First(); it.Valid(); it.Next() {
		order, err := decodeOrder(it.Key(), it.Value())
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := it.Error(); err != nil {
		return nil, domain.NewStorageError("list orders", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func prefixEnd(prefix string) []byte {
	end := []byte(prefix)
	end[len(end)-1]++
	return end
}
