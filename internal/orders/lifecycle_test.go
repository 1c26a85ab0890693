package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
	"github.com/joao-fontenele/pickup-orderbot/internal/pickup"
)

var shopZone = time.FixedZone("ART", -3*60*60)

func shopTime(day, hour, minute int) time.Time {
	return time.Date(2026, time.March, day, hour, minute, 0, 0, shopZone)
}

func testCalculator() *pickup.Calculator {
	return pickup.NewCalculator(pickup.BusinessHours{
		OpenHour:      8,
		CloseHour:     18,
		PrepMinutes:   120,
		WindowMinutes: 120,
		Location:      shopZone,
	})
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(newTestStore(t), testCalculator(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func createAt(t *testing.T, m *Manager, customerID string, receivedAt time.Time) CreateResult {
	t.Helper()
	result, err := m.Create(context.Background(), NewOrderInput{
		CustomerID:   customerID,
		CustomerName: "Ana Perez",
		OrderText:    "2 kg de asado",
		ReceivedAt:   receivedAt,
	})
	require.NoError(t, err)
	return result
}

func TestManager_Create(t *testing.T) {
	t.Run("window computed from receipt time", func(t *testing.T) {
		m := newTestManager(t)

		result := createAt(t, m, "5491100000001", shopTime(10, 9, 0))

		assert.True(t, result.Created)
		assert.Equal(t, domain.OrderStatusPending, result.Order.Status)
		assert.True(t, result.Order.PickupWindow.Start.Equal(shopTime(10, 11, 0)))
		assert.True(t, result.Order.PickupWindow.End.Equal(shopTime(10, 13, 0)))
		assert.True(t, result.Order.RequestedAt.Equal(shopTime(10, 9, 0)))
		assert.Equal(t, "Ana Perez", result.Order.CustomerName)
	})

	t.Run("late order rolls to next opening", func(t *testing.T) {
		m := newTestManager(t)

		result := createAt(t, m, "5491100000001", shopTime(10, 17, 30))

		assert.True(t, result.Order.PickupWindow.Start.Equal(shopTime(11, 8, 0)))
		assert.True(t, result.Order.PickupWindow.End.Equal(shopTime(11, 10, 0)))
	})

	t.Run("existing active order is returned", func(t *testing.T) {
		m := newTestManager(t)

		first := createAt(t, m, "5491100000001", shopTime(10, 9, 0))
		second := createAt(t, m, "5491100000001", shopTime(10, 9, 5))

		assert.False(t, second.Created)
		assert.Equal(t, first.Order.ID, second.Order.ID)
		assert.True(t, second.Order.PickupWindow.Start.Equal(first.Order.PickupWindow.Start))
	})
}

func TestManager_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("no active order", func(t *testing.T) {
		m := newTestManager(t)

		_, err := m.Confirm(ctx, "5491100000001", 12, 30)
		assert.ErrorIs(t, err, domain.ErrNoActiveOrder)
	})

	t.Run("time inside window", func(t *testing.T) {
		m := newTestManager(t)
		created := createAt(t, m, "5491100000001", shopTime(10, 9, 0))

		result, err := m.Confirm(ctx, "5491100000001", 12, 30)
		require.NoError(t, err)

		assert.True(t, result.Changed)
		assert.Equal(t, created.Order.ID, result.Order.ID)
		assert.Equal(t, domain.OrderStatusConfirmed, result.Order.Status)
		require.NotNil(t, result.Order.ConfirmedPickupAt)
		assert.True(t, result.Order.ConfirmedPickupAt.Equal(shopTime(10, 12, 30)))
	})

	t.Run("same time twice is not a change", func(t *testing.T) {
		m := newTestManager(t)
		createAt(t, m, "5491100000001", shopTime(10, 9, 0))

		_, err := m.Confirm(ctx, "5491100000001", 12, 30)
		require.NoError(t, err)

		again, err := m.Confirm(ctx, "5491100000001", 12, 30)
		require.NoError(t, err)
		assert.False(t, again.Changed)

		moved, err := m.Confirm(ctx, "5491100000001", 11, 15)
		require.NoError(t, err)
		assert.True(t, moved.Changed)
	})

	t.Run("rejected time leaves confirmed order untouched", func(t *testing.T) {
		m := newTestManager(t)
		createAt(t, m, "5491100000001", shopTime(10, 9, 0))

		_, err := m.Confirm(ctx, "5491100000001", 12, 30)
		require.NoError(t, err)

		_, err = m.Confirm(ctx, "5491100000001", 10, 50)
		assert.ErrorIs(t, err, domain.ErrTimeOutOfRange)

		active, err := m.Active(ctx, "5491100000001")
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, domain.OrderStatusConfirmed, active.Status)
		assert.True(t, active.ConfirmedPickupAt.Equal(shopTime(10, 12, 30)))
	})

	t.Run("grace boundaries", func(t *testing.T) {
		tests := []struct {
			hour, minute int
			wantErr      bool
		}{
			{hour: 10, minute: 59},
			{hour: 10, minute: 58, wantErr: true},
			{hour: 13, minute: 1},
			{hour: 13, minute: 2, wantErr: true},
		}

		for _, tt := range tests {
			m := newTestManager(t)
			createAt(t, m, "5491100000001", shopTime(10, 9, 0))

			_, err := m.Confirm(ctx, "5491100000001", tt.hour, tt.minute)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrTimeOutOfRange, "%02d:%02d", tt.hour, tt.minute)
			} else {
				assert.NoError(t, err, "%02d:%02d", tt.hour, tt.minute)
			}
		}
	})

	t.Run("invalid clock value", func(t *testing.T) {
		m := newTestManager(t)
		createAt(t, m, "5491100000001", shopTime(10, 9, 0))

		_, err := m.Confirm(ctx, "5491100000001", 25, 70)
		assert.ErrorIs(t, err, domain.ErrTimeOutOfRange)
	})

	t.Run("rolled over window confirms on the next day", func(t *testing.T) {
		m := newTestManager(t)
		createAt(t, m, "5491100000001", shopTime(10, 17, 30))

		result, err := m.Confirm(ctx, "5491100000001", 9, 0)
		require.NoError(t, err)
		assert.True(t, result.Order.ConfirmedPickupAt.Equal(shopTime(11, 9, 0)))

		_, err = m.Confirm(ctx, "5491100000001", 17, 45)
		assert.ErrorIs(t, err, domain.ErrTimeOutOfRange)
	})
}

func TestManager_MarkSent(t *testing.T) {
	ctx := context.Background()

	t.Run("missing order", func(t *testing.T) {
		m := newTestManager(t)

		_, err := m.MarkSent(ctx, "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("pending order cannot be sent", func(t *testing.T) {
		m := newTestManager(t)
		created := createAt(t, m, "5491100000001", shopTime(10, 9, 0))

		order, err := m.MarkSent(ctx, created.Order.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
	})

	t.Run("confirmed order is sent once", func(t *testing.T) {
		m := newTestManager(t)
		created := createAt(t, m, "5491100000001", shopTime(10, 9, 0))
		_, err := m.Confirm(ctx, "5491100000001", 12, 0)
		require.NoError(t, err)

		sent, err := m.MarkSent(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusSent, sent.Status)

		again, err := m.MarkSent(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusSent, again.Status)

		active, err := m.Active(ctx, "5491100000001")
		require.NoError(t, err)
		assert.Nil(t, active)

		_, err = m.Confirm(ctx, "5491100000001", 12, 0)
		assert.ErrorIs(t, err, domain.ErrNoActiveOrder)
	})
}

type failingStore struct {
	Store
	err error
}

func (s failingStore) FindActiveByCustomer(context.Context, string) (*domain.Order, error) {
	return nil, s.err
}

func (s failingStore) CreateIfAbsent(context.Context, string, func() domain.Order) (CreateResult, error) {
	return CreateResult{}, s.err
}

func TestManager_StorageFailure(t *testing.T) {
	ctx := context.Background()
	storageErr := domain.NewStorageError("read", errors.New("io error"))
	m := NewManager(failingStore{err: storageErr}, pickup.NewCalculator(pickup.BusinessHours{
		OpenHour: 8, CloseHour: 18, PrepMinutes: 120, WindowMinutes: 120,
	}), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := m.Create(ctx, NewOrderInput{CustomerID: "5491100000001", ReceivedAt: testNow})
	assert.True(t, domain.IsStorageError(err))

	_, err = m.Confirm(ctx, "5491100000001", 12, 0)
	assert.True(t, domain.IsStorageError(err))
	assert.False(t, errors.Is(err, domain.ErrNoActiveOrder))
}
