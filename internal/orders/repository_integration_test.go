//go:build integration

package orders

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/joao-fontenele/pickup-orderbot/internal/domain"
	"github.com/joao-fontenele/pickup-orderbot/internal/testutil"
)

func TestOrderRepository_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := testutil.SetupPostgres(ctx, t)
	defer pg.Cleanup()

	repo := NewOrderRepository(pg.OpenDB(t))
	m := NewManager(repo, testCalculator(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	created, err := m.Create(ctx, NewOrderInput{
		CustomerID:   "5491100000001",
		CustomerName: "Ana",
		OrderText:    "2 kg de asado",
		ReceivedAt:   shopTime(10, 9, 0),
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if !created.Created {
		t.Fatal("expected order to be created")
	}

	fetched, err := repo.GetByID(ctx, created.Order.ID)
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if fetched == nil {
		t.Fatal("order not found in database")
	}
	if !fetched.PickupWindow.Start.Equal(shopTime(10, 11, 0)) {
		t.Fatalf("expected pickup start 11:00, got %s", fetched.PickupWindow.Start.In(shopZone))
	}

	again, err := m.Create(ctx, NewOrderInput{CustomerID: "5491100000001", OrderText: "1 kg de vacio", ReceivedAt: shopTime(10, 9, 5)})
	if err != nil {
		t.Fatalf("failed on duplicate create: %v", err)
	}
	if again.Created || again.Order.ID != created.Order.ID {
		t.Fatalf("expected existing order %s, got %+v", created.Order.ID, again)
	}

	if _, err := m.Confirm(ctx, "5491100000001", 10, 50); err == nil {
		t.Fatal("expected 10:50 to be rejected")
	}

	confirmed, err := m.Confirm(ctx, "5491100000001", 12, 30)
	if err != nil {
		t.Fatalf("failed to confirm: %v", err)
	}
	if confirmed.Order.Status != domain.OrderStatusConfirmed || !confirmed.Changed {
		t.Fatalf("unexpected confirm result: %+v", confirmed)
	}

	sent, err := m.MarkSent(ctx, created.Order.ID)
	if err != nil {
		t.Fatalf("failed to mark sent: %v", err)
	}
	if sent.Status != domain.OrderStatusSent {
		t.Fatalf("expected sent, got %s", sent.Status)
	}

	active, err := repo.FindActiveByCustomer(ctx, "5491100000001")
	if err != nil {
		t.Fatalf("failed to find active order: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active order after sent, got %s", active.ID)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list orders: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 order, got %d", len(list))
	}
}

func TestOrderRepository_ConcurrentCreates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := testutil.SetupPostgres(ctx, t)
	defer pg.Cleanup()

	repo := NewOrderRepository(pg.OpenDB(t))

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	ids := map[string]bool{}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := repo.CreateIfAbsent(ctx, "5491100000001", newOrder("2 kg de asado", testNow))
			if err != nil {
				t.Errorf("create failed: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[result.Order.ID] = true
			if result.Created {
				created++
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one create, got %d", created)
	}
	if len(ids) != 1 {
		t.Fatalf("expected all callers to see the same order, got %d ids", len(ids))
	}
}
