package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behancebrothers-ops/jjfg-sub000/internal/domain"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/metrics"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/repository/memory"
	"github.com/behancebrothers-ops/jjfg-sub000/internal/service"
	"github.com/behancebrothers-ops/jjfg-sub000/pkg/logger"
)

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// flakyInventory fails every decrement until healed, and always fails the
// orders listed in stuck.
type flakyInventory struct {
	*memory.Store
	broken bool
	stuck  map[string]bool
}

func (f *flakyInventory) Decrement(ctx context.Context, orderID string, line domain.OrderLine) (bool, bool, error) {
	if f.broken || f.stuck[orderID] {
		return false, false, errors.New("lock timeout")
	}
	return f.Store.Decrement(ctx, orderID, line)
}

func settledOrder(id string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID: id, OrderNumber: "ORD-" + id, CreatedAt: createdAt,
		Lines: []domain.OrderLine{{ID: id + "-l1", OrderID: id, ProductID: "p1", Quantity: 2}},
	}
}

func newReconciler(t *testing.T, store *memory.Store, inv *flakyInventory) *Reconciler {
	t.Helper()
	log := logger.NewWithWriter("test", "error", io.Discard)
	m := metrics.New(prometheus.NewRegistry())
	updater := service.NewInventoryUpdater(inv, store, m, log)
	r := NewReconciler(store, updater, m, log, ReconcilerConfig{GracePeriod: 5 * time.Minute, BatchSize: 10})
	r.clock = func() time.Time { return now }
	return r
}

func TestReconciler_AppliesPendingOrdersOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutProduct(memory.Product{ID: "p1", Name: "Mug", BasePrice: 1000, Stock: 10, Published: true})
	inv := &flakyInventory{Store: store, broken: true}

	require.NoError(t, store.CreateSettled(ctx, settledOrder("o1", now.Add(-time.Hour)), nil, now))
	r := newReconciler(t, store, inv)

	adjusted, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, adjusted)
	assert.Equal(t, 10, store.Stock("p1", ""))

	inv.broken = false
	adjusted, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, adjusted)
	assert.Equal(t, 8, store.Stock("p1", ""))

	adjusted, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, adjusted, "adjusted orders are not listed again")
	assert.Equal(t, 8, store.Stock("p1", ""))
}

func TestReconciler_SkipsOrdersInsideGracePeriod(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutProduct(memory.Product{ID: "p1", Name: "Mug", BasePrice: 1000, Stock: 10, Published: true})

	require.NoError(t, store.CreateSettled(ctx, settledOrder("fresh", now.Add(-time.Minute)), nil, now))
	r := newReconciler(t, store, &flakyInventory{Store: store})

	adjusted, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, adjusted)
	assert.Equal(t, 10, store.Stock("p1", ""))
}

func TestReconciler_PartialDecrementNotRepeated(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutProduct(memory.Product{ID: "p1", Name: "Mug", BasePrice: 1000, Stock: 10, Published: true})

	o := settledOrder("o2", now.Add(-time.Hour))
	require.NoError(t, store.CreateSettled(ctx, o, nil, now))
	// The request applied the line but crashed before stamping the order.
	applied, _, err := store.Decrement(ctx, o.ID, o.Lines[0])
	require.NoError(t, err)
	require.True(t, applied)

	r := newReconciler(t, store, &flakyInventory{Store: store})
	adjusted, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, adjusted)
	assert.Equal(t, 8, store.Stock("p1", ""))
}

func TestReconciler_MissingProductDoesNotStallBacklog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutProduct(memory.Product{ID: "p1", Name: "Mug", BasePrice: 1000, Stock: 10, Published: true})

	// Ten older orders reference a product that has since been deleted.
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("gone-%02d", i)
		o := &domain.Order{
			ID: id, OrderNumber: "ORD-" + id, CreatedAt: now.Add(-2*time.Hour + time.Duration(i)*time.Second),
			Lines: []domain.OrderLine{{ID: id + "-l1", OrderID: id, ProductID: "deleted", Quantity: 1}},
		}
		require.NoError(t, store.CreateSettled(ctx, o, nil, now))
	}
	require.NoError(t, store.CreateSettled(ctx, settledOrder("valid", now.Add(-time.Hour)), nil, now))

	r := newReconciler(t, store, &flakyInventory{Store: store})

	adjusted, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, adjusted, "orders with missing products are stamped")
	assert.Equal(t, 10, store.Stock("p1", ""))

	adjusted, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, adjusted)
	assert.Equal(t, 8, store.Stock("p1", ""))

	pending, err := store.ListPendingInventory(ctx, now, repository.PendingCursor{}, 100)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReconciler_CursorMovesPastStuckOrders(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.PutProduct(memory.Product{ID: "p1", Name: "Mug", BasePrice: 1000, Stock: 10, Published: true})
	inv := &flakyInventory{Store: store, stuck: map[string]bool{"a": true, "b": true}}

	require.NoError(t, store.CreateSettled(ctx, settledOrder("a", now.Add(-3*time.Hour)), nil, now))
	require.NoError(t, store.CreateSettled(ctx, settledOrder("b", now.Add(-2*time.Hour)), nil, now))
	require.NoError(t, store.CreateSettled(ctx, settledOrder("c", now.Add(-time.Hour)), nil, now))

	r := newReconciler(t, store, inv)
	r.cfg.BatchSize = 2

	adjusted, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, adjusted)
	assert.Equal(t, "b", r.cursor.ID)

	adjusted, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, adjusted, "the order behind a full stuck batch is reached")
	assert.Equal(t, 8, store.Stock("p1", ""))
	assert.Equal(t, repository.PendingCursor{}, r.cursor, "a short batch restarts the scan")

	// Once healed, the stuck orders are picked up on the next pass.
	inv.stuck = nil
	adjusted, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, adjusted)
	assert.Equal(t, 4, store.Stock("p1", ""))
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	r := newReconciler(t, store, &flakyInventory{Store: store})
	r.cfg.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
