package order

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRepo(t *testing.T) (Repository, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	return NewJSONRepository(dir), dir
}

func TestJSONRepository_InitDatabaseIdempotent(t *testing.T) {
	repo, dir := newJSONRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.InitDatabase(ctx))
	require.NoError(t, repo.InitDatabase(ctx))

	data, err := os.ReadFile(filepath.Join(dir, ordersFile))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONRepository_AddOrderScenario(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	o, err := repo.AddOrder(ctx, Order{
		Name:     "Jan",
		Color:    "black",
		Size:     "l",
		Quantity: 2,
		Price:    50,
		Delivery: DeliveryPickup,
		Status:   StatusNew,
	}, "")
	require.NoError(t, err)

	assert.Regexp(t, `^ORDER-\d{4}$`, o.OrderID)
	assert.Regexp(t, `^[0-9A-F]{8}$`, o.ID)

	total, err := repo.GetOrderTotal(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)

	rows, err := repo.GetOrdersByOrderID(ctx, o.OrderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, o.ID, rows[0].ID)
	assert.Equal(t, "Jan", rows[0].Name)
	assert.True(t, o.Date.Equal(rows[0].Date))
}

func TestJSONRepository_TotalAcrossRows(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	first, err := repo.AddOrder(ctx, Order{Name: "Jan", Quantity: 2, Price: 25}, "")
	require.NoError(t, err)
	_, err = repo.AddOrder(ctx, Order{Name: "Jan", Quantity: 1, Price: 10.5}, first.OrderID)
	require.NoError(t, err)
	_, err = repo.AddOrder(ctx, Order{Name: "Piet", Quantity: 4, Price: 99}, "ORDER-0001")
	require.NoError(t, err)

	total, err := repo.GetOrderTotal(ctx, first.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 60.5, total)

	total, err = repo.GetOrderTotal(ctx, "ORDER-NONE")
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestJSONRepository_UpdateOrderStatusAllRows(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	first, err := repo.AddOrder(ctx, Order{Name: "Jan", Price: 10}, "")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = repo.AddOrder(ctx, Order{Name: "Jan", Price: 10}, first.OrderID)
		require.NoError(t, err)
	}
	other, err := repo.AddOrder(ctx, Order{Name: "Piet"}, "ORDER-0002")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateOrderStatus(ctx, first.OrderID, StatusPaid))

	rows, err := repo.GetOrdersByOrderID(ctx, first.OrderID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, StatusPaid, r.Status)
	}

	untouched, err := repo.GetOrdersByOrderID(ctx, other.OrderID)
	require.NoError(t, err)
	assert.Equal(t, StatusNew, untouched[0].Status)

	assert.ErrorIs(t, repo.UpdateOrderStatus(ctx, "ORDER-NONE", StatusPaid), ErrOrderNotFound)
}

func TestJSONRepository_UpdateAndDelete(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	o, err := repo.AddOrder(ctx, Order{Name: "Jan", Price: 10}, "")
	require.NoError(t, err)
	sibling, err := repo.AddOrder(ctx, Order{Name: "Jan", Price: 5}, o.OrderID)
	require.NoError(t, err)

	updated := *o
	updated.Size = "xl"
	updated.Quantity = 0
	require.NoError(t, repo.UpdateOrder(ctx, updated))

	rows, err := repo.GetOrdersByOrderID(ctx, o.OrderID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "xl", rows[0].Size)
	assert.Equal(t, 1, rows[0].Quantity)

	missing := updated
	missing.ID = "MISSING1"
	assert.ErrorIs(t, repo.UpdateOrder(ctx, missing), ErrOrderNotFound)

	// deletes the single row, not the whole checkout
	require.NoError(t, repo.DeleteOrder(ctx, o.ID))
	rows, err = repo.GetOrdersByOrderID(ctx, o.OrderID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, sibling.ID, rows[0].ID)

	assert.ErrorIs(t, repo.DeleteOrder(ctx, o.ID), ErrOrderNotFound)
}

func TestJSONRepository_Tracking(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	o, err := repo.AddOrder(ctx, Order{Name: "Jan", Delivery: DeliveryShipping}, "")
	require.NoError(t, err)

	sent, err := repo.MarkTrackingAsSent(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, sent.TrackingSent)

	got, err := repo.UpdateTrackingNumber(ctx, o.ID, "3SABC123")
	require.NoError(t, err)
	assert.Equal(t, "3SABC123", got.TrackingNumber)
	assert.False(t, got.TrackingSent)

	supplied, err := repo.SetOrderedFromSupplier(ctx, o.ID, true)
	require.NoError(t, err)
	assert.True(t, supplied.OrderedFromSupplier)

	_, err = repo.UpdateTrackingNumber(ctx, "MISSING1", "x")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = repo.MarkTrackingAsSent(ctx, "MISSING1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestJSONRepository_GetAllOrdersNewestFirst(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "newest", "middle"} {
		offset := map[string]int{"old": 0, "newest": 2, "middle": 1}[name]
		_, err := repo.AddOrder(ctx, Order{Name: name, Date: base.Add(time.Duration(offset) * time.Hour)}, "")
		require.NoError(t, err, i)
	}

	orders, err := repo.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "newest", orders[0].Name)
	assert.Equal(t, "middle", orders[1].Name)
	assert.Equal(t, "old", orders[2].Name)
}

func TestJSONRepository_BackfillsQuantity(t *testing.T) {
	repo, dir := newJSONRepo(t)
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	legacy := `[{"id":"LEGACY01","orderId":"ORDER-1000","name":"Jan","price":30,"status":"nieuw","date":"2023-06-01T12:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ordersFile), []byte(legacy), 0o644))

	rows, err := repo.GetOrdersByOrderID(ctx, "ORDER-1000")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Quantity)

	total, err := repo.GetOrderTotal(ctx, "ORDER-1000")
	require.NoError(t, err)
	assert.Equal(t, 30.0, total)
}

func TestJSONRepository_RoundTripFile(t *testing.T) {
	repo, dir := newJSONRepo(t)
	ctx := context.Background()

	o, err := repo.AddOrder(ctx, Order{
		Name: "Jan", Email: "jan@example.com", Phone: "0612345678", Address: "Dorpsstraat 1",
		Color: "black", ColorName: "Zwart", Size: "m", Delivery: DeliveryShipping,
		Quantity: 3, Price: 19.95, IsCrew: true,
	}, "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ordersFile))
	require.NoError(t, err)

	var stored []Order
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.True(t, o.Date.Equal(stored[0].Date))
	stored[0].Date = o.Date
	assert.Equal(t, *o, stored[0])
}

func TestJSONRepository_ConcurrentAddsKeepEveryRow(t *testing.T) {
	repo, _ := newJSONRepo(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddOrder(ctx, Order{Name: "Jan", Price: 1}, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	orders, err := repo.GetAllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, n)

	seen := map[string]bool{}
	for _, o := range orders {
		assert.False(t, seen[o.OrderID], "duplicate order id %s", o.OrderID)
		seen[o.OrderID] = true
	}
}
