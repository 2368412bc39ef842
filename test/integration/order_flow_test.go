package integration

import (
	"context"
	"sync"
	"testing"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(db *TestDB) (service.OrderService, service.ProductService) {
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	return service.NewOrderService(orderRepo, productRepo, logger),
		service.NewProductService(productRepo, logger)
}

func orderRequest(items ...model.OrderItemRequest) *model.OrderRequest {
	return &model.OrderRequest{
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@example.com",
		CustomerAddress: "1 Main St, Springfield",
		Items:           items,
	}
}

func TestOrderLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	orders, products := newServices(db)
	seller := SeedUser(t, db.Pool, "seller1")
	mouse := SeedProduct(t, db.Pool, seller, "Wireless Mouse", "10.00", 5)

	var orderID uuid.UUID

	t.Run("Create order decrements stock and computes total", func(t *testing.T) {
		order, err := orders.CreateOrder(ctx, seller,
			orderRequest(model.OrderItemRequest{ProductID: mouse.ID, Quantity: 3}))
		require.NoError(t, err)
		orderID = order.ID

		assert.Equal(t, model.StatusPending, order.Status)
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("30.00")))
		require.Len(t, order.Items, 1)
		assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))

		p, err := products.GetByID(ctx, seller, mouse.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, p.StockAvailable)
		assert.Equal(t, 3, p.UnitsSold)
	})

	t.Run("Insufficient stock leaves everything untouched", func(t *testing.T) {
		_, err := orders.CreateOrder(ctx, seller,
			orderRequest(model.OrderItemRequest{ProductID: mouse.ID, Quantity: 3}))
		require.Error(t, err)

		var stockErr *model.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 2, stockErr.Available)
		assert.Equal(t, 3, stockErr.Requested)

		p, err := products.GetByID(ctx, seller, mouse.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, p.StockAvailable)
		assert.Equal(t, 3, p.UnitsSold)

		// No orphan order row survives the rollback
		listed, err := orders.List(ctx, seller, model.OrderFilter{})
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("Price snapshot survives a product price change", func(t *testing.T) {
		newPrice := decimal.RequireFromString("99.00")
		_, err := products.Update(ctx, seller, mouse.ID, &model.ProductPatch{SellingPrice: &newPrice})
		require.NoError(t, err)

		order, err := orders.GetByID(ctx, seller, orderID)
		require.NoError(t, err)
		assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("30.00")))
	})

	t.Run("Status update", func(t *testing.T) {
		status := model.StatusConfirmed
		order, err := orders.Update(ctx, seller, orderID, &model.OrderPatch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, order.Status)
	})

	t.Run("Non-pending order cannot be deleted", func(t *testing.T) {
		err := orders.Delete(ctx, seller, orderID)
		assert.ErrorIs(t, err, model.ErrOrderNotPending)

		// Still there, stock still consumed
		_, err = orders.GetByID(ctx, seller, orderID)
		require.NoError(t, err)
	})

	t.Run("Deleting a pending order restores stock", func(t *testing.T) {
		status := model.StatusPending
		_, err := orders.Update(ctx, seller, orderID, &model.OrderPatch{Status: &status})
		require.NoError(t, err)

		require.NoError(t, orders.Delete(ctx, seller, orderID))

		_, err = orders.GetByID(ctx, seller, orderID)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)

		p, err := products.GetByID(ctx, seller, mouse.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, p.StockAvailable)
		assert.Equal(t, 0, p.UnitsSold)
	})
}

func TestDeleteRestoresEveryItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	orders, products := newServices(db)
	seller := SeedUser(t, db.Pool, "seller1")
	mouse := SeedProduct(t, db.Pool, seller, "Wireless Mouse", "10.00", 5)
	lamp := SeedProduct(t, db.Pool, seller, "Desk Lamp", "20.00", 8)

	order, err := orders.CreateOrder(ctx, seller, orderRequest(
		model.OrderItemRequest{ProductID: mouse.ID, Quantity: 2},
		model.OrderItemRequest{ProductID: lamp.ID, Quantity: 3},
	))
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("80.00")))

	require.NoError(t, orders.Delete(ctx, seller, order.ID))

	for _, expect := range []struct {
		id    uuid.UUID
		stock int
	}{
		{mouse.ID, 5},
		{lamp.ID, 8},
	} {
		p, err := products.GetByID(ctx, seller, expect.id)
		require.NoError(t, err)
		assert.Equal(t, expect.stock, p.StockAvailable)
		assert.Equal(t, 0, p.UnitsSold)
	}
}

func TestOrderNumbersAreUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	orders, _ := newServices(db)
	seller := SeedUser(t, db.Pool, "seller1")
	mouse := SeedProduct(t, db.Pool, seller, "Wireless Mouse", "10.00", 100)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		order, err := orders.CreateOrder(ctx, seller,
			orderRequest(model.OrderItemRequest{ProductID: mouse.ID, Quantity: 1}))
		require.NoError(t, err)

		assert.Regexp(t, `^ORD-\d{8}-\d{4}$`, order.OrderNumber)
		assert.False(t, seen[order.OrderNumber], "duplicate order number %s", order.OrderNumber)
		seen[order.OrderNumber] = true
	}
}

func TestConcurrentOrdersCannotOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	orders, products := newServices(db)
	seller := SeedUser(t, db.Pool, "seller1")
	lamp := SeedProduct(t, db.Pool, seller, "Desk Lamp", "20.00", 1)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orders.CreateOrder(ctx, seller,
				orderRequest(model.OrderItemRequest{ProductID: lamp.ID, Quantity: 1}))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	stockRejections := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *model.InsufficientStockError
		if assert.ErrorAs(t, err, &stockErr) {
			stockRejections++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, stockRejections)

	p, err := products.GetByID(ctx, seller, lamp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.StockAvailable)
	assert.Equal(t, 1, p.UnitsSold)
}

func TestOrderStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	orders, _ := newServices(db)
	seller := SeedUser(t, db.Pool, "seller1")
	mouse := SeedProduct(t, db.Pool, seller, "Wireless Mouse", "10.00", 100)

	for i := 0; i < 3; i++ {
		_, err := orders.CreateOrder(ctx, seller,
			orderRequest(model.OrderItemRequest{ProductID: mouse.ID, Quantity: 3}))
		require.NoError(t, err)
	}

	listed, err := orders.List(ctx, seller, model.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)

	status := model.StatusShipped
	_, err = orders.Update(ctx, seller, listed[0].ID, &model.OrderPatch{Status: &status})
	require.NoError(t, err)

	stats, err := orders.Stats(ctx, seller)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 2, stats.PendingOrders)
	assert.Equal(t, 1, stats.ShippedOrders)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("90.00")))
}

func TestSellersAreIsolated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := SetupTestDB(t)
	ctx := context.Background()

	orders, products := newServices(db)
	alice := SeedUser(t, db.Pool, "alice")
	bob := SeedUser(t, db.Pool, "bob")
	mouse := SeedProduct(t, db.Pool, alice, "Wireless Mouse", "10.00", 10)

	t.Run("Cannot order another seller's product", func(t *testing.T) {
		_, err := orders.CreateOrder(ctx, bob,
			orderRequest(model.OrderItemRequest{ProductID: mouse.ID, Quantity: 1}))
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Cannot see another seller's orders", func(t *testing.T) {
		order, err := orders.CreateOrder(ctx, alice,
			orderRequest(model.OrderItemRequest{ProductID: mouse.ID, Quantity: 1}))
		require.NoError(t, err)

		_, err = orders.GetByID(ctx, bob, order.ID)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)

		listed, err := orders.List(ctx, bob, model.OrderFilter{})
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("Cannot see another seller's products", func(t *testing.T) {
		_, err := products.GetByID(ctx, bob, mouse.ID)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}
