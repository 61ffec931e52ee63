package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/services"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
)

func TestCreateOrderComputesTotalAndDecrementsStock(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	laptop := seedProduct(t, db, "laptop", 999.50, 5, "electronics")
	mouse := seedProduct(t, db, "mouse", 25.00, 10, "electronics")

	svc := services.NewOrderService(db)
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "12 MG Road, Bengaluru",
		Items: []services.OrderItemInput{
			{ProductID: laptop.ID, Quantity: 3},
			{ProductID: mouse.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, orderID)

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, 999.50*3+25.00*2, order.TotalAmount)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, customer.ID, order.AccountID)

	assert.Equal(t, 2, currentStock(t, db, laptop.ID))
	assert.Equal(t, 8, currentStock(t, db, mouse.ID))
	assert.EqualValues(t, 2, count(t, db, &models.OrderItem{}, "order_id = ?", orderID))
}

func TestCreateOrderEmptyItemsRejectedBeforeStore(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db)

	_, err := svc.Create(customer, services.CreateOrderInput{Address: "somewhere"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.EqualValues(t, 0, count(t, db, &models.Order{}, ""))
}

func TestCreateOrderNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "pen", 3.00, 9, "stationery")
	svc := services.NewOrderService(db)

	_, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items:   []services.OrderItemInput{{ProductID: product.ID, Quantity: 0}},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.Equal(t, 9, currentStock(t, db, product.ID))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db)

	_, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items:   []services.OrderItemInput{{ProductID: 404, Quantity: 1}},
	})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestCreateOrderOutOfStock(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, "gone", 10.00, 0, "misc")
	svc := services.NewOrderService(db)

	_, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items:   []services.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestCreateOrderExceedingStockRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	plenty := seedProduct(t, db, "plenty", 5.00, 50, "misc")
	scarce := seedProduct(t, db, "scarce", 7.00, 2, "misc")

	svc := services.NewOrderService(db)
	_, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items: []services.OrderItemInput{
			{ProductID: plenty.ID, Quantity: 10},
			{ProductID: scarce.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))

	// The first item's work must not survive the second item's failure.
	assert.Equal(t, 50, currentStock(t, db, plenty.ID))
	assert.Equal(t, 2, currentStock(t, db, scarce.ID))
	assert.EqualValues(t, 0, count(t, db, &models.Order{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.OrderItem{}, ""))
}

func TestCreateOrderBoundsRepeatedProductLines(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	product := seedProduct(t, db, "repeated", 12.00, 5, "misc")

	svc := services.NewOrderService(db)

	// Each line fits the stock on its own; together they do not.
	_, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items: []services.OrderItemInput{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, 5, currentStock(t, db, product.ID))
	assert.EqualValues(t, 0, count(t, db, &models.Order{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.OrderItem{}, ""))

	// Combined quantity exactly equal to stock still goes through.
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items: []services.OrderItemInput{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, currentStock(t, db, product.ID))

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, 12.00*5, order.TotalAmount)
	assert.EqualValues(t, 2, count(t, db, &models.OrderItem{}, "order_id = ?", orderID))
}

func TestCreateOrderSnapshotsPriceAtPurchaseTime(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	product := seedProduct(t, db, "widget", 20.00, 5, "misc")

	svc := services.NewOrderService(db)
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items:   []services.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Reprice the product after the sale.
	newPrice := models.Price{Amount: 35.00}
	require.NoError(t, db.Create(&newPrice).Error)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price_id", newPrice.ID).Error)

	aggregates, err := svc.List(customer)
	require.NoError(t, err)
	require.Len(t, aggregates, 1)
	require.Len(t, aggregates[0].Items, 1)

	assert.Equal(t, orderID, aggregates[0].ID)
	assert.Equal(t, 40.00, aggregates[0].TotalAmount)
	assert.Equal(t, 20.00, aggregates[0].Items[0].Price)
}

func TestConcurrentOrdersForLastUnit(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	seedAccount(t, db, 3, "other@example.com", auth.RoleCustomer)
	product := seedProduct(t, db, "last-one", 60.00, 1, "misc")

	svc := services.NewOrderService(db)
	principals := []auth.Principal{customer, {ID: 3, Role: auth.RoleCustomer}}
	errs := make([]error, len(principals))

	var wg sync.WaitGroup
	for i, p := range principals {
		wg.Add(1)
		go func(i int, p auth.Principal) {
			defer wg.Done()
			_, errs[i] = svc.Create(p, services.CreateOrderInput{
				Address: "somewhere",
				Items:   []services.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
			})
		}(i, p)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperr.Is(err, apperr.Conflict))
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, currentStock(t, db, product.ID))
	assert.EqualValues(t, 1, count(t, db, &models.Order{}, ""))
}

func TestDeleteItemRestoresStockAndDropsEmptyOrder(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	product := seedProduct(t, db, "solo", 15.00, 4, "misc")

	svc := services.NewOrderService(db)
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items:   []services.OrderItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, currentStock(t, db, product.ID))

	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ?", orderID).First(&item).Error)

	require.NoError(t, svc.DeleteItem(admin, item.ID))

	assert.Equal(t, 4, currentStock(t, db, product.ID))
	assert.EqualValues(t, 0, count(t, db, &models.OrderItem{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.Order{}, ""))
	// The product still references the price, so it survives collection.
	assert.EqualValues(t, 1, count(t, db, &models.Price{}, "amount = ?", 15.00))
}

func TestDeleteItemKeepsOrderWithRemainingItems(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	first := seedProduct(t, db, "first", 10.00, 5, "misc")
	second := seedProduct(t, db, "second", 11.00, 5, "misc")

	svc := services.NewOrderService(db)
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items: []services.OrderItemInput{
			{ProductID: first.ID, Quantity: 1},
			{ProductID: second.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	var item models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", orderID, second.ID).
		First(&item).Error)

	require.NoError(t, svc.DeleteItem(admin, item.ID))

	assert.EqualValues(t, 1, count(t, db, &models.Order{}, ""))
	assert.EqualValues(t, 1, count(t, db, &models.OrderItem{}, "order_id = ?", orderID))
	assert.Equal(t, 5, currentStock(t, db, second.ID))
	assert.Equal(t, 4, currentStock(t, db, first.ID))
}

func TestDeleteItemAuthorization(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewOrderService(db)

	err := svc.DeleteItem(customer, 1)
	assert.True(t, apperr.Is(err, apperr.Authorization))

	err = svc.DeleteItem(admin, 999)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDeleteOrderRestoresAllStock(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	first := seedProduct(t, db, "first", 10.00, 5, "misc")
	second := seedProduct(t, db, "second", 11.00, 6, "misc")

	svc := services.NewOrderService(db)
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items: []services.OrderItemInput{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(admin, orderID))

	assert.Equal(t, 5, currentStock(t, db, first.ID))
	assert.Equal(t, 6, currentStock(t, db, second.ID))
	assert.EqualValues(t, 0, count(t, db, &models.Order{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.OrderItem{}, ""))

	err = svc.Delete(admin, orderID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = svc.Delete(customer, orderID)
	assert.True(t, apperr.Is(err, apperr.Authorization))
}

func TestUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	product := seedProduct(t, db, "thing", 5.00, 5, "misc")

	svc := services.NewOrderService(db)
	orderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items:   []services.OrderItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(admin, orderID, models.StatusShipped))

	var order models.Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, models.StatusShipped, order.Status)

	// Identity transition is a conflict, not a silent no-op.
	err = svc.UpdateStatus(admin, orderID, models.StatusShipped)
	assert.True(t, apperr.Is(err, apperr.Conflict))

	err = svc.UpdateStatus(admin, orderID, "teleported")
	assert.True(t, apperr.Is(err, apperr.Validation))

	err = svc.UpdateStatus(admin, 999, models.StatusCompleted)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = svc.UpdateStatus(customer, orderID, models.StatusCompleted)
	assert.True(t, apperr.Is(err, apperr.Authorization))
}

func TestListGroupsItemsPerOrderNewestFirst(t *testing.T) {
	db := newTestDB(t)
	seedAccount(t, db, customer.ID, "customer@example.com", auth.RoleCustomer)
	seedAccount(t, db, 3, "other@example.com", auth.RoleCustomer)
	first := seedProduct(t, db, "first", 10.00, 20, "misc")
	second := seedProduct(t, db, "second", 11.00, 20, "misc")

	svc := services.NewOrderService(db)
	olderID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "somewhere",
		Items: []services.OrderItemInput{
			{ProductID: first.ID, Quantity: 1},
			{ProductID: second.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	newerID, err := svc.Create(customer, services.CreateOrderInput{
		Address: "elsewhere",
		Items:   []services.OrderItemInput{{ProductID: first.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = svc.Create(auth.Principal{ID: 3, Role: auth.RoleCustomer}, services.CreateOrderInput{
		Address: "other address",
		Items:   []services.OrderItemInput{{ProductID: second.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	mine, err := svc.List(customer)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	ids := []uint{mine[0].ID, mine[1].ID}
	assert.Contains(t, ids, olderID)
	assert.Contains(t, ids, newerID)
	for _, agg := range mine {
		assert.Empty(t, agg.Customer)
		if agg.ID == olderID {
			assert.Len(t, agg.Items, 2)
			assert.Equal(t, "first", agg.Items[0].ProductName)
		} else {
			assert.Len(t, agg.Items, 1)
		}
	}

	all, err := svc.ListAll(admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, agg := range all {
		assert.NotEmpty(t, agg.Customer)
	}

	_, err = svc.ListAll(customer)
	assert.True(t, apperr.Is(err, apperr.Authorization))
}
