package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Rakhulsr/techstore-api/app/models"
	"github.com/Rakhulsr/techstore-api/app/utils/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceOrderCapturesPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.register(t, "Alice", "alice@example.com")
	cat := f.category(t, "Réseau")
	routeur := f.product(t, cat.ID, "Routeur", "149.99", true)
	cable := f.product(t, cat.ID, "Câble RJ45", "4.50", true)

	order, err := f.orders.PlaceOrder(ctx, alice.ID, "1 rue de Paris", []NewOrderLine{
		{ProductID: routeur.ID, Quantity: 1},
		{ProductID: cable.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("163.49").Equal(order.Total))

	_, err = f.catalog.UpdateProduct(ctx, routeur.ID, ProductPatch{Price: ptr(decimal.NewFromInt(1))})
	require.NoError(t, err)

	orders, err := f.orders.ListUserOrders(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 2)
	assert.True(t, decimal.RequireFromString("149.99").Equal(orders[0].Items[0].UnitPrice))
	require.NotNil(t, orders[0].Items[0].Product)
	assert.Equal(t, "Routeur", orders[0].Items[0].Product.Name)

	// deleting a product keeps the line with a null product
	require.NoError(t, f.catalog.DeleteProduct(ctx, cable.ID))
	orders, err = f.orders.ListUserOrders(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, orders[0].Items, 2)
	assert.Nil(t, orders[0].Items[1].ProductID)
	assert.Nil(t, orders[0].Items[1].Product)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, _ := f.register(t, "Alice", "alice@example.com")
	cat := f.category(t, "Réseau")
	p := f.product(t, cat.ID, "Switch", "20", true)
	order, err := f.orders.PlaceOrder(ctx, alice.ID, "", []NewOrderLine{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)

	updated, err := f.orders.UpdateStatus(ctx, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, "shipped", updated.Status)
	require.NotNil(t, updated.User)
	assert.Equal(t, alice.ID, updated.User.ID)

	// free text is accepted
	_, err = f.orders.UpdateStatus(ctx, order.ID, "waiting for courier")
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.orders.UpdateStatus(ctx, order.ID, strings.Repeat("x", 51))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.orders.UpdateStatus(ctx, order.ID+10, "shipped")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	mine, err := f.orders.ListUserOrders(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "waiting for courier", mine[0].Status)

	filtered, err := f.orders.ListOrders(ctx, "shipped")
	require.NoError(t, err)
	assert.Empty(t, filtered)
	all, err := f.orders.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
}
