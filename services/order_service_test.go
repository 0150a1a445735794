package services

import (
	"context"
	"testing"
	"time"

	"freshfetch/models"
	"freshfetch/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest(items ...models.CartItem) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		Email:         "buyer@example.com",
		Products:      items,
		PaymentMethod: models.PaymentMethodCOD,
		ShippingAddress: models.ShippingAddress{
			FullName: "Buyer", Email: "buyer@example.com", Phone: "555", City: "Springfield", Address: "1 Main St",
		},
	}
}

func TestOrderCreateReservesStockAndComputesTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Category: "Fruits", Price: 4.5, Stock: 10})

	total := 11.0
	req := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 2, Price: 1})
	req.Total = &total

	order, created, err := env.orders.Create(ctx, buyerPrincipal, req, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 9.0, order.Subtotal)
	assert.Equal(t, 2.0, order.Shipping)
	assert.Equal(t, 11.0, order.Total)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.Nil(t, order.TransactionID)
	assert.Equal(t, 4.5, order.Products[0].Price, "line price comes from the catalog")
	assert.Equal(t, 8, env.stock(t, apples.ID.Hex()))

	env.orders.Wait()
	assert.Equal(t, 1, env.mailer.count())
}

func TestOrderWaitCoversSlowConfirmation(t *testing.T) {
	env := newTestEnv(t)
	mailer := &fakeMailer{delay: 30 * time.Millisecond}
	orders := NewOrderService(env.store.Orders, env.store.Products, NewProductCache(nil), mailer)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 4.5, Stock: 10})

	_, _, err := orders.Create(context.Background(), buyerPrincipal, orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 1}), "")
	require.NoError(t, err)

	orders.Wait()
	assert.Equal(t, 1, mailer.count())
}

func TestOrderCreateRejectsTotalMismatch(t *testing.T) {
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 4.5, Stock: 10})

	total := 5.0
	req := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 2})
	req.Total = &total

	_, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	assert.ErrorIs(t, err, ErrTotalMismatch)
	assert.Equal(t, 10, env.stock(t, apples.ID.Hex()))
}

func TestOrderCreateInsufficientStockLeavesStockUnchanged(t *testing.T) {
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 1, Stock: 10})
	milk := env.seedProduct(t, models.Product{Name: "Milk", Price: 1, Stock: 1})

	req := orderRequest(
		models.CartItem{ProductID: apples.ID.Hex(), Quantity: 3},
		models.CartItem{ProductID: milk.ID.Hex(), Quantity: 2},
	)
	_, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	assert.Equal(t, 10, env.stock(t, apples.ID.Hex()))
	assert.Equal(t, 1, env.stock(t, milk.ID.Hex()))
}

func TestOrderCreateCardNeedsTransaction(t *testing.T) {
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 1, Stock: 10})

	req := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 1})
	req.PaymentMethod = models.PaymentMethodCard
	_, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	assert.ErrorIs(t, err, ErrValidation)

	req.TransactionID = "pi_123"
	order, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.TransactionID)
	assert.Equal(t, "pi_123", *order.TransactionID)
}

func TestOrderCreateAcceptsCheckoutPaymentNames(t *testing.T) {
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 1, Stock: 10})

	req := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 1})
	req.PaymentMethod = "Stripe"
	_, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	assert.ErrorIs(t, err, ErrValidation)

	req.TransactionID = "pi_456"
	order, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCard, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	req.PaymentMethod = "barter"
	_, _, err = env.orders.Create(context.Background(), buyerPrincipal, req, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderCreateIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 1, Stock: 10})
	req := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 1})

	first, created, err := env.orders.Create(ctx, buyerPrincipal, req, "checkout-1")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := env.orders.Create(ctx, buyerPrincipal, req, "checkout-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, total, err := env.store.Orders.List(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, 9, env.stock(t, apples.ID.Hex()))
}

func TestOrderIdempotencyKeyIsPerUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	apples := env.seedProduct(t, models.Product{Name: "Apples", Price: 1, Stock: 10})
	req := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 1})
	req.ShippingAddress = models.ShippingAddress{FullName: "Buyer Private", Address: "1 Private Rd"}

	mine, created, err := env.orders.Create(ctx, buyerPrincipal, req, "k1")
	require.NoError(t, err)
	require.True(t, created)

	otherReq := orderRequest(models.CartItem{ProductID: apples.ID.Hex(), Quantity: 2})
	otherReq.ShippingAddress = models.ShippingAddress{FullName: "Other", Address: "9 Elm St"}
	theirs, created, err := env.orders.Create(ctx, otherPrincipal, otherReq, "k1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, mine.ID, theirs.ID)
	assert.Equal(t, otherPrincipal.Email, theirs.Email)
	assert.Equal(t, "9 Elm St", theirs.ShippingAddress.Address)
	assert.Equal(t, 7, env.stock(t, apples.ID.Hex()))

	again, created, err := env.orders.Create(ctx, otherPrincipal, otherReq, "k1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, theirs.ID, again.ID)
}

func TestReplayedOrderOnlyForOwner(t *testing.T) {
	owner := buyerPrincipal.UserID
	order := &models.Order{UserID: &owner, Email: buyerPrincipal.Email}

	got, created, err := replayed(buyerPrincipal, order)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, order, got)

	got, _, err = replayed(otherPrincipal, order)
	assert.ErrorIs(t, err, ErrIdempotencyKeyReused)
	assert.Nil(t, got)
}

func TestOrderCreateUsesVariantStock(t *testing.T) {
	env := newTestEnv(t)
	rice := env.seedProduct(t, models.Product{
		Name: "Rice", Price: 3, Stock: 50,
		Variants: []models.Variant{{Unit: "5kg", Price: 12, Stock: 2}},
	})

	req := orderRequest(models.CartItem{ProductID: rice.ID.Hex(), Unit: "5kg", Quantity: 3})
	_, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)

	req = orderRequest(models.CartItem{ProductID: rice.ID.Hex(), Unit: "5kg", Quantity: 2})
	order, _, err := env.orders.Create(context.Background(), buyerPrincipal, req, "")
	require.NoError(t, err)
	assert.Equal(t, 24.0, order.Subtotal)

	p, err := env.store.Products.FindByID(context.Background(), rice.ID.Hex())
	require.NoError(t, err)
	v, _ := p.VariantByUnit("5kg")
	assert.Equal(t, 0, v.Stock)
	assert.Equal(t, 50, p.Stock)
}

func placeOrder(t *testing.T, env *testEnv, qty int) (*models.Order, *models.Product) {
	t.Helper()
	product := env.seedProduct(t, models.Product{Name: "Apples", Price: 1, Stock: 10})
	order, _, err := env.orders.Create(context.Background(), buyerPrincipal,
		orderRequest(models.CartItem{ProductID: product.ID.Hex(), Quantity: qty}), "")
	require.NoError(t, err)
	return order, product
}

func status(s string) *string { return &s }

func TestOrderWorkflowRejectsSkippingAhead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	order, _ := placeOrder(t, env, 1)

	_, err := env.orders.Update(ctx, managerPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusDelivered)})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := env.store.Orders.FindByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.OrderStatus)
	assert.Equal(t, order.UpdatedAt.Unix(), stored.UpdatedAt.Unix())
}

func TestOrderWorkflowShipDeliverMarksCODPaid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	order, _ := placeOrder(t, env, 1)

	shipped, err := env.orders.Update(ctx, managerPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusShipped)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, shipped.OrderStatus)
	assert.Equal(t, models.PaymentStatusPending, shipped.PaymentStatus)
	assert.Equal(t, order.ShippingAddress, shipped.ShippingAddress)
	assert.Equal(t, order.Total, shipped.Total)
	assert.False(t, shipped.UpdatedAt.Before(order.UpdatedAt))

	again, err := env.orders.Update(ctx, managerPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusShipped)})
	require.NoError(t, err, "setting the current status again is a no-op")
	assert.Equal(t, models.OrderStatusShipped, again.OrderStatus)

	delivered, err := env.orders.Update(ctx, adminPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusDelivered)})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, delivered.PaymentStatus)

	_, err = env.orders.Update(ctx, adminPrincipal, order.ID.Hex(), models.UpdateOrderRequest{PaymentStatus: status(models.PaymentStatusPending)})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderCancelReleasesAndRestoreReserves(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	order, product := placeOrder(t, env, 4)
	assert.Equal(t, 6, env.stock(t, product.ID.Hex()))

	_, err := env.orders.Cancel(ctx, otherPrincipal, order.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := env.orders.Cancel(ctx, buyerPrincipal, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, 10, env.stock(t, product.ID.Hex()))

	_, err = env.orders.Update(ctx, managerPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusPending)})
	assert.ErrorIs(t, err, ErrForbidden)

	restored, err := env.orders.Update(ctx, adminPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, restored.OrderStatus)
	assert.Equal(t, 6, env.stock(t, product.ID.Hex()))
}

func TestOrderRestoreFailsWithoutStock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	order, product := placeOrder(t, env, 4)

	_, err := env.orders.Cancel(ctx, buyerPrincipal, order.ID.Hex())
	require.NoError(t, err)
	_, err = env.store.Products.Update(ctx, product.ID.Hex(), models.Fields{"stock": 1})
	require.NoError(t, err)

	_, err = env.orders.Update(ctx, adminPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusPending)})
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)

	stored, _ := env.store.Orders.FindByID(ctx, order.ID.Hex())
	assert.Equal(t, models.OrderStatusCancelled, stored.OrderStatus)
	assert.Equal(t, 1, env.stock(t, product.ID.Hex()))
}

func TestOrderCancelOnlyWhilePending(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	order, _ := placeOrder(t, env, 1)

	_, err := env.orders.Update(ctx, managerPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusShipped)})
	require.NoError(t, err)

	_, err = env.orders.Cancel(ctx, buyerPrincipal, order.ID.Hex())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderAccessScoping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	order, _ := placeOrder(t, env, 1)

	_, err := env.orders.Get(ctx, otherPrincipal, order.ID.Hex())
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.orders.Get(ctx, buyerPrincipal, order.ID.Hex())
	assert.NoError(t, err)
	_, err = env.orders.Get(ctx, managerPrincipal, order.ID.Hex())
	assert.NoError(t, err)

	mine, total, err := env.orders.List(ctx, otherPrincipal, models.OrderFilter{Email: "buyer@example.com"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mine)

	all, total, err := env.orders.List(ctx, managerPrincipal, models.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, all, 1)

	_, err = env.orders.Update(ctx, buyerPrincipal, order.ID.Hex(), models.UpdateOrderRequest{OrderStatus: status(models.OrderStatusShipped)})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.ErrorIs(t, env.orders.Delete(ctx, managerPrincipal, order.ID.Hex()), ErrForbidden)
	require.NoError(t, env.orders.Delete(ctx, adminPrincipal, order.ID.Hex()))
	_, err = env.orders.Get(ctx, adminPrincipal, order.ID.Hex())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCheckTransitionTable(t *testing.T) {
	tests := []struct {
		from, to, role string
		owner          bool
		want           error
	}{
		{models.OrderStatusPending, models.OrderStatusShipped, models.RoleManager, false, nil},
		{models.OrderStatusPending, models.OrderStatusShipped, models.RoleUser, true, ErrForbidden},
		{models.OrderStatusPending, models.OrderStatusCancelled, models.RoleUser, true, nil},
		{models.OrderStatusPending, models.OrderStatusCancelled, models.RoleUser, false, ErrForbidden},
		{models.OrderStatusShipped, models.OrderStatusDelivered, models.RoleAdmin, false, nil},
		{models.OrderStatusShipped, models.OrderStatusCancelled, models.RoleAdmin, false, ErrInvalidTransition},
		{models.OrderStatusDelivered, models.OrderStatusPending, models.RoleAdmin, false, ErrInvalidTransition},
		{models.OrderStatusCancelled, models.OrderStatusPending, models.RoleAdmin, false, nil},
		{models.OrderStatusCancelled, models.OrderStatusPending, models.RoleManager, false, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to+"/"+tt.role, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.role, tt.owner)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
