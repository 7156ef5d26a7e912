package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"dstore-svc/models"
	"dstore-svc/store"
)

func newOrderFixture(t *testing.T) (*OrderService, *fakeOrderStore, *fakeCartStore) {
	t.Helper()
	orders := newFakeOrderStore()
	carts := newFakeCartStore()
	svc := NewOrderService(orders, carts, nil, "order_events", zap.NewNop())
	return svc, orders, carts
}

func completedPlaceOrderRequest(captureID string) models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		Capture: models.CaptureResult{
			OrderID:      "PP-1",
			CaptureID:    captureID,
			Status:       models.PaymentStatusCompleted,
			CurrencyCode: "USD",
			Value:        200,
		},
		Checkout: models.OrderCheckout{TotalPrice: 200, TotalApplyDiscount: 200},
		Groups: []models.ReviewedGroup{
			{
				Items: []models.ReviewedItem{
					{ProductID: primitive.NewObjectID().Hex(), Quantity: 2, Price: 100, Name: "iPhone 15"},
				},
			},
		},
	}
}

func TestPlaceOrderRequiresCompletedCapture(t *testing.T) {
	svc, orders, _ := newOrderFixture(t)
	userID := primitive.NewObjectID()

	req := completedPlaceOrderRequest("CAP-1")
	req.Capture.Status = models.PaymentStatusPending

	_, err := svc.PlaceOrder(context.Background(), userID.Hex(), req)
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
	assert.Empty(t, orders.orders)
}

func TestPlaceOrderWritesConfirmedOrder(t *testing.T) {
	svc, _, carts := newOrderFixture(t)
	userID := primitive.NewObjectID()

	_, err := carts.EnsureActive(context.Background(), userID)
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), userID.Hex(), completedPlaceOrderRequest("CAP-2"))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "CAP-2", order.Payment.PayPalCaptureID)
	assert.Equal(t, userID, order.UserID)
	assert.NotEmpty(t, order.TrackingNumber)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// The purchase retires the active cart.
	_, err = carts.GetActive(context.Background(), userID)
	assert.ErrorIs(t, err, store.ErrCartNotFound)

	listed, err := svc.ListConfirmed(context.Background(), userID.Hex())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestDuplicateCaptureWritesOneOrder(t *testing.T) {
	svc, orders, carts := newOrderFixture(t)
	userID := primitive.NewObjectID()

	_, err := carts.EnsureActive(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID.Hex(), completedPlaceOrderRequest("CAP-3"))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID.Hex(), completedPlaceOrderRequest("CAP-3"))
	assert.ErrorIs(t, err, store.ErrDuplicateCapture)
	assert.Len(t, orders.orders, 1)
}

func TestPlaceOrderWithoutItems(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	userID := primitive.NewObjectID()

	req := completedPlaceOrderRequest("CAP-4")
	req.Groups = []models.ReviewedGroup{{}}

	_, err := svc.PlaceOrder(context.Background(), userID.Hex(), req)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestPlaceOrderSucceedsWithoutActiveCart(t *testing.T) {
	svc, orders, _ := newOrderFixture(t)
	userID := primitive.NewObjectID()

	// No cart exists; the order still goes through.
	_, err := svc.PlaceOrder(context.Background(), userID.Hex(), completedPlaceOrderRequest("CAP-5"))
	require.NoError(t, err)
	assert.Len(t, orders.orders, 1)
}

// TestPurchaseFlow walks the whole path: cart, review, capture, order.
func TestPurchaseFlow(t *testing.T) {
	carts := newFakeCartStore()
	products := newFakeProductStore()
	ordersStore := newFakeOrderStore()
	catalog := NewCatalog(products, nil, zap.NewNop())

	cartSvc := NewCartService(carts, catalog, zap.NewNop())
	provider := &fakeProvider{
		createdID: "PP-9",
		capture: &models.CaptureResult{
			OrderID:      "PP-9",
			CaptureID:    "CAP-9",
			Status:       models.PaymentStatusCompleted,
			CurrencyCode: "USD",
			Value:        1998,
		},
	}
	checkoutSvc := NewCheckoutService(carts, catalog, provider, zap.NewNop())
	orderSvc := NewOrderService(ordersStore, carts, nil, "order_events", zap.NewNop())

	userID := primitive.NewObjectID().Hex()
	phone := seedProduct(t, products, 999, 10)

	view, err := cartSvc.AddItem(context.Background(), userID, phone.ID.Hex(), 2)
	require.NoError(t, err)

	review, err := checkoutSvc.Review(context.Background(), userID, models.CheckoutReviewRequest{
		CartID: view.ID.Hex(),
		Groups: []models.OrderGroupRequest{
			{Items: []models.ClaimedItem{{ProductID: phone.ID.Hex(), Quantity: 2}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1998.0, review.Summary.TotalCheckout)

	orderID, err := checkoutSvc.CreatePaymentOrder(context.Background(), review.Summary.TotalCheckout)
	require.NoError(t, err)

	capture, err := checkoutSvc.CapturePaymentOrder(context.Background(), orderID)
	require.NoError(t, err)

	order, err := orderSvc.PlaceOrder(context.Background(), userID, models.PlaceOrderRequest{
		Capture:  *capture,
		Checkout: models.OrderCheckout{TotalPrice: review.Summary.TotalPrice, TotalApplyDiscount: review.Summary.TotalCheckout},
		Groups:   review.Groups,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "CAP-9", order.Payment.PayPalCaptureID)
	assert.Equal(t, 1998.0, order.Checkout.TotalPrice)

	listed, err := orderSvc.ListConfirmed(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
