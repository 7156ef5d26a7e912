package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"dstore-svc/models"
	"dstore-svc/payment"
	"dstore-svc/store"
)

func newCheckoutFixture(t *testing.T, fp *fakeProvider) (*CheckoutService, *fakeCartStore, *fakeProductStore) {
	t.Helper()
	carts := newFakeCartStore()
	products := newFakeProductStore()
	catalog := NewCatalog(products, nil, zap.NewNop())

	var provider payment.Provider
	if fp != nil {
		provider = fp
	}
	svc := NewCheckoutService(carts, catalog, provider, zap.NewNop())
	return svc, carts, products
}

func TestReviewRepricesFromCatalog(t *testing.T) {
	svc, carts, products := newCheckoutFixture(t, nil)
	userID := primitive.NewObjectID()

	phone := seedProduct(t, products, 100, 10)
	cart, err := carts.EnsureActive(context.Background(), userID)
	require.NoError(t, err)

	// The caller claims a price of 1; the catalog says 100.
	req := models.CheckoutReviewRequest{
		CartID: cart.ID.Hex(),
		Groups: []models.OrderGroupRequest{
			{
				Items: []models.ClaimedItem{
					{ProductID: phone.ID.Hex(), Price: 1, Quantity: 2},
				},
			},
		},
	}

	review, err := svc.Review(context.Background(), userID.Hex(), req)
	require.NoError(t, err)
	require.Len(t, review.Groups, 1)

	assert.Equal(t, 200.0, review.Groups[0].PriceRaw)
	assert.Equal(t, 100.0, review.Groups[0].Items[0].Price)
	assert.Equal(t, 200.0, review.Summary.TotalPrice)
	assert.Equal(t, 200.0, review.Summary.TotalCheckout)
}

func TestReviewDropsUnresolvableLines(t *testing.T) {
	svc, carts, products := newCheckoutFixture(t, nil)
	userID := primitive.NewObjectID()

	phone := seedProduct(t, products, 50, 10)
	cart, err := carts.EnsureActive(context.Background(), userID)
	require.NoError(t, err)

	req := models.CheckoutReviewRequest{
		CartID: cart.ID.Hex(),
		Groups: []models.OrderGroupRequest{
			{
				Items: []models.ClaimedItem{
					{ProductID: phone.ID.Hex(), Quantity: 1},
					{ProductID: primitive.NewObjectID().Hex(), Quantity: 3},
				},
			},
		},
	}

	review, err := svc.Review(context.Background(), userID.Hex(), req)
	require.NoError(t, err)
	require.Len(t, review.Groups[0].Items, 1)
	assert.Equal(t, 50.0, review.Summary.TotalCheckout)
}

func TestReviewEmptyGroup(t *testing.T) {
	svc, carts, _ := newCheckoutFixture(t, nil)
	userID := primitive.NewObjectID()

	cart, err := carts.EnsureActive(context.Background(), userID)
	require.NoError(t, err)

	// Every line is unresolvable, so the group collapses to nothing.
	req := models.CheckoutReviewRequest{
		CartID: cart.ID.Hex(),
		Groups: []models.OrderGroupRequest{
			{
				Items: []models.ClaimedItem{
					{ProductID: primitive.NewObjectID().Hex(), Quantity: 1},
				},
			},
		},
	}

	_, err = svc.Review(context.Background(), userID.Hex(), req)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestReviewRejectsForeignCart(t *testing.T) {
	svc, carts, products := newCheckoutFixture(t, nil)
	userID := primitive.NewObjectID()

	phone := seedProduct(t, products, 50, 10)
	_, err := carts.EnsureActive(context.Background(), userID)
	require.NoError(t, err)

	req := models.CheckoutReviewRequest{
		CartID: primitive.NewObjectID().Hex(),
		Groups: []models.OrderGroupRequest{
			{Items: []models.ClaimedItem{{ProductID: phone.ID.Hex(), Quantity: 1}}},
		},
	}

	_, err = svc.Review(context.Background(), userID.Hex(), req)
	assert.ErrorIs(t, err, store.ErrCartNotFound)
}

func TestCapturePaymentOrder(t *testing.T) {
	provider := &fakeProvider{
		capture: &models.CaptureResult{
			OrderID:   "PP-1",
			CaptureID: "CAP-1",
			Status:    models.PaymentStatusCompleted,
			Value:     200,
		},
	}
	svc, _, _ := newCheckoutFixture(t, provider)

	result, err := svc.CapturePaymentOrder(context.Background(), "PP-1")
	require.NoError(t, err)
	assert.Equal(t, "CAP-1", result.CaptureID)
}

func TestCaptureNotCompleted(t *testing.T) {
	provider := &fakeProvider{
		capture: &models.CaptureResult{
			OrderID: "PP-2",
			Status:  models.PaymentStatusPending,
		},
	}
	svc, _, _ := newCheckoutFixture(t, provider)

	_, err := svc.CapturePaymentOrder(context.Background(), "PP-2")
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
}

func TestPaymentUnavailableWithoutProvider(t *testing.T) {
	svc, _, _ := newCheckoutFixture(t, nil)

	_, err := svc.CreatePaymentOrder(context.Background(), 100)
	assert.ErrorIs(t, err, ErrPaymentUnavailable)

	_, err = svc.CapturePaymentOrder(context.Background(), "PP-3")
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
}
