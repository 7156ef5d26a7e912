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

func newCartFixture(t *testing.T) (*CartService, *fakeCartStore, *fakeProductStore) {
	t.Helper()
	carts := newFakeCartStore()
	products := newFakeProductStore()
	catalog := NewCatalog(products, nil, zap.NewNop())
	return NewCartService(carts, catalog, zap.NewNop()), carts, products
}

func seedProduct(t *testing.T, products *fakeProductStore, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  "iPhone 15",
		Price: price,
		Stock: stock,
		Type:  models.ProductTypePhone,
	}
	require.NoError(t, products.Create(context.Background(), product))
	return product
}

func TestAddItemKeepsCountInSync(t *testing.T) {
	svc, _, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 10)
	watch := seedProduct(t, products, 399, 5)

	view, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CountProduct)

	view, err = svc.AddItem(context.Background(), userID, watch.ID.Hex(), 3)
	require.NoError(t, err)
	assert.Equal(t, 5, view.CountProduct)

	// Adding the same product again increments the existing line.
	view, err = svc.AddItem(context.Background(), userID, phone.ID.Hex(), 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 6, view.CountProduct)

	total := 0
	for _, item := range view.Items {
		total += item.Quantity
	}
	assert.Equal(t, view.CountProduct, total)
}

func TestAddItemRejectsQuantityOverStock(t *testing.T) {
	svc, carts, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 3)

	_, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 4)
	assert.ErrorIs(t, err, ErrStockExceeded)

	// Nothing was written.
	_, err = carts.GetActive(context.Background(), mustObjectID(t, userID))
	assert.ErrorIs(t, err, store.ErrCartNotFound)
}

func TestAddItemStockGateSeesLiveStock(t *testing.T) {
	svc, _, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 5)

	// Resolve once so any cached copy would hold the old stock.
	catalog := NewCatalog(products, nil, zap.NewNop())
	_, err := catalog.FindByID(context.Background(), phone.ID.Hex())
	require.NoError(t, err)

	// Stock drops to 2 after the read; the gate must see the new value.
	_, err = products.UpdateStock(context.Background(), phone.ID, 2)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), userID, phone.ID.Hex(), 3)
	assert.ErrorIs(t, err, ErrStockExceeded)

	view, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CountProduct)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	_, err := svc.AddItem(context.Background(), userID, primitive.NewObjectID().Hex(), 1)
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func TestSetItemQuantityZeroRemovesLine(t *testing.T) {
	svc, _, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 10)
	watch := seedProduct(t, products, 399, 5)

	_, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 2)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, watch.ID.Hex(), 1)
	require.NoError(t, err)

	view, err := svc.SetItemQuantity(context.Background(), userID, phone.ID.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, watch.ID, view.Items[0].ProductID)
	assert.Equal(t, 1, view.CountProduct)
}

func TestSetItemQuantityMissingLine(t *testing.T) {
	svc, _, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 10)
	_, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 1)
	require.NoError(t, err)

	_, err = svc.SetItemQuantity(context.Background(), userID, primitive.NewObjectID().Hex(), 2)
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, _, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 10)
	_, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 2)
	require.NoError(t, err)

	absent := primitive.NewObjectID().Hex()
	view, err := svc.RemoveItem(context.Background(), userID, absent)
	require.NoError(t, err)
	assert.Equal(t, 2, view.CountProduct)
	assert.Len(t, view.Items, 1)

	view, err = svc.RemoveItem(context.Background(), userID, phone.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 0, view.CountProduct)
	assert.Empty(t, view.Items)
}

func TestGetCartResolvesCatalogSnapshots(t *testing.T) {
	svc, carts, products := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	phone := seedProduct(t, products, 999, 10)
	_, err := svc.AddItem(context.Background(), userID, phone.ID.Hex(), 2)
	require.NoError(t, err)

	// A line whose product vanished is still listed, just without the
	// catalog snapshot.
	ghost := models.CartItem{ProductID: primitive.NewObjectID(), Quantity: 1}
	require.NoError(t, carts.AddItem(context.Background(), mustObjectID(t, userID), ghost))

	view, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, 3, view.CountProduct)

	assert.Equal(t, "iPhone 15", view.Items[0].Name)
	assert.Equal(t, 999.0, view.Items[0].Price)
	assert.Empty(t, view.Items[1].Name)
}

func TestEnsureActiveCartIsStable(t *testing.T) {
	svc, _, _ := newCartFixture(t)
	userID := primitive.NewObjectID().Hex()

	first, err := svc.EnsureActiveCart(context.Background(), userID)
	require.NoError(t, err)
	second, err := svc.EnsureActiveCart(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.CartStateActive, second.State)
	assert.Equal(t, 0, second.CountProduct)
}

func TestCartRejectsMalformedIDs(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	_, err := svc.GetCart(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.AddItem(context.Background(), primitive.NewObjectID().Hex(), "nope", 1)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func mustObjectID(t *testing.T, id string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)
	return oid
}
