package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dstore-svc/models"
	"dstore-svc/store"
)

// fakeCartStore mirrors the store contract: every mutation updates the
// lines and the derived count together, under one lock.
type fakeCartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart // keyed by user id, active cart only
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (f *fakeCartStore) EnsureActive(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cart, ok := f.carts[userID]; ok {
		return copyCart(cart), nil
	}
	cart := &models.Cart{
		ID:     primitive.NewObjectID(),
		State:  models.CartStateActive,
		Items:  []models.CartItem{},
		UserID: userID,
	}
	f.carts[userID] = cart
	return copyCart(cart), nil
}

func (f *fakeCartStore) GetActive(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return nil, store.ErrCartNotFound
	}
	return copyCart(cart), nil
}

func (f *fakeCartStore) AddItem(_ context.Context, userID primitive.ObjectID, item models.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		cart = &models.Cart{
			ID:     primitive.NewObjectID(),
			State:  models.CartStateActive,
			Items:  []models.CartItem{},
			UserID: userID,
		}
		f.carts[userID] = cart
	}
	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, item)
	}
	recount(cart)
	return nil
}

func (f *fakeCartStore) SetItemQuantity(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return store.ErrCartNotFound
	}
	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrItemNotFound
	}
	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}
	recount(cart)
	return nil
}

func (f *fakeCartStore) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return store.ErrCartNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}
	recount(cart)
	return nil
}

func (f *fakeCartStore) SetState(_ context.Context, userID primitive.ObjectID, from, to models.CartState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok || cart.State != from {
		return store.ErrCartNotFound
	}
	cart.State = to
	if to != models.CartStateActive {
		delete(f.carts, userID)
	}
	return nil
}

func recount(cart *models.Cart) {
	total := 0
	for _, item := range cart.Items {
		total += item.Quantity
	}
	cart.CountProduct = total
}

func copyCart(cart *models.Cart) *models.Cart {
	dup := *cart
	dup.Items = append([]models.CartItem(nil), cart.Items...)
	return &dup
}

type fakeProductStore struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[primitive.ObjectID]*models.Product)}
}

func (f *fakeProductStore) Create(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	dup := *product
	f.products[product.ID] = &dup
	return nil
}

func (f *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	dup := *product
	return &dup, nil
}

func (f *fakeProductStore) List(_ context.Context, _ models.ListProductsQuery) (*models.ProductListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &models.ProductListResult{TotalPages: 1}
	for _, p := range f.products {
		result.Products = append(result.Products, *p)
	}
	result.Count = int64(len(result.Products))
	return result, nil
}

func (f *fakeProductStore) Search(ctx context.Context, q models.ListProductsQuery) (*models.ProductListResult, error) {
	return f.List(ctx, q)
}

func (f *fakeProductStore) Update(_ context.Context, id primitive.ObjectID, req models.UpdateProductRequest) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	dup := *product
	return &dup, nil
}

func (f *fakeProductStore) UpdateStock(_ context.Context, id primitive.ObjectID, stock int) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	product.Stock = stock
	dup := *product
	return &dup, nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders []*models.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{}
}

func (f *fakeOrderStore) Insert(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.orders {
		if existing.Payment.PayPalCaptureID == order.Payment.PayPalCaptureID {
			return store.ErrDuplicateCapture
		}
	}
	order.ID = primitive.NewObjectID()
	dup := *order
	f.orders = append(f.orders, &dup)
	return nil
}

func (f *fakeOrderStore) ListByUserAndStatus(_ context.Context, userID primitive.ObjectID, status models.OrderStatus) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID == userID && order.Status == status {
			out = append(out, *order)
		}
	}
	return out, nil
}

// fakeProvider scripts the payment provider's capture outcome.
type fakeProvider struct {
	createdID  string
	capture    *models.CaptureResult
	captureErr error
}

func (f *fakeProvider) CreateOrder(_ context.Context, _ float64, _ string) (string, error) {
	return f.createdID, nil
}

func (f *fakeProvider) CaptureOrder(_ context.Context, _ string) (*models.CaptureResult, error) {
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.capture, nil
}
