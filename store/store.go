package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"dstore-svc/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product already exists")
	ErrCartNotFound     = errors.New("cart not found")
	ErrItemNotFound     = errors.New("item not found in cart")
	ErrOrderNotFound    = errors.New("order not found")
	// ErrDuplicateCapture means an order for this provider capture id was
	// already written; the unique index makes order creation idempotent.
	ErrDuplicateCapture = errors.New("order already exists for capture")
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, q models.ListProductsQuery) (*models.ProductListResult, error)
	Search(ctx context.Context, q models.ListProductsQuery) (*models.ProductListResult, error)
	Update(ctx context.Context, id primitive.ObjectID, req models.UpdateProductRequest) (*models.Product, error)
	UpdateStock(ctx context.Context, id primitive.ObjectID, stock int) (*models.Product, error)
}

// CartStore mutations are single-document atomic: every line change and
// the derived count recompute happen in one update, so readers never see
// the count disagree with the lines.
type CartStore interface {
	EnsureActive(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	GetActive(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) error
	SetItemQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	SetState(ctx context.Context, userID primitive.ObjectID, from, to models.CartState) error
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	ListByUserAndStatus(ctx context.Context, userID primitive.ObjectID, status models.OrderStatus) ([]models.Order, error)
}
