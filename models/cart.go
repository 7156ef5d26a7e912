package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartState string

const (
	CartStateActive    CartState = "active"
	CartStateCompleted CartState = "completed"
	CartStateFailed    CartState = "failed"
	CartStatePending   CartState = "pending"
)

type CartItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart holds one user's active shopping cart. CountProduct is derived:
// it always equals the sum of line quantities and is recomputed inside
// the same update that mutates the lines.
type Cart struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	State        CartState          `bson:"cart_state" json:"cart_state"`
	Items        []CartItem         `bson:"cart_products" json:"cart_products"`
	CountProduct int                `bson:"cart_count_product" json:"cart_count_product"`
	UserID       primitive.ObjectID `bson:"cart_userId" json:"cart_userId"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type AddToCartRequest struct {
	Product struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	} `json:"product" binding:"required"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

type RemoveCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// CartItemView is a cart line resolved against the catalog for display.
type CartItemView struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  int                `json:"quantity"`
	Name      string             `json:"product_name"`
	Price     float64            `json:"product_price"`
	Thumb     string             `json:"product_thumb"`
	Stock     int                `json:"product_quantity"`
}

type CartView struct {
	ID           primitive.ObjectID `json:"_id"`
	State        CartState          `json:"cart_state"`
	Items        []CartItemView     `json:"cart_products"`
	CountProduct int                `json:"cart_count_product"`
	UserID       primitive.ObjectID `json:"cart_userId"`
}
