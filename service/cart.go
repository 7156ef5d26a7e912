package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dstore-svc/models"
	"dstore-svc/store"
)

// CartService owns the active-cart workflow. All mutations keep the
// derived line count in sync with the lines; the store guarantees the
// two change atomically.
type CartService struct {
	carts   store.CartStore
	catalog *Catalog
	logger  *zap.Logger
}

func NewCartService(carts store.CartStore, catalog *Catalog, logger *zap.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		logger:  logger,
	}
}

// EnsureActiveCart returns the user's active cart, creating an empty one
// if none exists. Safe under concurrent calls for the same user.
func (s *CartService) EnsureActiveCart(ctx context.Context, userID string) (*models.Cart, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}
	return s.carts.EnsureActive(ctx, uid)
}

// AddItem checks the product and its stock, then increments the existing
// line or appends a new one.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}

	// Live read: the stock gate must not trust a cached quantity.
	product, err := s.catalog.FindByIDFresh(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, ErrStockExceeded
	}

	item := models.CartItem{ProductID: product.ID, Quantity: quantity}
	if err := s.carts.AddItem(ctx, uid, item); err != nil {
		return nil, err
	}

	s.logger.Info("Product added to cart",
		zap.String("user_id", userID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return s.GetCart(ctx, userID)
}

// SetItemQuantity sets an absolute quantity; zero or less removes the
// line. Setting a line that is not in the cart is an error.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := resolveObjectID(productID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.SetItemQuantity(ctx, uid, pid, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem is idempotent: removing a line that is not present just
// leaves the cart (and its count) as is.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := resolveObjectID(productID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.RemoveItem(ctx, uid, pid); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// GetCart returns the active cart with lines resolved to catalog display
// snapshots. Lines whose product no longer resolves are shown bare.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.CartView, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetActive(ctx, uid)
	if err != nil {
		return nil, err
	}

	view := &models.CartView{
		ID:           cart.ID,
		State:        cart.State,
		Items:        make([]models.CartItemView, 0, len(cart.Items)),
		CountProduct: cart.CountProduct,
		UserID:       cart.UserID,
	}

	for _, line := range cart.Items {
		itemView := models.CartItemView{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		product, err := s.catalog.FindByID(ctx, line.ProductID.Hex())
		if err != nil {
			if !errors.Is(err, store.ErrProductNotFound) {
				return nil, err
			}
			s.logger.Warn("Cart line references missing product",
				zap.String("product_id", line.ProductID.Hex()))
		} else {
			itemView.Name = product.Name
			itemView.Price = product.Price
			itemView.Thumb = product.Thumb
			itemView.Stock = product.Stock
		}
		view.Items = append(view.Items, itemView)
	}

	return view, nil
}
