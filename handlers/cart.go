package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"dstore-svc/middleware"
	"dstore-svc/models"
)

// CartWorkflow is the slice of the cart service the handler consumes.
type CartWorkflow interface {
	AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error)
	SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.CartView, error)
	GetCart(ctx context.Context, userID string) (*models.CartView, error)
}

type CartHandler struct {
	cart   CartWorkflow
	logger *zap.Logger
}

func NewCartHandler(cart CartWorkflow, logger *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "AddToCart")
	defer span.End()

	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("product.id", req.Product.ProductID),
	)

	view, err := h.cart.AddItem(ctx, userID, req.Product.ProductID, req.Product.Quantity)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	respondOK(c, view, "Added to cart")
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "UpdateCartItem")
	defer span.End()

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("product.id", req.ProductID),
		attribute.Int("quantity", *req.Quantity),
	)

	view, err := h.cart.SetItemQuantity(ctx, userID, req.ProductID, *req.Quantity)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	respondOK(c, view, "Cart updated")
}

func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "RemoveCartItem")
	defer span.End()

	var req models.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("product.id", req.ProductID),
	)

	view, err := h.cart.RemoveItem(ctx, userID, req.ProductID)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	respondOK(c, view, "Removed from cart")
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "GetCart")
	defer span.End()

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(attribute.String("user.id", userID))

	view, err := h.cart.GetCart(ctx, userID)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}
	respondOK(c, view, "")
}
