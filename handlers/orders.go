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

// OrderWorkflow writes confirmed orders and lists order history.
type OrderWorkflow interface {
	PlaceOrder(ctx context.Context, userID string, req models.PlaceOrderRequest) (*models.Order, error)
	ListConfirmed(ctx context.Context, userID string) ([]models.Order, error)
}

type OrderHandler struct {
	orders OrderWorkflow
	logger *zap.Logger
}

func NewOrderHandler(orders OrderWorkflow, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "PlaceOrder")
	defer span.End()

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Capture.OrderID == "" {
		req.Capture.OrderID = c.Param("orderId")
	}

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("payment.capture_id", req.Capture.CaptureID),
	)

	order, err := h.orders.PlaceOrder(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to place order",
			zap.String("user_id", userID),
			zap.String("capture_id", req.Capture.CaptureID),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	middleware.RecordOrderConfirmed()
	span.SetAttributes(attribute.String("order.id", order.ID.Hex()))
	respondCreated(c, order, "Order placed successfully")
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "ListOrders")
	defer span.End()

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(attribute.String("user.id", userID))

	orders, err := h.orders.ListConfirmed(ctx, userID)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	respondOK(c, orders, "")
}
