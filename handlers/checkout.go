package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"dstore-svc/middleware"
	"dstore-svc/models"
	"dstore-svc/service"
)

// CheckoutWorkflow re-prices carts and talks to the payment provider.
type CheckoutWorkflow interface {
	Review(ctx context.Context, userID string, req models.CheckoutReviewRequest) (*models.CheckoutReview, error)
	CreatePaymentOrder(ctx context.Context, total float64) (string, error)
	CapturePaymentOrder(ctx context.Context, providerOrderID string) (*models.CaptureResult, error)
}

type CheckoutHandler struct {
	checkout CheckoutWorkflow
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout CheckoutWorkflow, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

func (h *CheckoutHandler) Review(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "CheckoutReview")
	defer span.End()

	var req models.CheckoutReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("cart.id", req.CartID),
	)

	review, err := h.checkout.Review(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	span.SetAttributes(attribute.Float64("checkout.total", review.Summary.TotalCheckout))
	respondOK(c, review, "")
}

func (h *CheckoutHandler) CreatePayPalOrder(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "CreatePayPalOrder")
	defer span.End()

	var req models.CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	span.SetAttributes(attribute.Float64("payment.total", req.TotalCheckout))

	orderID, err := h.checkout.CreatePaymentOrder(ctx, req.TotalCheckout)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create payment order", zap.Error(err))
		respondError(c, err)
		return
	}

	h.logger.Info("Payment order created", zap.String("paypal_order_id", orderID))
	respondCreated(c, gin.H{"paypalOrderId": orderID}, "Payment order created")
}

func (h *CheckoutHandler) CapturePayPalOrder(c *gin.Context) {
	ctx, span := otel.Tracer(tracerName).Start(c.Request.Context(), "CapturePayPalOrder")
	defer span.End()

	orderID := c.Param("orderId")
	span.SetAttributes(attribute.String("paypal.order_id", orderID))

	result, err := h.checkout.CapturePaymentOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, service.ErrPaymentNotCompleted) {
			middleware.RecordPaymentCapture(string(models.PaymentStatusFailed))
		}
		h.logger.Error("Failed to capture payment order",
			zap.String("paypal_order_id", orderID), zap.Error(err))
		respondError(c, err)
		return
	}

	middleware.RecordPaymentCapture(string(result.Status))
	h.logger.Info("Payment captured",
		zap.String("paypal_order_id", orderID),
		zap.String("capture_id", result.CaptureID),
	)
	respondOK(c, result, "Payment captured")
}
