package service

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"dstore-svc/kafka"
	"dstore-svc/models"
	"dstore-svc/store"
)

// OrderService converts completed captures into persisted orders. The
// order document freezes every monetary and item field at write time so
// later catalog edits cannot rewrite history.
type OrderService struct {
	orders   store.OrderStore
	carts    store.CartStore
	producer sarama.SyncProducer // nil disables event publishing
	topic    string
	logger   *zap.Logger
}

func NewOrderService(orders store.OrderStore, carts store.CartStore, producer sarama.SyncProducer, topic string, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// PlaceOrder writes exactly one confirmed order for a completed capture.
// The unique index on the capture id makes a duplicate call surface
// ErrDuplicateCapture instead of a second order. After a successful
// write the user's active cart is transitioned to completed.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req models.PlaceOrderRequest) (*models.Order, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}

	if req.Capture.Status != models.PaymentStatusCompleted {
		return nil, ErrPaymentNotCompleted
	}

	items := make([]models.OrderItem, 0)
	for _, group := range req.Groups {
		for _, line := range group.Items {
			pid, err := resolveObjectID(line.ProductID)
			if err != nil {
				return nil, err
			}
			items = append(items, models.OrderItem{
				ProductID: pid,
				Quantity:  line.Quantity,
				Price:     line.Price,
				Name:      line.Name,
				Thumb:     line.Thumb,
				Stock:     line.Stock,
			})
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	order := &models.Order{
		UserID: uid,
		Checkout: models.OrderCheckout{
			TotalPrice:         req.Checkout.TotalPrice,
			TotalApplyDiscount: req.Checkout.TotalApplyDiscount,
			FeeShip:            req.Checkout.FeeShip,
		},
		Shipping: req.Capture.Shipping,
		Payment: models.OrderPayment{
			PayPalOrderID:   req.Capture.OrderID,
			PayPalCaptureID: req.Capture.CaptureID,
			Status:          req.Capture.Status,
			Amount: models.PaymentAmount{
				CurrencyCode: req.Capture.CurrencyCode,
				Value:        req.Capture.Value,
			},
			PayerEmail: req.Capture.PayerEmail,
			PayerID:    req.Capture.PayerID,
		},
		Items:          items,
		TrackingNumber: models.NewTrackingNumber(),
		Status:         models.OrderStatusConfirmed,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order confirmed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID),
		zap.String("capture_id", order.Payment.PayPalCaptureID),
		zap.Float64("total_price", order.Checkout.TotalPrice),
	)

	// The purchase is done; retire the active cart.
	if err := s.carts.SetState(ctx, uid, models.CartStateActive, models.CartStateCompleted); err != nil {
		if !errors.Is(err, store.ErrCartNotFound) {
			s.logger.Error("Failed to complete cart after order", zap.Error(err))
		}
	}

	s.publishConfirmed(ctx, order)
	return order, nil
}

func (s *OrderService) publishConfirmed(ctx context.Context, order *models.Order) {
	if s.producer == nil {
		return
	}

	event := models.OrderEvent{
		OrderID:    order.ID.Hex(),
		UserID:     order.UserID.Hex(),
		CaptureID:  order.Payment.PayPalCaptureID,
		TotalPrice: order.Checkout.TotalPrice,
		Status:     order.Status,
		EventType:  "order_confirmed",
	}

	if err := kafka.PublishOrderEvent(ctx, s.producer, s.topic, event, s.logger); err != nil {
		// Don't fail the request, but log the error
		s.logger.Error("Failed to publish order_confirmed event", zap.Error(err))
	}
}

// ListConfirmed returns the user's confirmed orders, newest first.
func (s *OrderService) ListConfirmed(ctx context.Context, userID string) ([]models.Order, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByUserAndStatus(ctx, uid, models.OrderStatusConfirmed)
}
