package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusDelivered OrderStatus = "delivered"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

const defaultTrackingNumber = "#0000118052022"

type OrderCheckout struct {
	TotalPrice         float64 `bson:"totalPrice" json:"totalPrice"`
	TotalApplyDiscount float64 `bson:"totalApplyDiscount" json:"totalApplyDiscount"`
	FeeShip            float64 `bson:"feeShip" json:"feeShip"`
}

type OrderShipping struct {
	FullName     string `bson:"fullName" json:"fullName"`
	AddressLine1 string `bson:"addressLine1" json:"addressLine1"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	PostalCode   string `bson:"postalCode" json:"postalCode"`
	Country      string `bson:"country" json:"country"`
}

type PaymentAmount struct {
	CurrencyCode string  `bson:"currencyCode" json:"currencyCode"`
	Value        float64 `bson:"value" json:"value"`
}

type OrderPayment struct {
	PayPalOrderID   string        `bson:"paypalOrderId" json:"paypalOrderId"`
	PayPalCaptureID string        `bson:"paypalCaptureId" json:"paypalCaptureId"`
	Status          PaymentStatus `bson:"status" json:"status"`
	Amount          PaymentAmount `bson:"amount" json:"amount"`
	PayerEmail      string        `bson:"payerEmail" json:"payerEmail"`
	PayerID         string        `bson:"payerId" json:"payerId"`
}

// OrderItem is a frozen snapshot of a purchased line. Later catalog edits
// never change order history.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Name      string             `bson:"name" json:"name"`
	Thumb     string             `bson:"thumb" json:"thumb"`
	Stock     int                `bson:"stock" json:"stock"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         primitive.ObjectID `bson:"order_userId" json:"order_userId"`
	Checkout       OrderCheckout      `bson:"order_checkout" json:"order_checkout"`
	Shipping       OrderShipping      `bson:"order_shipping" json:"order_shipping"`
	Payment        OrderPayment       `bson:"order_payment" json:"order_payment"`
	Items          []OrderItem        `bson:"order_products" json:"order_products"`
	TrackingNumber string             `bson:"order_trackingNumber" json:"order_trackingNumber"`
	Status         OrderStatus        `bson:"order_status" json:"order_status"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewTrackingNumber returns the storefront's placeholder tracking number.
func NewTrackingNumber() string { return defaultTrackingNumber }

// CaptureResult is the payment provider's capture outcome, normalized by
// the payment adapter.
type CaptureResult struct {
	OrderID      string        `json:"paypalOrderId"`
	CaptureID    string        `json:"paypalCaptureId"`
	Status       PaymentStatus `json:"status"`
	CurrencyCode string        `json:"currencyCode"`
	Value        float64       `json:"value"`
	PayerEmail   string        `json:"payerEmail"`
	PayerID      string        `json:"payerId"`
	Shipping     OrderShipping `json:"shipping"`
}

// PlaceOrderRequest converts a capture plus the reviewed summary into a
// persisted order.
type PlaceOrderRequest struct {
	Capture  CaptureResult   `json:"capture" binding:"required"`
	Checkout OrderCheckout   `json:"order_checkout" binding:"required"`
	Groups   []ReviewedGroup `json:"order_products" binding:"required,min=1"`
}

// OrderEvent is published to Kafka after an order is written.
type OrderEvent struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	CaptureID  string      `json:"capture_id"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `json:"status"`
	EventType  string      `json:"event_type"` // order_confirmed
}
