package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/plutov/paypal/v4"
	"go.uber.org/zap"

	"dstore-svc/circuitbreaker"
	"dstore-svc/models"
)

// Provider is the payment capture collaborator. It is constructed once in
// main and injected into the checkout workflow; nothing in this package
// is process-global.
type Provider interface {
	CreateOrder(ctx context.Context, amount float64, currency string) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*models.CaptureResult, error)
}

type PayPalProvider struct {
	client  *paypal.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewPayPalProvider(clientID, secret string, live bool, logger *zap.Logger) (*PayPalProvider, error) {
	apiBase := paypal.APIBaseSandBox
	if live {
		apiBase = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("failed to create PayPal client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("failed to get PayPal access token: %w", err)
	}

	return &PayPalProvider{
		client:  client,
		breaker: circuitbreaker.New(5, 30*time.Second),
		logger:  logger,
	}, nil
}

func (p *PayPalProvider) CreateOrder(ctx context.Context, amount float64, currency string) (string, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: currency,
				Value:    formatAmount(amount),
			},
		},
	}

	var order *paypal.Order
	err := p.breaker.Execute(ctx, func() error {
		var callErr error
		order, callErr = p.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}

	p.logger.Info("PayPal order created",
		zap.String("paypal_order_id", order.ID),
		zap.Float64("amount", amount),
		zap.String("currency", currency),
	)
	return order.ID, nil
}

func (p *PayPalProvider) CaptureOrder(ctx context.Context, orderID string) (*models.CaptureResult, error) {
	var resp *paypal.CaptureOrderResponse
	err := p.breaker.Execute(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	result := &models.CaptureResult{
		OrderID: resp.ID,
		Status:  models.PaymentStatus(resp.Status),
	}

	if resp.Payer != nil {
		result.PayerEmail = resp.Payer.EmailAddress
		result.PayerID = resp.Payer.PayerID
	}

	if len(resp.PurchaseUnits) > 0 {
		unit := resp.PurchaseUnits[0]
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			capture := unit.Payments.Captures[0]
			result.CaptureID = capture.ID
			if capture.Amount != nil {
				result.CurrencyCode = capture.Amount.Currency
				result.Value = parseAmount(capture.Amount.Value)
			}
		}
		// paypal v4's CapturedPurchaseUnitShipping is a value struct that
		// only carries an address; the capture response exposes no shipping
		// name, so FullName cannot be populated here.
		if unit.Shipping.Address != (paypal.ShippingDetailAddressPortable{}) {
			result.Shipping.AddressLine1 = unit.Shipping.Address.AddressLine1
			result.Shipping.City = unit.Shipping.Address.AdminArea2
			result.Shipping.State = unit.Shipping.Address.AdminArea1
			result.Shipping.PostalCode = unit.Shipping.Address.PostalCode
			result.Shipping.Country = unit.Shipping.Address.CountryCode
		}
	}

	p.logger.Info("PayPal order captured",
		zap.String("paypal_order_id", result.OrderID),
		zap.String("capture_id", result.CaptureID),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func parseAmount(value string) float64 {
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return amount
}
