package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dstore-svc/models"
	"dstore-svc/payment"
	"dstore-svc/store"
)

const checkoutCurrency = "USD"

// CheckoutService re-prices carts against the catalog and drives the
// payment provider. Review output is advisory: nothing is reserved, and
// stock or prices may change between review and capture.
type CheckoutService struct {
	carts    store.CartStore
	catalog  *Catalog
	provider payment.Provider // nil when no provider is configured
	logger   *zap.Logger
}

func NewCheckoutService(carts store.CartStore, catalog *Catalog, provider payment.Provider, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		catalog:  catalog,
		provider: provider,
		logger:   logger,
	}
}

// Review recomputes every line's contribution from the catalog price.
// Caller-claimed prices are discarded; they exist only so the client can
// bucket lines into discount groups.
func (s *CheckoutService) Review(ctx context.Context, userID string, req models.CheckoutReviewRequest) (*models.CheckoutReview, error) {
	uid, err := resolveObjectID(userID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetActive(ctx, uid)
	if err != nil {
		return nil, err
	}
	if cart.ID.Hex() != req.CartID {
		return nil, store.ErrCartNotFound
	}

	review := &models.CheckoutReview{
		Groups: make([]models.ReviewedGroup, 0, len(req.Groups)),
	}

	for _, group := range req.Groups {
		reviewed := models.ReviewedGroup{
			Discounts: group.Discounts,
			Items:     make([]models.ReviewedItem, 0, len(group.Items)),
		}

		for _, claimed := range group.Items {
			product, err := s.catalog.FindByID(ctx, claimed.ProductID)
			if err != nil {
				if errors.Is(err, store.ErrProductNotFound) || errors.Is(err, ErrInvalidID) {
					// Lines whose product no longer resolves are dropped.
					s.logger.Warn("Dropping unresolvable checkout line",
						zap.String("product_id", claimed.ProductID))
					continue
				}
				return nil, err
			}

			reviewed.Items = append(reviewed.Items, models.ReviewedItem{
				ProductID: claimed.ProductID,
				Quantity:  claimed.Quantity,
				Price:     product.Price,
				Name:      product.Name,
				Thumb:     product.Thumb,
				Stock:     product.Stock,
			})
			reviewed.PriceRaw += float64(claimed.Quantity) * product.Price
		}

		if len(reviewed.Items) == 0 {
			return nil, ErrEmptyOrder
		}

		// Discounts are recorded, not applied; pricing rules live in an
		// external collaborator.
		reviewed.PriceApplyDiscount = reviewed.PriceRaw

		review.Summary.TotalPrice += reviewed.PriceRaw
		review.Summary.TotalCheckout += reviewed.PriceApplyDiscount
		review.Groups = append(review.Groups, reviewed)
	}

	return review, nil
}

// CreatePaymentOrder opens a provider order for the reviewed total.
func (s *CheckoutService) CreatePaymentOrder(ctx context.Context, total float64) (string, error) {
	if s.provider == nil {
		return "", ErrPaymentUnavailable
	}
	return s.provider.CreateOrder(ctx, total, checkoutCurrency)
}

// CapturePaymentOrder captures a previously created provider order.
// Anything other than COMPLETED is a failed capture.
func (s *CheckoutService) CapturePaymentOrder(ctx context.Context, providerOrderID string) (*models.CaptureResult, error) {
	if s.provider == nil {
		return nil, ErrPaymentUnavailable
	}

	result, err := s.provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	if result.Status != models.PaymentStatusCompleted {
		s.logger.Warn("Capture did not complete",
			zap.String("paypal_order_id", providerOrderID),
			zap.String("status", string(result.Status)),
		)
		return nil, ErrPaymentNotCompleted
	}
	return result, nil
}
