package models

// Discount references a pricing rule applied by an external discounts
// collaborator. Recorded pass-through during review, never computed here.
type Discount struct {
	DiscountID string `json:"discountId"`
	CodeID     string `json:"codeId"`
}

// ClaimedItem is a caller-submitted order line. The claimed price is used
// only for grouping and is discarded during review; totals always come
// from the catalog.
type ClaimedItem struct {
	ProductID string  `json:"productId" binding:"required"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
}

type OrderGroupRequest struct {
	Discounts []Discount    `json:"discounts"`
	Items     []ClaimedItem `json:"item_products" binding:"required"`
}

type CheckoutReviewRequest struct {
	CartID string              `json:"cartId" binding:"required"`
	Groups []OrderGroupRequest `json:"order_ids" binding:"required,min=1"`
}

// ReviewedItem is a line re-priced from the catalog at review time.
type ReviewedItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Thumb     string  `json:"thumb"`
	Stock     int     `json:"stock"`
}

type ReviewedGroup struct {
	Discounts          []Discount     `json:"discounts"`
	PriceRaw           float64        `json:"priceRaw"`
	PriceApplyDiscount float64        `json:"priceApplyDiscount"`
	Items              []ReviewedItem `json:"item_products"`
}

type CheckoutSummary struct {
	TotalPrice    float64 `json:"totalPrice"`
	TotalDiscount float64 `json:"totalDiscount"`
	FeeShip       float64 `json:"feeShip"`
	TotalCheckout float64 `json:"totalCheckout"`
}

// CheckoutReview is the advisory result of a review pass. It reserves
// nothing: stock and prices may change before capture.
type CheckoutReview struct {
	Groups  []ReviewedGroup `json:"order_ids_new"`
	Summary CheckoutSummary `json:"checkout_order"`
}

type CreatePaymentOrderRequest struct {
	TotalCheckout float64 `json:"totalCheckout" binding:"required,gt=0"`
}
