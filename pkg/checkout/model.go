package checkout

import "github.com/noah-isme/backend-checkout/internal/pricing"

// Money is an amount in minor units.
type Money = pricing.Money

// SKU identifies a product type.
type SKU string

// Product is a scannable item. Every scan stores its own copy.
type Product struct {
	SKU       SKU   `json:"sku" validate:"required,max=32"`
	UnitPrice Money `json:"unitPrice" validate:"gte=0"`
}

// SpecialOffer prices Quantity units of SKU at SpecialPrice.
type SpecialOffer struct {
	SKU          SKU   `json:"sku" validate:"required,max=32"`
	Quantity     int   `json:"quantity" validate:"gte=1"`
	SpecialPrice Money `json:"specialPrice" validate:"gte=0"`
}

// OfferPolicy decides what happens when a second offer targets an already covered SKU.
type OfferPolicy string

const (
	// OfferPolicyLastWins keeps every offer and prices with the most recent one per SKU.
	OfferPolicyLastWins OfferPolicy = "last_wins"
	// OfferPolicyReject refuses a second offer for the same SKU.
	OfferPolicyReject OfferPolicy = "reject"
)
