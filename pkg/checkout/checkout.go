// Package checkout prices a basket of scanned products, applying per-SKU bulk offers
// such as "3 for 130".
package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/backend-checkout/internal/common"
	"github.com/noah-isme/backend-checkout/internal/events"
	"github.com/noah-isme/backend-checkout/internal/obs"
	"github.com/noah-isme/backend-checkout/internal/pricing"
)

const (
	opScanProduct         = "scan_product"
	opAddSpecialOfferRule = "add_special_offer_rule"
)

// Summary is the per-SKU price breakdown of a checkout.
type Summary = pricing.Summary

// Checkout is a single checkout session. It is not safe for concurrent use.
type Checkout struct {
	id       uuid.UUID
	products []Product
	offers   []SpecialOffer

	// bundles counted per SKU, so each formed bundle is reported once
	bundles map[SKU]int

	policy  OfferPolicy
	logger  zerolog.Logger
	metrics *obs.Metrics
	bus     *events.Bus
	tracer  trace.Tracer
}

// Option configures a Checkout.
type Option func(*Checkout)

// WithLogger sets the session logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Checkout) { c.logger = logger }
}

// WithMetrics records session activity in m.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Checkout) { c.metrics = m }
}

// WithEventBus publishes session events on bus.
func WithEventBus(bus *events.Bus) Option {
	return func(c *Checkout) { c.bus = bus }
}

// WithTracer overrides the tracer used for total computations.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Checkout) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithOfferPolicy sets the duplicate offer policy. Unknown values fall back to OfferPolicyLastWins.
func WithOfferPolicy(policy OfferPolicy) Option {
	return func(c *Checkout) {
		switch policy {
		case OfferPolicyLastWins, OfferPolicyReject:
			c.policy = policy
		default:
			c.policy = OfferPolicyLastWins
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id uuid.UUID) Option {
	return func(c *Checkout) {
		if id != uuid.Nil {
			c.id = id
		}
	}
}

// New returns an empty checkout session.
func New(opts ...Option) *Checkout {
	c := &Checkout{
		id:      uuid.New(),
		bundles: make(map[SKU]int),
		policy:  OfferPolicyLastWins,
		logger:  zerolog.Nop(),
		tracer:  obs.Tracer(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With().Str("session_id", c.id.String()).Logger()
	return c
}

// ID returns the session id.
func (c *Checkout) ID() uuid.UUID {
	return c.id
}

// Products returns the scanned products in scan order.
func (c *Checkout) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Offers returns the registered offers in registration order.
func (c *Checkout) Offers() []SpecialOffer {
	out := make([]SpecialOffer, len(c.offers))
	copy(out, c.offers)
	return out
}

// ScanProduct appends a copy of product to the basket.
func (c *Checkout) ScanProduct(product *Product) error {
	if product == nil || *product == (Product{}) {
		return c.reject(opScanProduct, invalidArgument("product is required", nil))
	}
	if verr := validateInput("product", product); verr != nil {
		return c.reject(opScanProduct, verr)
	}

	p := *product
	c.products = append(c.products, p)

	c.metrics.ObserveScan(string(p.SKU))
	c.recordBundles(p.SKU)
	c.logger.Debug().
		Str("operation", opScanProduct).
		Str("sku", string(p.SKU)).
		Int64("unit_price", p.UnitPrice).
		Int("scanned", len(c.products)).
		Msg("product scanned")
	c.emit(context.Background(), events.TopicProductScanned, p)
	return nil
}

// AddSpecialOfferRule registers offer for its SKU.
func (c *Checkout) AddSpecialOfferRule(offer *SpecialOffer) error {
	if offer == nil || *offer == (SpecialOffer{}) {
		return c.reject(opAddSpecialOfferRule, invalidArgument("special offer is required", nil))
	}
	if verr := validateInput("special offer", offer); verr != nil {
		return c.reject(opAddSpecialOfferRule, verr)
	}
	if c.policy == OfferPolicyReject && c.hasOffer(offer.SKU) {
		err := common.NewAppError(CodeFailedPrecondition, "special offer for "+string(offer.SKU), ErrDuplicateOffer)
		return c.reject(opAddSpecialOfferRule, err)
	}

	o := *offer
	c.offers = append(c.offers, o)

	c.metrics.ObserveOffer(string(o.SKU))
	c.recordBundles(o.SKU)
	c.logger.Debug().
		Str("operation", opAddSpecialOfferRule).
		Str("sku", string(o.SKU)).
		Int("quantity", o.Quantity).
		Int64("special_price", o.SpecialPrice).
		Msg("special offer registered")
	c.emit(context.Background(), events.TopicOfferRegistered, o)
	return nil
}

// GetTotalPrice returns the basket total with offers applied. An empty basket totals 0.
func (c *Checkout) GetTotalPrice() Money {
	return c.GetTotalPriceContext(context.Background())
}

// GetTotalPriceContext is GetTotalPrice with a context for tracing.
func (c *Checkout) GetTotalPriceContext(ctx context.Context) Money {
	return c.Breakdown(ctx).Total
}

// Breakdown prices the basket and returns the per-SKU lines.
func (c *Checkout) Breakdown(ctx context.Context) Summary {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, "checkout.total", trace.WithAttributes(
		attribute.String("checkout.session_id", c.id.String()),
		attribute.Int("checkout.products", len(c.products)),
		attribute.Int("checkout.offers", len(c.offers)),
	))
	defer span.End()

	summary := pricing.Compute(c.lines(), c.pricingOffers())

	span.SetAttributes(
		attribute.Int64("checkout.total", summary.Total),
		attribute.Int64("checkout.discount", summary.Discount),
	)
	c.metrics.ObserveTotal(summary.Total)
	c.logger.Debug().
		Int64("total", summary.Total).
		Int64("discount", summary.Discount).
		Int("skus", len(summary.Lines)).
		Msg("total computed")
	c.emit(ctx, events.TopicTotalComputed, map[string]any{
		"total":     summary.Total,
		"listPrice": summary.ListPrice,
		"discount":  summary.Discount,
	})
	return summary
}

func (c *Checkout) lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.products))
	for _, p := range c.products {
		lines = append(lines, pricing.Line{SKU: string(p.SKU), Qty: 1, UnitPrice: p.UnitPrice})
	}
	return lines
}

func (c *Checkout) pricingOffers() []pricing.Offer {
	offers := make([]pricing.Offer, 0, len(c.offers))
	for _, o := range c.offers {
		offers = append(offers, pricing.Offer{SKU: string(o.SKU), Quantity: o.Quantity, Price: o.SpecialPrice})
	}
	return offers
}

// recordBundles reports bundles for sku formed since the last scan or offer change.
func (c *Checkout) recordBundles(sku SKU) {
	var count int
	for _, p := range c.products {
		if p.SKU == sku {
			count++
		}
	}
	var quantity int
	for _, o := range c.offers {
		if o.SKU == sku {
			quantity = o.Quantity
		}
	}
	if quantity <= 0 {
		return
	}
	formed := count / quantity
	if delta := formed - c.bundles[sku]; delta > 0 {
		c.metrics.ObserveBundles(string(sku), delta)
		c.bundles[sku] = formed
	}
}

func (c *Checkout) hasOffer(sku SKU) bool {
	for _, o := range c.offers {
		if o.SKU == sku {
			return true
		}
	}
	return false
}

func (c *Checkout) reject(operation string, err *Error) error {
	c.metrics.ObserveRejected(operation, err.Code)
	c.logger.Warn().
		Str("operation", operation).
		Str("code", err.Code).
		Err(err).
		Msg("checkout operation rejected")
	return err
}

func (c *Checkout) emit(ctx context.Context, topic string, payload any) {
	if c.bus == nil {
		return
	}
	if _, err := c.bus.Emit(ctx, topic, c.id, payload); err != nil {
		c.logger.Warn().Err(err).Str("topic", topic).Msg("publish checkout event")
	}
}
