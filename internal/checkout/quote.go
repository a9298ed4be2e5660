package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/giftly/giftly-backend/internal/cart"
	"github.com/giftly/giftly-backend/pkg/config"
)

// Policy is the order-submission pricing policy. It is distinct from the
// cart display policy; the two rates differ and must stay independently
// configurable.
type Policy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// PolicyFromConfig lifts the parsed checkout policy out of the app config.
func PolicyFromConfig(cfg config.CheckoutConfig) Policy {
	return Policy{
		TaxRate:               cfg.Rate(),
		FreeShippingThreshold: cfg.Threshold(),
		ShippingFee:           cfg.Fee(),
	}
}

// Quote is the final payable breakdown computed once at submission time.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ShippingCharge decimal.Decimal `json:"shipping_charge"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeQuote prices the items snapshot under the checkout policy. Shipping
// is waived only when the subtotal strictly exceeds the threshold. Pure, no
// I/O.
func ComputeQuote(items []cart.LineItem, policy Policy) Quote {
	subtotal := decimal.Zero
	for i := range items {
		line := items[i].Price.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		subtotal = subtotal.Add(line)
	}

	tax := subtotal.Mul(policy.TaxRate)

	shipping := decimal.Zero
	if len(items) > 0 && !subtotal.GreaterThan(policy.FreeShippingThreshold) {
		shipping = policy.ShippingFee
	}

	return Quote{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ShippingCharge: shipping,
		Total:          subtotal.Add(tax).Add(shipping),
	}
}
