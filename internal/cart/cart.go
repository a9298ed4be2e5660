package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the snapshot the cart takes from the catalog at add time. Price
// and stock are frozen into the line item; later catalog edits do not reach
// carts already holding the product.
type Product struct {
	ID         uuid.UUID
	SellerID   uuid.UUID
	SellerName string
	Name       string
	Price      decimal.Decimal
	Stock      int
	ImageURL   *string
}

// LineItem is one cart row. Only items round-trip through the snapshot
// store; every derived amount is recomputed on load.
type LineItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Quantity   int             `json:"quantity"`
	ImageURL   *string         `json:"image_url,omitempty"`
}

// Policy is the cart-display pricing policy. It is deliberately separate
// from the checkout policy; the storefront shows a flat display rate while
// checkout applies GST and a shipping threshold.
type Policy struct {
	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal
}

// Cart holds a single buyer's line items plus derived totals. All items
// belong to one seller; a cross-seller add is rejected, not merged.
type Cart struct {
	items  []LineItem
	policy Policy

	subtotal decimal.Decimal
	tax      decimal.Decimal
	shipping decimal.Decimal
	total    decimal.Decimal
}

// New builds an empty cart under the given display policy.
func New(policy Policy) *Cart {
	c := &Cart{policy: policy}
	c.Recompute()
	return c
}

// Restore builds a cart from persisted line items and recomputes totals.
func Restore(policy Policy, items []LineItem) *Cart {
	c := &Cart{
		policy: policy,
		items:  append([]LineItem{}, items...),
	}
	c.Recompute()
	return c
}

// AddItem inserts or tops up a line item. It returns false without mutating
// the cart when the product belongs to a different seller than the items
// already held, or when nothing can be added (qty < 1, product out of stock).
func (c *Cart) AddItem(p Product, qty int) bool {
	if qty < 1 {
		return false
	}
	if sellerID, ok := c.SellerID(); ok && sellerID != p.SellerID {
		return false
	}

	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			next := c.items[i].Quantity + qty
			if next > p.Stock {
				next = p.Stock
			}
			if next < 1 {
				return false
			}
			c.items[i].Quantity = next
			c.items[i].Price = p.Price
			c.items[i].Stock = p.Stock
			c.Recompute()
			return true
		}
	}

	if p.Stock < 1 {
		return false
	}
	if qty > p.Stock {
		qty = p.Stock
	}
	c.items = append(c.items, LineItem{
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		SellerName: p.SellerName,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		Quantity:   qty,
		ImageURL:   p.ImageURL,
	})
	c.Recompute()
	return true
}

// RemoveItem drops the matching line item. Unknown ids are a no-op.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.Recompute()
			return
		}
	}
}

// UpdateQuantity sets a line item's quantity, clamped to [1, stock].
// A requested quantity of zero or less removes the item. Unknown ids are a
// no-op.
func (c *Cart) UpdateQuantity(productID uuid.UUID, qty int) {
	if qty < 1 {
		c.RemoveItem(productID)
		return
	}
	for i := range c.items {
		if c.items[i].ProductID == productID {
			if qty > c.items[i].Stock {
				qty = c.items[i].Stock
			}
			if qty < 1 {
				qty = 1
			}
			c.items[i].Quantity = qty
			c.Recompute()
			return
		}
	}
}

// Clear empties the cart and zeroes every derived total.
func (c *Cart) Clear() {
	c.items = nil
	c.Recompute()
}

// ItemExists reports whether the product is already in the cart.
func (c *Cart) ItemExists(productID uuid.UUID) bool {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return true
		}
	}
	return false
}

// Count returns the sum of all line-item quantities.
func (c *Cart) Count() int {
	count := 0
	for i := range c.items {
		count += c.items[i].Quantity
	}
	return count
}

// SellerID returns the seller the cart is locked to, when non-empty.
func (c *Cart) SellerID() (uuid.UUID, bool) {
	if len(c.items) == 0 {
		return uuid.Nil, false
	}
	return c.items[0].SellerID, true
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	return append([]LineItem{}, c.items...)
}

// Recompute rebuilds the derived totals from the items. It is idempotent and
// runs after every mutation so totals are never stale.
func (c *Cart) Recompute() {
	subtotal := decimal.Zero
	for i := range c.items {
		line := c.items[i].Price.Mul(decimal.NewFromInt(int64(c.items[i].Quantity)))
		subtotal = subtotal.Add(line)
	}

	c.subtotal = subtotal
	c.tax = subtotal.Mul(c.policy.TaxRate)
	if len(c.items) == 0 {
		c.tax = decimal.Zero
		c.shipping = decimal.Zero
	} else {
		c.shipping = c.policy.ShippingFee
	}
	c.total = c.subtotal.Add(c.tax).Add(c.shipping)
}

// Subtotal returns the derived item subtotal.
func (c *Cart) Subtotal() decimal.Decimal { return c.subtotal }

// Tax returns the derived display tax amount.
func (c *Cart) Tax() decimal.Decimal { return c.tax }

// Shipping returns the derived display shipping amount.
func (c *Cart) Shipping() decimal.Decimal { return c.shipping }

// Total returns the derived cart total.
func (c *Cart) Total() decimal.Decimal { return c.total }
