package types

// ShippingAddress is the structured address collected at checkout and
// persisted as a JSON snapshot on the order.
type ShippingAddress struct {
	FullName     string  `json:"full_name"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	Phone        string  `json:"phone"`
}
