package checkout

import (
	"regexp"
	"strings"

	pkgerrors "github.com/giftly/giftly-backend/pkg/errors"
	"github.com/giftly/giftly-backend/pkg/types"
)

// phonePattern admits digits, spaces, dashes, plus signs and parentheses.
var phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)

// ValidateAddress checks field presence and the phone format. Failures are
// reported per field so the client can highlight inputs.
func ValidateAddress(addr types.ShippingAddress) error {
	fields := map[string]string{}

	if strings.TrimSpace(addr.FullName) == "" {
		fields["full_name"] = "full name is required"
	}
	if strings.TrimSpace(addr.AddressLine1) == "" {
		fields["address_line1"] = "address line is required"
	}
	if strings.TrimSpace(addr.City) == "" {
		fields["city"] = "city is required"
	}
	if strings.TrimSpace(addr.State) == "" {
		fields["state"] = "state is required"
	}
	if strings.TrimSpace(addr.PostalCode) == "" {
		fields["postal_code"] = "postal code is required"
	}
	if strings.TrimSpace(addr.Country) == "" {
		fields["country"] = "country is required"
	}

	phone := strings.TrimSpace(addr.Phone)
	if phone == "" {
		fields["phone"] = "phone is required"
	} else if !phonePattern.MatchString(phone) {
		fields["phone"] = "phone may contain digits, spaces, dashes, plus signs and parentheses only"
	}

	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping address").WithDetails(fields)
	}
	return nil
}
