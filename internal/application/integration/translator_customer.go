package integration

import (
	"strings"

	"github.com/commercesync/backend/internal/domain/integration"
)

// Address defaults used when the SOURCE record lacks a field.
const (
	DefaultAddressLine = "Default Address"
	DefaultCity        = "Default City"
	DefaultState       = "Default State"
	DefaultPostcode    = "00000"
	DefaultCountry     = "CM"
	DefaultCompany     = "Default Company"
	DefaultPersonName  = "Customer"
)

// ToTargetCustomer builds the create/update body of a customer. Missing
// address data falls back to defaults; it never fails.
func ToTargetCustomer(c *integration.SourceCustomer) integration.TargetCustomer {
	billing := resolveAddress(c.BillingAddress, c.Addresses)
	shipping := resolveAddress(c.ShippingAddress, c.Addresses)
	if shipping == nil {
		shipping = billing
	}

	out := integration.TargetCustomer{
		Email:     strings.TrimSpace(c.Email),
		FirstName: firstNonEmpty(c.FirstName, DefaultPersonName),
		LastName:  firstNonEmpty(c.LastName, DefaultPersonName),
		Billing:   toTargetAddress(billing, c),
		Shipping:  toTargetAddress(shipping, c),
	}
	out.Billing.Email = firstNonEmpty(addrField(billing, func(a *integration.SourceAddress) string { return a.Email }), out.Email)
	out.Billing.Phone = firstNonEmpty(addrField(billing, func(a *integration.SourceAddress) string { return a.Phone }), c.Phone)
	out.Shipping.Email = ""
	out.Shipping.Phone = ""
	return out
}

// resolveAddress matches ptr against the address list by id, falling back
// to ptr itself.
func resolveAddress(ptr *integration.SourceAddress, addresses []integration.SourceAddress) *integration.SourceAddress {
	if ptr == nil {
		return nil
	}
	if a := findAddress(ptr.ID, addresses); a != nil {
		return a
	}
	return ptr
}

func findAddress(id string, addresses []integration.SourceAddress) *integration.SourceAddress {
	if id == "" {
		return nil
	}
	for i := range addresses {
		if addresses[i].ID == id {
			return &addresses[i]
		}
	}
	return nil
}

func toTargetAddress(a *integration.SourceAddress, c *integration.SourceCustomer) integration.TargetAddress {
	var first, last, company string
	if c != nil {
		first, last, company = c.FirstName, c.LastName, c.CompanyName
	}
	get := func(f func(*integration.SourceAddress) string) string { return addrField(a, f) }

	return integration.TargetAddress{
		FirstName: firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.FirstName }), first, DefaultPersonName),
		LastName:  firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.LastName }), last, DefaultPersonName),
		Company:   firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.Company }), company, DefaultCompany),
		Address1:  firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.Line1 }), DefaultAddressLine),
		Address2:  get(func(a *integration.SourceAddress) string { return a.Line2 }),
		City:      firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.City }), DefaultCity),
		State:     firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.State }), DefaultState),
		Postcode:  firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.PostalCode }), DefaultPostcode),
		Country:   firstNonEmpty(get(func(a *integration.SourceAddress) string { return a.Country }), DefaultCountry),
	}
}

func addrField(a *integration.SourceAddress, f func(*integration.SourceAddress) string) string {
	if a == nil {
		return ""
	}
	return strings.TrimSpace(f(a))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
