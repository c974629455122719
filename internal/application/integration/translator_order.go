package integration

import (
	"strings"

	"github.com/commercesync/backend/internal/domain/integration"
)

// Payment and shipping defaults.
const (
	DefaultPaymentMethod      = "cod"
	DefaultPaymentMethodTitle = "Cash on delivery"
	FlatRateMethodID          = "flat_rate"
	FlatRateMethodTitle       = "Flat rate"
	DefaultSourceChannel      = "genuka"
)

var orderStatuses = map[string]string{
	"pending":    "pending",
	"processing": "processing",
	"confirmed":  "processing",
	"on-hold":    "on-hold",
	"completed":  "completed",
	"delivered":  "completed",
	"cancelled":  "cancelled",
	"canceled":   "cancelled",
	"refunded":   "refunded",
	"failed":     "failed",
}

// ToTargetOrder builds the create/update body of an order. Line items and
// shipping lines are computed by the caller since they depend on TARGET
// state.
func ToTargetOrder(o *integration.SourceOrder, lineItems []integration.TargetLineItem, shippingLines []integration.TargetShippingLine) integration.TargetOrder {
	method := strings.TrimSpace(o.Billing.Method)
	title := method
	if method == "" {
		method, title = DefaultPaymentMethod, DefaultPaymentMethodTitle
	}

	billingAddr := orderAddress(o.Billing.Address, o.Billing.AddressID, o, func(c *integration.SourceCustomer) *integration.SourceAddress {
		return c.BillingAddress
	})
	shippingAddr := orderAddress(o.Shipping.Address, o.Shipping.AddressID, o, func(c *integration.SourceCustomer) *integration.SourceAddress {
		return c.ShippingAddress
	})
	if shippingAddr == nil {
		shippingAddr = billingAddr
	}

	out := integration.TargetOrder{
		Status:             orderStatuses[strings.ToLower(strings.TrimSpace(o.Status))],
		Currency:           strings.ToUpper(strings.TrimSpace(o.Currency)),
		PaymentMethod:      method,
		PaymentMethodTitle: title,
		SetPaid:            strings.EqualFold(o.Billing.Status, "paid"),
		Billing:            toTargetAddress(billingAddr, o.Customer),
		Shipping:           toTargetAddress(shippingAddr, o.Customer),
		LineItems:          lineItems,
		ShippingLines:      shippingLines,
		MetaData: []integration.TargetMetaData{
			{Key: integration.MetaKeySourceOrderID, Value: o.ID},
			{Key: integration.MetaKeySourceOrderRef, Value: o.Reference},
			{Key: integration.MetaKeySourceChannel, Value: firstNonEmpty(o.Source, DefaultSourceChannel)},
		},
	}
	if out.LineItems == nil {
		out.LineItems = []integration.TargetLineItem{}
	}
	if out.ShippingLines == nil {
		out.ShippingLines = []integration.TargetShippingLine{}
	}
	if o.Customer != nil {
		out.Billing.Email = firstNonEmpty(addrField(billingAddr, func(a *integration.SourceAddress) string { return a.Email }), o.Customer.Email)
		out.Billing.Phone = firstNonEmpty(addrField(billingAddr, func(a *integration.SourceAddress) string { return a.Phone }), o.Customer.Phone)
		out.CustomerID = o.Customer.Metadata.TargetIDValue()
	}
	return out
}

// orderAddress picks the embedded address, then the address_id match in the
// order addresses, then the customer's own address.
func orderAddress(
	embedded *integration.SourceAddress,
	addressID string,
	o *integration.SourceOrder,
	fromCustomer func(*integration.SourceCustomer) *integration.SourceAddress,
) *integration.SourceAddress {
	if embedded != nil {
		return embedded
	}
	if a := findAddress(addressID, o.Addresses); a != nil {
		return a
	}
	if o.Customer != nil {
		if a := findAddress(addressID, o.Customer.Addresses); a != nil {
			return a
		}
		return resolveAddress(fromCustomer(o.Customer), o.Customer.Addresses)
	}
	return nil
}

// DesiredShippingLine is the flat-rate line carrying the order shipping
// amount.
func DesiredShippingLine(o *integration.SourceOrder) integration.TargetShippingLine {
	return integration.TargetShippingLine{
		MethodID:    FlatRateMethodID,
		MethodTitle: firstNonEmpty(o.Shipping.Mode, FlatRateMethodTitle),
		Total:       FormatMinorUnits(o.Shipping.Amount),
	}
}

// MergeShippingLines overwrites the total of the existing line with the
// desired method id. When no line matches, desired is appended.
func MergeShippingLines(existing []integration.TargetShippingLine, desired integration.TargetShippingLine) []integration.TargetShippingLine {
	out := make([]integration.TargetShippingLine, 0, len(existing)+1)
	matched := false
	for _, l := range existing {
		if !matched && l.MethodID == desired.MethodID {
			l.Total = desired.Total
			matched = true
		}
		out = append(out, l)
	}
	if !matched {
		out = append(out, desired)
	}
	return out
}

// MergeLineItems merges fresh items into existing ones by product and
// variation id. Quantities are summed and existing line ids kept so the
// TARGET updates lines in place.
func MergeLineItems(existing, fresh []integration.TargetLineItem) []integration.TargetLineItem {
	type key struct{ product, variation int64 }
	out := make([]integration.TargetLineItem, 0, len(existing)+len(fresh))
	index := make(map[key]int, len(existing)+len(fresh))

	for _, items := range [][]integration.TargetLineItem{existing, fresh} {
		for _, li := range items {
			k := key{li.ProductID, li.VariationID}
			if i, ok := index[k]; ok {
				out[i].Quantity += li.Quantity
				continue
			}
			index[k] = len(out)
			out = append(out, li)
		}
	}
	return out
}
