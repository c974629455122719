package integration

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// SourceDocument is a SOURCE entity whose metadata can be written back.
// RawDocument is the JSON the entity was decoded from; it is resent with
// only the metadata replaced so unknown fields survive the round trip.
type SourceDocument interface {
	SourceID() string
	SourceMetadata() Metadata
	RawDocument() json.RawMessage
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// SourceMedia is an image attached to a SOURCE product.
type SourceMedia struct {
	ID    string `json:"id"`
	Link  string `json:"link"`
	Micro string `json:"micro,omitempty"`
	Thumb string `json:"thumb,omitempty"`
	Large string `json:"large,omitempty"`
}

// URL returns the best available image URL.
func (m SourceMedia) URL() string {
	switch {
	case m.Link != "":
		return m.Link
	case m.Large != "":
		return m.Large
	case m.Micro != "":
		return m.Micro
	default:
		return m.Thumb
	}
}

// SourceOption is a product option (e.g. "Size") and its ordered values.
type SourceOption struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// SourceVariant is one sellable variant of a SOURCE product.
// Price is expressed in minor currency units.
type SourceVariant struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Position          int             `json:"position"`
	SKU               string          `json:"sku"`
	EstimatedQuantity *float64        `json:"estimated_quantity"`
}

// StockQuantity returns the estimated quantity, defaulting to 1.
func (v SourceVariant) StockQuantity() int {
	if v.EstimatedQuantity == nil {
		return 1
	}
	return int(math.Round(*v.EstimatedQuantity))
}

// OrderLinePivot is the order/product association carried by products
// embedded in a SOURCE order.
type OrderLinePivot struct {
	Quantity  float64         `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	VariantID string          `json:"variant_id"`
}

// LineQuantity returns the pivot quantity as a whole number, at least 1.
func (p OrderLinePivot) LineQuantity() int {
	q := int(math.Round(p.Quantity))
	if q < 1 {
		return 1
	}
	return q
}

// SourceProduct is a product from the SOURCE catalog.
type SourceProduct struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id"`
	Title     string          `json:"title"`
	Handle    string          `json:"handle"`
	Content   string          `json:"content"`
	Published *Flag           `json:"published"`
	Medias    []SourceMedia   `json:"medias"`
	Variants  []SourceVariant `json:"variants"`
	Options   []SourceOption  `json:"options"`
	Metadata  Metadata        `json:"metadata"`
	Pivot     *OrderLinePivot `json:"pivot,omitempty"`

	raw json.RawMessage
}

// IsVariable reports whether the product maps to a variable TARGET product.
func (p *SourceProduct) IsVariable() bool {
	return len(p.Variants) > 1
}

// UnmarshalJSON keeps a copy of the decoded document.
func (p *SourceProduct) UnmarshalJSON(data []byte) error {
	type alias SourceProduct
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = SourceProduct(a)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (p *SourceProduct) SourceID() string             { return p.ID }
func (p *SourceProduct) SourceMetadata() Metadata     { return p.Metadata }
func (p *SourceProduct) RawDocument() json.RawMessage { return p.raw }

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// SourceAddress is a postal address owned by a SOURCE customer or order.
type SourceAddress struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

// SourceCustomer is a customer from the SOURCE system.
type SourceCustomer struct {
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	CompanyName     string          `json:"company_name"`
	Addresses       []SourceAddress `json:"addresses"`
	BillingAddress  *SourceAddress  `json:"billing_address"`
	ShippingAddress *SourceAddress  `json:"shipping_address"`
	Metadata        Metadata        `json:"metadata"`

	raw json.RawMessage
}

// UnmarshalJSON keeps a copy of the decoded document.
func (c *SourceCustomer) UnmarshalJSON(data []byte) error {
	type alias SourceCustomer
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = SourceCustomer(a)
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (c *SourceCustomer) SourceID() string             { return c.ID }
func (c *SourceCustomer) SourceMetadata() Metadata     { return c.Metadata }
func (c *SourceCustomer) RawDocument() json.RawMessage { return c.raw }

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// SourceOrderShipping is the shipping block of a SOURCE order.
type SourceOrderShipping struct {
	Mode      string          `json:"mode"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	AddressID string          `json:"address_id"`
	Address   *SourceAddress  `json:"address,omitempty"`
}

// SourceOrderBilling is the billing block of a SOURCE order.
type SourceOrderBilling struct {
	Total     decimal.Decimal `json:"total"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	AddressID string          `json:"address_id"`
	Address   *SourceAddress  `json:"address,omitempty"`
}

// SourceOrder is an order from the SOURCE system.
type SourceOrder struct {
	ID        string              `json:"id"`
	CompanyID string              `json:"company_id"`
	Reference string              `json:"reference"`
	Status    string              `json:"status"`
	Currency  string              `json:"currency"`
	Amount    decimal.Decimal     `json:"amount"`
	Source    string              `json:"source"`
	Shipping  SourceOrderShipping `json:"shipping"`
	Billing   SourceOrderBilling  `json:"billing"`
	Customer  *SourceCustomer     `json:"customer"`
	Products  []SourceProduct     `json:"products"`
	Addresses []SourceAddress     `json:"addresses"`
	Metadata  Metadata            `json:"metadata"`

	raw json.RawMessage
}

// UnmarshalJSON keeps a copy of the decoded document.
func (o *SourceOrder) UnmarshalJSON(data []byte) error {
	type alias SourceOrder
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = SourceOrder(a)
	o.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (o *SourceOrder) SourceID() string             { return o.ID }
func (o *SourceOrder) SourceMetadata() Metadata     { return o.Metadata }
func (o *SourceOrder) RawDocument() json.RawMessage { return o.raw }

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

// SourcePage is one page of a SOURCE collection.
type SourcePage struct {
	Data        json.RawMessage
	CurrentPage int
	LastPage    int
}

// IsLast reports whether no further page should be requested.
func (p *SourcePage) IsLast() bool {
	return p.CurrentPage >= p.LastPage
}
