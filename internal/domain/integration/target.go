package integration

import "fmt"

// Meta keys written on TARGET entities so they can be traced back.
const (
	MetaKeySourceVariantID = "genuka_variant_id"
	MetaKeySourceProductID = "_genuka_product_id"
	MetaKeySourceOrderID   = "_genuka_order_id"
	MetaKeySourceOrderRef  = "_genuka_order_reference"
	MetaKeySourceChannel   = "_genuka_source"
)

// Product types on TARGET.
const (
	TargetProductTypeSimple   = "simple"
	TargetProductTypeVariable = "variable"
)

// TargetMetaData is a key/value pair stored on a TARGET entity.
type TargetMetaData struct {
	ID    int64  `json:"id,omitempty"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// MetaValue returns the value stored under key, formatted as a string.
func MetaValue(meta []TargetMetaData, key string) (string, bool) {
	for _, m := range meta {
		if m.Key == key {
			if m.Value == nil {
				return "", true
			}
			return fmt.Sprint(m.Value), true
		}
	}
	return "", false
}

// TargetImage references an image by URL.
type TargetImage struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// TargetCategoryRef references a product category.
type TargetCategoryRef struct {
	ID int64 `json:"id"`
}

// TargetProductAttribute is an attribute as attached to a product.
type TargetProductAttribute struct {
	ID        int64    `json:"id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// TargetProduct is the create/update shape of a TARGET product.
type TargetProduct struct {
	ID               int64                    `json:"id,omitempty"`
	Name             string                   `json:"name"`
	Type             string                   `json:"type"`
	Status           string                   `json:"status,omitempty"`
	Description      string                   `json:"description"`
	ShortDescription string                   `json:"short_description"`
	RegularPrice     string                   `json:"regular_price"`
	SKU              string                   `json:"sku,omitempty"`
	Categories       []TargetCategoryRef      `json:"categories"`
	Images           []TargetImage            `json:"images"`
	Attributes       []TargetProductAttribute `json:"attributes,omitempty"`
	MetaData         []TargetMetaData         `json:"meta_data,omitempty"`
}

// TargetVariationAttribute selects one option of a product attribute.
type TargetVariationAttribute struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Option string `json:"option"`
}

// TargetVariation is one variation of a variable TARGET product.
type TargetVariation struct {
	ID            int64                      `json:"id,omitempty"`
	RegularPrice  string                     `json:"regular_price"`
	SKU           string                     `json:"sku,omitempty"`
	StockQuantity *int                       `json:"stock_quantity,omitempty"`
	ManageStock   bool                       `json:"manage_stock"`
	Attributes    []TargetVariationAttribute `json:"attributes"`
	MetaData      []TargetMetaData           `json:"meta_data,omitempty"`
}

// SourceVariantID returns the SOURCE variant id tagged on the variation.
func (v TargetVariation) SourceVariantID() string {
	id, _ := MetaValue(v.MetaData, MetaKeySourceVariantID)
	return id
}

// TargetAttribute is a global product attribute definition.
type TargetAttribute struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	HasArchives bool   `json:"has_archives"`
}

// TargetAddress is a billing or shipping address.
type TargetAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// TargetCustomer is the create/update shape of a TARGET customer.
type TargetCustomer struct {
	ID        int64            `json:"id,omitempty"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Username  string           `json:"username,omitempty"`
	Role      string           `json:"role,omitempty"`
	Billing   TargetAddress    `json:"billing"`
	Shipping  TargetAddress    `json:"shipping"`
	MetaData  []TargetMetaData `json:"meta_data,omitempty"`
}

// TargetLineItem is an order line.
type TargetLineItem struct {
	ID          int64 `json:"id,omitempty"`
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id,omitempty"`
	Quantity    int   `json:"quantity"`
}

// TargetShippingLine is an order shipping line.
type TargetShippingLine struct {
	ID          int64  `json:"id,omitempty"`
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// TargetOrder is the create/update shape of a TARGET order.
type TargetOrder struct {
	ID                 int64                `json:"id,omitempty"`
	Status             string               `json:"status,omitempty"`
	Currency           string               `json:"currency,omitempty"`
	CustomerID         int64                `json:"customer_id,omitempty"`
	PaymentMethod      string               `json:"payment_method"`
	PaymentMethodTitle string               `json:"payment_method_title"`
	SetPaid            bool                 `json:"set_paid"`
	Billing            TargetAddress        `json:"billing"`
	Shipping           TargetAddress        `json:"shipping"`
	LineItems          []TargetLineItem     `json:"line_items"`
	ShippingLines      []TargetShippingLine `json:"shipping_lines"`
	MetaData           []TargetMetaData     `json:"meta_data,omitempty"`
}
