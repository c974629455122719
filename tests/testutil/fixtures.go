package testutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/stretchr/testify/require"
)

// Document is a SOURCE document as served by the SOURCE admin API.
type Document map[string]any

// ID returns the document id.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// WithTargetID links the document to a TARGET entity through its metadata.
func (d Document) WithTargetID(id int64) Document {
	d.metadata()[integration.MetadataKeyTargetID] = id
	return d
}

// WithLastSync records a previous sync time in the metadata, in seconds.
func (d Document) WithLastSync(at time.Time) Document {
	d.metadata()[integration.MetadataKeyDateLastSync] = at.Unix()
	return d
}

func (d Document) metadata() map[string]any {
	md, ok := d["metadata"].(map[string]any)
	if !ok {
		md = map[string]any{}
		d["metadata"] = md
	}
	return md
}

// JSON encodes the document.
func (d Document) JSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(d)
	require.NoError(t, err, "Failed to marshal document")
	return data
}

// Decode decodes a document into one of the SOURCE entity types.
func Decode[T any](t *testing.T, d Document) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(d.JSON(t), &out), "Failed to decode document")
	return &out
}

// Page wraps documents in the SOURCE pagination envelope.
func Page(docs []Document, currentPage, lastPage int) map[string]any {
	if docs == nil {
		docs = []Document{}
	}
	return map[string]any{
		"data": docs,
		"meta": map[string]any{"current_page": currentPage, "last_page": lastPage},
	}
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// Fixtures generates SOURCE documents from a seeded faker, so a failing
// test sees the same data on every run.
type Fixtures struct {
	CompanyID string
	f         *gofakeit.Faker
}

// NewFixtures creates a generator for companyID.
func NewFixtures(companyID string, seed uint64) *Fixtures {
	return &Fixtures{CompanyID: companyID, f: gofakeit.New(seed)}
}

// Faker exposes the underlying generator.
func (x *Fixtures) Faker() *gofakeit.Faker {
	return x.f
}

// Product returns a simple product with one variant.
func (x *Fixtures) Product() Document {
	return x.product(1)
}

// VariableProduct returns a product with one option and n variants.
func (x *Fixtures) VariableProduct(n int) Document {
	return x.product(n)
}

func (x *Fixtures) product(variants int) Document {
	title := x.f.ProductName()
	doc := Document{
		"id":         x.f.UUID(),
		"company_id": x.CompanyID,
		"title":      title,
		"handle":     x.f.Username(),
		"content":    "<p>" + x.f.ProductDescription() + "</p>",
		"published":  1,
		"medias": []map[string]any{
			{"id": x.f.UUID(), "link": x.f.URL() + "/image.jpg"},
		},
		"metadata": map[string]any{},
	}

	values := make([]string, 0, variants)
	items := make([]map[string]any, 0, variants)
	for i := 0; i < variants; i++ {
		value := x.f.Color()
		values = append(values, value)
		variantTitle := title
		if variants > 1 {
			variantTitle = value
		}
		items = append(items, map[string]any{
			"id":                 x.f.UUID(),
			"title":              variantTitle,
			"price":              x.f.Number(100, 50000),
			"position":           i + 1,
			"sku":                x.f.LetterN(8),
			"estimated_quantity": x.f.Number(0, 40),
		})
	}
	doc["variants"] = items
	if variants > 1 {
		doc["options"] = []map[string]any{
			{"id": x.f.UUID(), "title": "Color", "position": 1, "values": values},
		}
	} else {
		doc["options"] = []map[string]any{}
	}
	return doc
}

// Address returns a postal address.
func (x *Fixtures) Address() map[string]any {
	return map[string]any{
		"id":          x.f.UUID(),
		"first_name":  x.f.FirstName(),
		"last_name":   x.f.LastName(),
		"phone":       x.f.Phone(),
		"email":       x.f.Email(),
		"company":     x.f.Company(),
		"line1":       x.f.Street(),
		"line2":       "",
		"city":        x.f.City(),
		"state":       x.f.State(),
		"country":     x.f.CountryAbr(),
		"postal_code": x.f.Zip(),
	}
}

// Customer returns a customer with one address used for billing and shipping.
func (x *Fixtures) Customer() Document {
	addr := x.Address()
	return Document{
		"id":               x.f.UUID(),
		"company_id":       x.CompanyID,
		"first_name":       x.f.FirstName(),
		"last_name":        x.f.LastName(),
		"email":            x.f.Email(),
		"phone":            x.f.Phone(),
		"company_name":     x.f.Company(),
		"addresses":        []map[string]any{addr},
		"billing_address":  addr,
		"shipping_address": addr,
		"metadata":         map[string]any{},
	}
}

// Order returns an order placed by customer for one unit of the first
// variant of each product.
func (x *Fixtures) Order(customer Document, products ...Document) Document {
	lines := make([]map[string]any, 0, len(products))
	total := 0
	for _, p := range products {
		line := make(map[string]any, len(p)+1)
		for k, v := range p {
			line[k] = v
		}
		variant := p["variants"].([]map[string]any)[0]
		price := variant["price"].(int)
		total += price
		line["pivot"] = map[string]any{"quantity": 1, "price": price, "variant_id": variant["id"]}
		lines = append(lines, line)
	}

	addr := x.Address()
	return Document{
		"id":         x.f.UUID(),
		"company_id": x.CompanyID,
		"reference":  x.f.LetterN(6),
		"status":     "pending",
		"currency":   "XAF",
		"amount":     total,
		"source":     "website",
		"shipping": map[string]any{
			"mode": "delivery", "amount": 0, "status": "pending", "address_id": addr["id"],
		},
		"billing": map[string]any{
			"total": total, "subtotal": total, "method": "cash", "status": "pending", "address_id": addr["id"],
		},
		"customer":  customer,
		"products":  lines,
		"addresses": []map[string]any{addr},
		"metadata":  map[string]any{},
	}
}
