package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/commercesync/backend/internal/domain/integration"
)

// woocommercePageSize is the largest page the REST API serves.
const woocommercePageSize = 100

// WooCommerceClient is the TARGET store of one tenant.
type WooCommerceClient struct {
	config    *WooCommerceConfig
	transport *transport
	logger    *zap.Logger
}

var _ integration.TargetStore = (*WooCommerceClient)(nil)

// NewWooCommerceClient creates a store client.
func NewWooCommerceClient(config *WooCommerceConfig, logger *zap.Logger) (*WooCommerceClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WooCommerceClient{config: config, transport: newTransport(config.HTTP, logger), logger: logger}, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// CreateProduct creates a product.
func (c *WooCommerceClient) CreateProduct(ctx context.Context, p integration.TargetProduct) (*integration.TargetProduct, error) {
	var out integration.TargetProduct
	if err := c.send(ctx, http.MethodPost, "products", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces the fields of product id.
func (c *WooCommerceClient) UpdateProduct(ctx context.Context, id int64, p integration.TargetProduct) (*integration.TargetProduct, error) {
	p.ID = 0
	var out integration.TargetProduct
	if err := c.send(ctx, http.MethodPut, "products/"+itoa(id), nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct permanently deletes product id.
func (c *WooCommerceClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "products/"+itoa(id), forceQuery(), nil, nil)
}

// ListVariations returns every variation of productID.
func (c *WooCommerceClient) ListVariations(ctx context.Context, productID int64) ([]integration.TargetVariation, error) {
	var all []integration.TargetVariation
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(woocommercePageSize))
		q.Set("page", strconv.Itoa(page))

		var batch []integration.TargetVariation
		resp, err := c.call(ctx, http.MethodGet, "products/"+itoa(productID)+"/variations", q, nil, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)

		totalPages, _ := strconv.Atoi(resp.header.Get("X-WP-TotalPages"))
		if page >= totalPages || len(batch) < woocommercePageSize {
			return all, nil
		}
	}
}

// CreateVariation adds a variation to productID.
func (c *WooCommerceClient) CreateVariation(ctx context.Context, productID int64, v integration.TargetVariation) (*integration.TargetVariation, error) {
	var out integration.TargetVariation
	if err := c.send(ctx, http.MethodPost, "products/"+itoa(productID)+"/variations", nil, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVariation replaces the fields of a variation.
func (c *WooCommerceClient) UpdateVariation(ctx context.Context, productID, variationID int64, v integration.TargetVariation) (*integration.TargetVariation, error) {
	v.ID = 0
	var out integration.TargetVariation
	path := "products/" + itoa(productID) + "/variations/" + itoa(variationID)
	if err := c.send(ctx, http.MethodPut, path, nil, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindAttributeBySlug returns the global attribute with slug, or nil. The
// slug filter is not honoured by every store version, so the result is
// filtered again here.
func (c *WooCommerceClient) FindAttributeBySlug(ctx context.Context, slug string) (*integration.TargetAttribute, error) {
	q := url.Values{}
	q.Set("slug", slug)
	var attrs []integration.TargetAttribute
	if err := c.send(ctx, http.MethodGet, "products/attributes", q, nil, &attrs); err != nil {
		return nil, err
	}
	for i := range attrs {
		if attrs[i].Slug == slug || attrs[i].Slug == "pa_"+slug {
			return &attrs[i], nil
		}
	}
	return nil, nil
}

// CreateAttribute creates a global attribute.
func (c *WooCommerceClient) CreateAttribute(ctx context.Context, a integration.TargetAttribute) (*integration.TargetAttribute, error) {
	var out integration.TargetAttribute
	if err := c.send(ctx, http.MethodPost, "products/attributes", nil, a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Customers
// ---------------------------------------------------------------------------

// FindCustomersByEmail searches customers of every role, guests included.
func (c *WooCommerceClient) FindCustomersByEmail(ctx context.Context, email string) ([]integration.TargetCustomer, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("role", "all")
	var out []integration.TargetCustomer
	if err := c.send(ctx, http.MethodGet, "customers", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCustomer creates a customer.
func (c *WooCommerceClient) CreateCustomer(ctx context.Context, cust integration.TargetCustomer) (*integration.TargetCustomer, error) {
	var out integration.TargetCustomer
	if err := c.send(ctx, http.MethodPost, "customers", nil, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomer replaces the fields of customer id.
func (c *WooCommerceClient) UpdateCustomer(ctx context.Context, id int64, cust integration.TargetCustomer) (*integration.TargetCustomer, error) {
	cust.ID = 0
	// usernames cannot be changed once set
	cust.Username = ""
	var out integration.TargetCustomer
	if err := c.send(ctx, http.MethodPut, "customers/"+itoa(id), nil, cust, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCustomer permanently deletes customer id.
func (c *WooCommerceClient) DeleteCustomer(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "customers/"+itoa(id), forceQuery(), nil, nil)
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// GetOrder fetches order id with its line items and shipping lines.
func (c *WooCommerceClient) GetOrder(ctx context.Context, id int64) (*integration.TargetOrder, error) {
	var out integration.TargetOrder
	if err := c.send(ctx, http.MethodGet, "orders/"+itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder creates an order.
func (c *WooCommerceClient) CreateOrder(ctx context.Context, o integration.TargetOrder) (*integration.TargetOrder, error) {
	var out integration.TargetOrder
	if err := c.send(ctx, http.MethodPost, "orders", nil, o, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder replaces the fields of order id.
func (c *WooCommerceClient) UpdateOrder(ctx context.Context, id int64, o integration.TargetOrder) (*integration.TargetOrder, error) {
	o.ID = 0
	var out integration.TargetOrder
	if err := c.send(ctx, http.MethodPut, "orders/"+itoa(id), nil, o, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteOrder permanently deletes order id.
func (c *WooCommerceClient) DeleteOrder(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "orders/"+itoa(id), forceQuery(), nil, nil)
}

// ---------------------------------------------------------------------------
// Request plumbing
// ---------------------------------------------------------------------------

// wooError is the REST error body.
type wooError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *WooCommerceClient) send(ctx context.Context, method, path string, query url.Values, in, out any) error {
	_, err := c.call(ctx, method, path, query, in, out)
	return err
}

func (c *WooCommerceClient) call(ctx context.Context, method, path string, query url.Values, in, out any) (*apiResponse, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.config.ConsumerKey)
	query.Set("consumer_secret", c.config.ConsumerSecret)
	endpoint := c.config.endpoint(path) + "?" + query.Encode()

	headers := map[string]string{"Accept": "application/json"}
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: encode %s %s: %w", method, path, err)
		}
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.transport.do(ctx, apiRequest{method: method, url: endpoint, body: payload, headers: headers})
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", integration.ErrTargetRequestFailed, method, path, err)
	}
	if resp.status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", integration.ErrTargetNotFound, method, path)
	}
	if resp.status < 200 || resp.status >= 300 {
		var we wooError
		if json.Unmarshal(resp.body, &we) == nil && we.Code != "" {
			return nil, fmt.Errorf("%w: %s %s: HTTP %d %s: %s",
				integration.ErrTargetRequestFailed, method, path, resp.status, we.Code, we.Message)
		}
		return nil, fmt.Errorf("%w: %s %s: HTTP %d: %s",
			integration.ErrTargetRequestFailed, method, path, resp.status, errorSnippet(resp.body))
	}

	if out != nil {
		if err := decodeBody(resp.body, out); err != nil {
			return nil, fmt.Errorf("%w: %s %s: decode response: %v", integration.ErrTargetRequestFailed, method, path, err)
		}
	}
	c.logger.Debug("woocommerce request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.status))
	return resp, nil
}

func forceQuery() url.Values {
	q := url.Values{}
	q.Set("force", "true")
	return q
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
