package integration

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// SOURCE port
// ---------------------------------------------------------------------------

// SourceCatalog is the SOURCE API bound to one tenant.
type SourceCatalog interface {
	// FetchPage returns one page of a collection, 1-indexed.
	FetchPage(ctx context.Context, module SyncModule, page int) (*SourcePage, error)
	// GetProduct fetches a single product with its variants and options.
	GetProduct(ctx context.Context, productID string) (*SourceProduct, error)
	// WriteBack resends doc with its metadata replaced by md.
	WriteBack(ctx context.Context, module SyncModule, doc SourceDocument, md Metadata) error
}

// SourceConnector binds a SourceCatalog to a tenant configuration.
type SourceConnector interface {
	Source(cfg TenantConfiguration) (SourceCatalog, error)
}

// ---------------------------------------------------------------------------
// TARGET ports
// ---------------------------------------------------------------------------

// ProductStore manages TARGET products, variations and attributes.
type ProductStore interface {
	CreateProduct(ctx context.Context, p TargetProduct) (*TargetProduct, error)
	UpdateProduct(ctx context.Context, id int64, p TargetProduct) (*TargetProduct, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListVariations(ctx context.Context, productID int64) ([]TargetVariation, error)
	CreateVariation(ctx context.Context, productID int64, v TargetVariation) (*TargetVariation, error)
	UpdateVariation(ctx context.Context, productID, variationID int64, v TargetVariation) (*TargetVariation, error)

	// FindAttributeBySlug returns nil, nil when no attribute has the slug.
	FindAttributeBySlug(ctx context.Context, slug string) (*TargetAttribute, error)
	CreateAttribute(ctx context.Context, a TargetAttribute) (*TargetAttribute, error)
}

// CustomerStore manages TARGET customers.
type CustomerStore interface {
	// FindCustomersByEmail includes guests and every role.
	FindCustomersByEmail(ctx context.Context, email string) ([]TargetCustomer, error)
	CreateCustomer(ctx context.Context, c TargetCustomer) (*TargetCustomer, error)
	UpdateCustomer(ctx context.Context, id int64, c TargetCustomer) (*TargetCustomer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// OrderStore manages TARGET orders.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (*TargetOrder, error)
	CreateOrder(ctx context.Context, o TargetOrder) (*TargetOrder, error)
	UpdateOrder(ctx context.Context, id int64, o TargetOrder) (*TargetOrder, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// TargetStore is the TARGET API bound to one tenant.
type TargetStore interface {
	ProductStore
	CustomerStore
	OrderStore
}

// TargetConnector binds a TargetStore to a tenant configuration.
type TargetConnector interface {
	Target(cfg TenantConfiguration) (TargetStore, error)
}

// ---------------------------------------------------------------------------
// Webhook support ports
// ---------------------------------------------------------------------------

// DebounceGuard grants at most one claim per key within ttl. Release drops
// a claim early so the next delivery is processed.
type DebounceGuard interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// PayloadArchive keeps a copy of raw webhook deliveries.
type PayloadArchive interface {
	Archive(ctx context.Context, tenantID, event string, body []byte) (string, error)
}

// ---------------------------------------------------------------------------
// Onboarding port
// ---------------------------------------------------------------------------

// CompanyProfile is the SOURCE company record copied onto the tenant.
type CompanyProfile struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// SourceAuthorizer completes the SOURCE authorization-code flow.
type SourceAuthorizer interface {
	ExchangeCode(ctx context.Context, code string) (accessToken string, err error)
	FetchCompany(ctx context.Context, companyID, accessToken string) (*CompanyProfile, error)
}
