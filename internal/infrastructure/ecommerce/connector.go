package ecommerce

import (
	"go.uber.org/zap"

	"github.com/commercesync/backend/internal/domain/integration"
)

// Connector binds the platform clients to a tenant configuration.
type Connector struct {
	genuka     *GenukaConfig
	targetHTTP HTTPConfig
	logger     *zap.Logger
}

var (
	_ integration.SourceConnector = (*Connector)(nil)
	_ integration.TargetConnector = (*Connector)(nil)
)

// NewConnector creates a connector. genuka carries the SOURCE coordinates
// shared by all tenants; targetHTTP applies to every tenant store.
func NewConnector(genuka *GenukaConfig, targetHTTP HTTPConfig, logger *zap.Logger) (*Connector, error) {
	if err := genuka.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{genuka: genuka, targetHTTP: targetHTTP, logger: logger}, nil
}

// Source returns the SOURCE catalog of the tenant.
func (c *Connector) Source(cfg integration.TenantConfiguration) (integration.SourceCatalog, error) {
	client, err := NewGenukaClient(c.genuka, cfg.TenantID, cfg.SourceAccessToken,
		c.logger.With(zap.String("platform", "genuka"), zap.String("tenant_id", cfg.TenantID)))
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Target returns the TARGET store of the tenant.
func (c *Connector) Target(cfg integration.TenantConfiguration) (integration.TargetStore, error) {
	client, err := NewWooCommerceClient(NewWooCommerceConfig(cfg.Target, c.targetHTTP),
		c.logger.With(zap.String("platform", "woocommerce"), zap.String("tenant_id", cfg.TenantID)))
	if err != nil {
		return nil, err
	}
	return client, nil
}
