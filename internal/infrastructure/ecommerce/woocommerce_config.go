package ecommerce

import (
	"errors"
	"strings"

	"github.com/commercesync/backend/internal/domain/integration"
)

// WooCommerceConfig holds the TARGET store coordinates of one tenant.
type WooCommerceConfig struct {
	// StoreURL is the store root, e.g. https://shop.example.com
	StoreURL string
	// ConsumerKey is the REST API key
	ConsumerKey string
	// ConsumerSecret is the REST API secret
	ConsumerSecret string
	// APIVersion is the REST namespace, e.g. wc/v3
	APIVersion string
	// HTTP controls timeouts, retries and rate limiting
	HTTP HTTPConfig
}

// Errors for WooCommerce configuration
var (
	ErrWooCommerceConfigMissingStoreURL = errors.New("woocommerce: store url is required")
	ErrWooCommerceConfigMissingKey      = errors.New("woocommerce: consumer key is required")
	ErrWooCommerceConfigMissingSecret   = errors.New("woocommerce: consumer secret is required")
)

// NewWooCommerceConfig builds the configuration of a tenant's store.
func NewWooCommerceConfig(creds integration.TargetCredentials, httpCfg HTTPConfig) *WooCommerceConfig {
	return &WooCommerceConfig{
		StoreURL:       creds.BaseURL,
		ConsumerKey:    creds.ConsumerKey,
		ConsumerSecret: creds.ConsumerSecret,
		APIVersion:     creds.Version(),
		HTTP:           httpCfg,
	}
}

// Validate validates the configuration and applies defaults.
func (c *WooCommerceConfig) Validate() error {
	c.StoreURL = strings.TrimRight(strings.TrimSpace(c.StoreURL), "/")
	if c.StoreURL == "" {
		return ErrWooCommerceConfigMissingStoreURL
	}
	if c.ConsumerKey == "" {
		return ErrWooCommerceConfigMissingKey
	}
	if c.ConsumerSecret == "" {
		return ErrWooCommerceConfigMissingSecret
	}
	c.APIVersion = strings.Trim(strings.TrimSpace(c.APIVersion), "/")
	if c.APIVersion == "" {
		c.APIVersion = integration.DefaultTargetAPIVersion
	}
	c.HTTP.applyDefaults()
	return nil
}

// endpoint builds {store}/wp-json/{version}/{path}.
func (c *WooCommerceConfig) endpoint(path string) string {
	return c.StoreURL + "/wp-json/" + c.APIVersion + "/" + strings.TrimLeft(path, "/")
}
