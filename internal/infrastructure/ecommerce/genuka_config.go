package ecommerce

import (
	"errors"
	"strings"
)

// GenukaConfig holds the SOURCE API coordinates shared by every tenant.
type GenukaConfig struct {
	// APIBaseURL is the SOURCE API root, e.g. https://api.genuka.com
	APIBaseURL string
	// APIVersion is the path segment placed before admin/
	APIVersion string
	// ClientID identifies this application in the authorization-code flow
	ClientID string
	// ClientSecret authenticates this application in the authorization-code flow
	ClientSecret string
	// RedirectURI must match the URI registered for ClientID
	RedirectURI string
	// HTTP controls timeouts, retries and rate limiting
	HTTP HTTPConfig
}

const (
	// GenukaProductionAPIURL is the production API endpoint
	GenukaProductionAPIURL = "https://api.genuka.com"
	// GenukaDefaultAPIVersion is the admin API version used when none is set
	GenukaDefaultAPIVersion = "2023-11"
)

// Errors for Genuka configuration
var (
	ErrGenukaConfigMissingBaseURL     = errors.New("genuka: api base url is required")
	ErrGenukaConfigMissingClientID    = errors.New("genuka: client id is required")
	ErrGenukaConfigMissingSecret      = errors.New("genuka: client secret is required")
	ErrGenukaConfigMissingAccessToken = errors.New("genuka: tenant access token is required")
	ErrGenukaConfigMissingCompanyID   = errors.New("genuka: company id is required")
)

// NewGenukaConfig creates a Genuka configuration with defaults.
func NewGenukaConfig(clientID, clientSecret, redirectURI string) *GenukaConfig {
	return &GenukaConfig{
		APIBaseURL:   GenukaProductionAPIURL,
		APIVersion:   GenukaDefaultAPIVersion,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		HTTP:         DefaultHTTPConfig(),
	}
}

// Validate validates the catalog settings and applies defaults. The OAuth
// client settings are checked separately by ValidateOAuth.
func (c *GenukaConfig) Validate() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		return ErrGenukaConfigMissingBaseURL
	}
	c.APIVersion = strings.Trim(strings.TrimSpace(c.APIVersion), "/")
	if c.APIVersion == "" {
		c.APIVersion = GenukaDefaultAPIVersion
	}
	c.HTTP.applyDefaults()
	return nil
}

// ValidateOAuth validates the authorization-code client settings.
func (c *GenukaConfig) ValidateOAuth() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ClientID == "" {
		return ErrGenukaConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrGenukaConfigMissingSecret
	}
	return nil
}

// adminURL builds {base}/{version}/admin/{path}.
func (c *GenukaConfig) adminURL(path string) string {
	return c.APIBaseURL + "/" + c.APIVersion + "/admin/" + strings.TrimLeft(path, "/")
}
