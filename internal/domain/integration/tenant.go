package integration

import (
	"context"
	"strings"
	"time"
)

// DefaultTargetAPIVersion is used when the tenant configuration omits one.
const DefaultTargetAPIVersion = "wc/v3"

// TargetCredentials are the TARGET store coordinates for one tenant.
type TargetCredentials struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	APIVersion     string
}

// IsComplete reports whether every credential is set.
func (c *TargetCredentials) IsComplete() bool {
	return c != nil && c.BaseURL != "" && c.ConsumerKey != "" && c.ConsumerSecret != ""
}

// Version returns the API version with the default applied.
func (c *TargetCredentials) Version() string {
	if c == nil || strings.TrimSpace(c.APIVersion) == "" {
		return DefaultTargetAPIVersion
	}
	return strings.Trim(c.APIVersion, "/")
}

// Tenant is a company registered through the onboarding callback.
type Tenant struct {
	ID                string
	Handle            string
	Name              string
	Description       string
	LogoURL           string
	AuthorizationCode string
	AccessToken       string
	Target            *TargetCredentials
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TenantConfiguration is the immutable view used by one sync invocation.
type TenantConfiguration struct {
	TenantID          string
	SourceAccessToken string
	Target            TargetCredentials
}

// Configuration returns the sync configuration for the tenant.
func (t *Tenant) Configuration() (TenantConfiguration, error) {
	if t == nil || t.ID == "" {
		return TenantConfiguration{}, ErrTenantInvalidID
	}
	if t.AccessToken == "" || !t.Target.IsComplete() {
		return TenantConfiguration{}, ErrTenantNotConfigured
	}
	target := *t.Target
	target.APIVersion = t.Target.Version()
	return TenantConfiguration{
		TenantID:          t.ID,
		SourceAccessToken: t.AccessToken,
		Target:            target,
	}, nil
}

// IsConfigured reports whether the tenant can be synchronized.
func (t *Tenant) IsConfigured() bool {
	_, err := t.Configuration()
	return err == nil
}

// ReplaceTarget swaps the whole TARGET configuration.
func (t *Tenant) ReplaceTarget(creds TargetCredentials, now time.Time) {
	c := creds
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIVersion = c.Version()
	t.Target = &c
	t.UpdatedAt = now
}

// TenantRepository persists tenants.
type TenantRepository interface {
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	Upsert(ctx context.Context, tenant *Tenant) error
	ListAll(ctx context.Context) ([]*Tenant, error)
}
