package handler

import (
	"strings"
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
)

// ConfigurationRequest is the TARGET configuration form
// @Description Target store credentials; the whole configuration is replaced
type ConfigurationRequest struct {
	BaseURL        string `json:"base_url" binding:"required" example:"https://shop.example.com"`
	ConsumerKey    string `json:"consumer_key" binding:"required" example:"ck_0123456789"`
	ConsumerSecret string `json:"consumer_secret" binding:"required" example:"cs_0123456789"`
	APIVersion     string `json:"api_version" example:"wc/v3"`
}

// TargetConfigurationResponse is the stored configuration with secrets redacted
// @Description Target store configuration
type TargetConfigurationResponse struct {
	BaseURL           string `json:"base_url" example:"https://shop.example.com"`
	ConsumerKey       string `json:"consumer_key" example:"ck_****6789"`
	HasConsumerSecret bool   `json:"has_consumer_secret" example:"true"`
	APIVersion        string `json:"api_version" example:"wc/v3"`
}

// TenantResponse describes a tenant and its configuration
// @Description Tenant with its target configuration
type TenantResponse struct {
	ID            string                       `json:"id" example:"company-42"`
	Handle        string                       `json:"handle" example:"acme"`
	Name          string                       `json:"name" example:"Acme"`
	Description   string                       `json:"description,omitempty"`
	LogoURL       string                       `json:"logo_url,omitempty"`
	Configured    bool                         `json:"configured" example:"true"`
	Configuration *TargetConfigurationResponse `json:"configuration,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// ToTenantResponse converts a tenant, never exposing secrets or tokens
func ToTenantResponse(t *integration.Tenant) TenantResponse {
	resp := TenantResponse{
		ID:          t.ID,
		Handle:      t.Handle,
		Name:        t.Name,
		Description: t.Description,
		LogoURL:     t.LogoURL,
		Configured:  t.IsConfigured(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Target != nil {
		resp.Configuration = &TargetConfigurationResponse{
			BaseURL:           t.Target.BaseURL,
			ConsumerKey:       maskSecret(t.Target.ConsumerKey),
			HasConsumerSecret: t.Target.ConsumerSecret != "",
			APIVersion:        t.Target.Version(),
		}
	}
	return resp
}

// maskSecret keeps the prefix up to the first underscore and the last four
// characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	prefix := ""
	if i := strings.IndexByte(s, '_'); i >= 0 && i < 4 {
		prefix = s[:i+1]
	}
	return prefix + "****" + s[len(s)-4:]
}
