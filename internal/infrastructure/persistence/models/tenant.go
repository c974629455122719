package models

import (
	"time"

	"github.com/commercesync/backend/internal/domain/integration"
)

// TenantModel is the persistence model for an onboarded company and its
// TARGET store configuration. Secret columns hold ciphertext when an
// encryption key is configured.
type TenantModel struct {
	ID                   string    `gorm:"type:varchar(64);primary_key"`
	Handle               string    `gorm:"type:varchar(255)"`
	Name                 string    `gorm:"type:varchar(255)"`
	Description          string    `gorm:"type:text"`
	LogoURL              string    `gorm:"type:text"`
	AuthorizationCode    string    `gorm:"type:text"`
	AccessToken          string    `gorm:"type:text"`
	TargetBaseURL        string    `gorm:"type:varchar(512)"`
	TargetConsumerKey    string    `gorm:"type:text"`
	TargetConsumerSecret string    `gorm:"type:text"`
	TargetAPIVersion     string    `gorm:"type:varchar(32)"`
	CreatedAt            time.Time `gorm:"not null;index"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant.
// A tenant without a TARGET base URL has no TARGET configuration.
func (m *TenantModel) ToDomain() *integration.Tenant {
	t := &integration.Tenant{
		ID:                m.ID,
		Handle:            m.Handle,
		Name:              m.Name,
		Description:       m.Description,
		LogoURL:           m.LogoURL,
		AuthorizationCode: m.AuthorizationCode,
		AccessToken:       m.AccessToken,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.TargetBaseURL != "" {
		t.Target = &integration.TargetCredentials{
			BaseURL:        m.TargetBaseURL,
			ConsumerKey:    m.TargetConsumerKey,
			ConsumerSecret: m.TargetConsumerSecret,
			APIVersion:     m.TargetAPIVersion,
		}
	}
	return t
}

// FromDomain populates the persistence model from a domain Tenant.
func (m *TenantModel) FromDomain(t *integration.Tenant) {
	m.ID = t.ID
	m.Handle = t.Handle
	m.Name = t.Name
	m.Description = t.Description
	m.LogoURL = t.LogoURL
	m.AuthorizationCode = t.AuthorizationCode
	m.AccessToken = t.AccessToken
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
	m.TargetBaseURL, m.TargetConsumerKey, m.TargetConsumerSecret, m.TargetAPIVersion = "", "", "", ""
	if t.Target != nil {
		m.TargetBaseURL = t.Target.BaseURL
		m.TargetConsumerKey = t.Target.ConsumerKey
		m.TargetConsumerSecret = t.Target.ConsumerSecret
		m.TargetAPIVersion = t.Target.APIVersion
	}
}
