package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenant_Configuration(t *testing.T) {
	creds := &TargetCredentials{BaseURL: "https://shop.test", ConsumerKey: "ck", ConsumerSecret: "cs"}

	t.Run("complete", func(t *testing.T) {
		tenant := &Tenant{ID: "c1", AccessToken: "tok", Target: creds}
		cfg, err := tenant.Configuration()
		require.NoError(t, err)
		assert.Equal(t, "c1", cfg.TenantID)
		assert.Equal(t, "tok", cfg.SourceAccessToken)
		assert.Equal(t, DefaultTargetAPIVersion, cfg.Target.APIVersion)
		assert.True(t, tenant.IsConfigured())
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := (&Tenant{ID: "c1", AccessToken: "tok"}).Configuration()
		assert.ErrorIs(t, err, ErrTenantNotConfigured)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := (&Tenant{ID: "c1", Target: creds}).Configuration()
		assert.ErrorIs(t, err, ErrTenantNotConfigured)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := (&Tenant{}).Configuration()
		assert.ErrorIs(t, err, ErrTenantInvalidID)
	})
}

func TestTenant_ReplaceTargetNormalizes(t *testing.T) {
	tenant := &Tenant{ID: "c1"}
	now := time.Now()
	tenant.ReplaceTarget(TargetCredentials{BaseURL: " https://shop.test/ ", ConsumerKey: "k", ConsumerSecret: "s", APIVersion: "/wc/v2/"}, now)

	require.NotNil(t, tenant.Target)
	assert.Equal(t, "https://shop.test", tenant.Target.BaseURL)
	assert.Equal(t, "wc/v2", tenant.Target.APIVersion)
	assert.Equal(t, now, tenant.UpdatedAt)
}
