package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTenant(f *gofakeit.Faker, id string, createdAt time.Time) *integration.Tenant {
	return &integration.Tenant{
		ID:                id,
		Handle:            f.Username(),
		Name:              f.Company(),
		Description:       f.HackerPhrase(),
		LogoURL:           f.URL(),
		AuthorizationCode: f.UUID(),
		AccessToken:       f.UUID(),
		CreatedAt:         createdAt.UTC().Truncate(time.Second),
		UpdatedAt:         createdAt.UTC().Truncate(time.Second),
	}
}

func TestGormTenantRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db, nil)
	ctx := context.Background()
	f := gofakeit.New(42)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tenant := fakeTenant(f, "company-1", now)
	require.NoError(t, repo.Upsert(ctx, tenant))

	got, err := repo.Get(ctx, "company-1")
	require.NoError(t, err)
	assert.Equal(t, tenant.Name, got.Name)
	assert.Equal(t, tenant.AccessToken, got.AccessToken)
	assert.Nil(t, got.Target)
	assert.False(t, got.IsConfigured())

	t.Run("upsert replaces the existing row", func(t *testing.T) {
		got.ReplaceTarget(integration.TargetCredentials{
			BaseURL:        "https://shop.example.com/",
			ConsumerKey:    "ck_1",
			ConsumerSecret: "cs_1",
		}, now.Add(time.Hour))
		got.Name = "Renamed"
		require.NoError(t, repo.Upsert(ctx, got))

		again, err := repo.Get(ctx, "company-1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", again.Name)
		require.NotNil(t, again.Target)
		assert.Equal(t, "https://shop.example.com", again.Target.BaseURL)
		assert.Equal(t, "wc/v3", again.Target.APIVersion)
		assert.True(t, again.IsConfigured())

		var count int64
		require.NoError(t, db.Model(&models.TenantModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, integration.ErrTenantNotFound)
	})

	t.Run("blank ids are rejected", func(t *testing.T) {
		_, err := repo.Get(ctx, "")
		assert.ErrorIs(t, err, integration.ErrTenantInvalidID)
		assert.ErrorIs(t, repo.Upsert(ctx, &integration.Tenant{}), integration.ErrTenantInvalidID)
	})
}

func TestGormTenantRepository_EncryptsSecrets(t *testing.T) {
	db := setupTestDB(t)
	cipher, err := NewSecretCipher(testEncryptionKey)
	require.NoError(t, err)
	repo := NewGormTenantRepository(db, cipher)
	ctx := context.Background()

	tenant := fakeTenant(gofakeit.New(7), "company-2", time.Now())
	tenant.AccessToken = "source-token"
	tenant.Target = &integration.TargetCredentials{
		BaseURL:        "https://shop.example.com",
		ConsumerKey:    "ck_2",
		ConsumerSecret: "cs_2",
		APIVersion:     "wc/v3",
	}
	require.NoError(t, repo.Upsert(ctx, tenant))

	var row models.TenantModel
	require.NoError(t, db.First(&row, "id = ?", "company-2").Error)
	assert.NotEqual(t, "source-token", row.AccessToken)
	assert.NotEqual(t, "cs_2", row.TargetConsumerSecret)
	assert.Equal(t, "ck_2", row.TargetConsumerKey)

	got, err := repo.Get(ctx, "company-2")
	require.NoError(t, err)
	assert.Equal(t, "source-token", got.AccessToken)
	assert.Equal(t, "cs_2", got.Target.ConsumerSecret)

	t.Run("rows written without a key stay readable", func(t *testing.T) {
		plain := NewGormTenantRepository(db, nil)
		require.NoError(t, plain.Upsert(ctx, fakeTenant(gofakeit.New(8), "company-3", time.Now())))

		_, err := repo.Get(ctx, "company-3")
		assert.NoError(t, err)
	})
}

func TestGormTenantRepository_ListAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTenantRepository(db, nil)
	ctx := context.Background()
	f := gofakeit.New(1)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, fakeTenant(f, "company-b", base.Add(2*time.Hour))))
	require.NoError(t, repo.Upsert(ctx, fakeTenant(f, "company-a", base.Add(time.Hour))))
	require.NoError(t, repo.Upsert(ctx, fakeTenant(f, "company-c", base.Add(3*time.Hour))))

	tenants, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 3)
	assert.Equal(t, "company-a", tenants[0].ID)
	assert.Equal(t, "company-b", tenants[1].ID)
	assert.Equal(t, "company-c", tenants[2].ID)
}
