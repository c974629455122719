package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

// setupTestDB opens an in-memory SQLite database with the service schema
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func TestTenantScope(t *testing.T) {
	t.Run("filters by tenant", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		type syncLogRow struct {
			ID       uint
			TenantID string
		}

		tenantID := "company'; DROP TABLE tenants; --"
		mock.ExpectQuery(`SELECT \* FROM "sync_log_rows" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id"}).AddRow(1, tenantID))

		var rows []syncLogRow
		require.NoError(t, db.DB.Scopes(TenantScope(tenantID)).Find(&rows).Error)
		assert.Len(t, rows, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty tenant ID panics", func(t *testing.T) {
		assert.Panics(t, func() { TenantScope("") })
	})
}

func TestDatabase_PingAndStats(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectPing()
	assert.NoError(t, db.Ping())

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, db.Ping())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)

	mock.ExpectClose()
	assert.NoError(t, db.Close())
}

func TestRepositories_DatabaseErrors(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	t.Run("tenant lookup surfaces driver errors", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "tenants" WHERE id = \$1`).
			WillReturnError(errors.New("connection reset"))

		_, err := NewGormTenantRepository(db.DB, nil).Get(context.Background(), "company-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, integration.ErrTenantNotFound)
	})

	t.Run("sync log count failure", func(t *testing.T) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "sync_logs" WHERE tenant_id = \$1`).
			WithArgs("company-1").
			WillReturnError(errors.New("statement timeout"))

		_, _, err := NewGormSyncLogRepository(db.DB).ListForTenant(context.Background(), "company-1", integration.SyncLogFilter{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "statement timeout")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
