// Package integration runs the reconciler against a real PostgreSQL started
// with testcontainers. Every test here is skipped under -short.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/erp/reconciler/internal/domain/identity"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/migration"
	"github.com/erp/reconciler/internal/infrastructure/persistence"
	"github.com/erp/reconciler/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// TestDB is a migrated database in a throwaway container
type TestDB struct {
	DB  *gorm.DB
	DSN string
	t   *testing.T
}

// NewTestDB starts PostgreSQL, applies the embedded migrations and registers
// cleanup with t. Set TEST_DB_DEBUG to log every statement.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("reconciler_test"),
		tcpostgres.WithUsername("reconciler"),
		tcpostgres.WithPassword("reconciler"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	tdb := &TestDB{DSN: dsn, t: t}
	tdb.open()
	tdb.migrate()
	return tdb
}

func (tdb *TestDB) open() {
	t := tdb.t
	level := gormlogger.Silent
	log := zap.NewNop()
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
		log = zaptest.NewLogger(t)
	}

	db, err := gorm.Open(gormpostgres.Open(tdb.DSN), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.GormConfig{Level: level, FullSQL: true}),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err, "connect to postgres")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tdb.DB = db
}

func (tdb *TestDB) migrate() {
	sqlDB, err := tdb.DB.DB()
	require.NoError(tdb.t, err)

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(tdb.t, err, "create migrator")
	require.NoError(tdb.t, m.Up(), "apply migrations")
}

// CreateTenant persists an active tenant and returns its ID
func (tdb *TestDB) CreateTenant() uuid.UUID {
	tdb.t.Helper()

	code := uuid.NewString()[:8]
	tenant, err := identity.NewTenant("t_"+code, fmt.Sprintf("Tenant %s", code))
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormTenantRepository(tdb.DB).Save(context.Background(), tenant))
	return tenant.ID
}
