// Package testutil provides mocks and helpers shared by the reconciler's
// package tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB is a GORM handle whose statements are scripted through Mock
type MockDB struct {
	DB   *gorm.DB
	SQL  *sql.DB
	Mock sqlmock.Sqlmock
}

// NewMockDB creates a postgres-dialect GORM handle over sqlmock. Pings are
// monitored so readiness checks can be scripted with Mock.ExpectPing.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, SQL: mockDB, Mock: mock}
}

// ExpectationsWereMet fails t if a scripted statement never ran
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewTestUUID derives a stable UUID from seed, so fixtures and assertions
// can name the same entity without sharing a variable
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("reconciler/"+seed))
}

// TestTenantID is the tenant carried by the tokens of handler tests
func TestTenantID() uuid.UUID { return NewTestUUID("tenant") }

// TestUserID is the subject of the tokens of handler tests
func TestUserID() uuid.UUID { return NewTestUUID("user") }
