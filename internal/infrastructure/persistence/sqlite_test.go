package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupSQLiteDB opens an in-memory database with the production GORM
// settings and callbacks, minus statement caching. A single connection keeps every query on the same
// in-memory database.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := GormConfig(logger.Default.LogMode(logger.Silent))
	cfg.PrepareStmt = false

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	require.NoError(t, RegisterCallbacks(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}
