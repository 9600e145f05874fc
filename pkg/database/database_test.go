package database

import (
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"github.com/hashicorp-forge/search-provisioner/pkg/models"
)

func TestConnect_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	db, err := Connect(Config{Path: path}, hclog.NewNullLogger())
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.SearchServer{}))
	assert.True(t, db.Migrator().HasTable(&models.Subscription{}))
	assert.FileExists(t, path)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 5, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_CustomPool(t *testing.T) {
	db, err := Connect(Config{
		Driver:       DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "state.db"),
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestConnect_Errors(t *testing.T) {
	_, err := Connect(Config{Driver: "mysql"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")

	_, err = Connect(Config{Driver: DriverSQLite}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite path is required")
}

func TestDialectorFor_Postgres(t *testing.T) {
	d, err := dialectorFor(Config{
		Driver: DriverPostgres,
		Host:   "db.internal",
		User:   "provisioner",
		DBName: "search",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	pg, ok := d.(*postgres.Dialector)
	require.True(t, ok)
	assert.Equal(t, "host=db.internal port=5432 user=provisioner password= dbname=search sslmode=disable", pg.Config.DSN)
}
