package database

import (
	"path/filepath"
	"testing"

	"github.com/ddproperty/ddproperty-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, dbType := range []string{"mysql", "mariadb", "postgres", "sqlite", "sqlserver"} {
		t.Run(dbType, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBType: dbType, DBHost: "localhost", DBPort: "1", DBDatabase: "ddproperty"})
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("silent"))
	assert.Equal(t, logger.Error, LogLevel("error"))
	assert.Equal(t, logger.Info, LogLevel("info"))
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(t.TempDir(), "ddproperty.db"),
		DBConnectionLimit: 2,
		DBLogLevel:        "silent",
	}
	db, err := Connect(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}
