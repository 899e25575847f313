package database

import (
	"testing"

	"github.com/mroshb/anonchat_bot/internal/config"
	"github.com/mroshb/anonchat_bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{config.DriverPostgres, "postgres", false},
		{config.DriverMySQL, "mysql", false},
		{config.DriverSQLite, "sqlite", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBDriver: tt.driver, DBDSN: "file::memory:"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	db, err := Connect(&config.Config{
		DBDriver: config.DriverSQLite,
		DBDSN:    "file::memory:",
		AppEnv:   "test",
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []interface{}{&models.User{}, &models.Block{}, &models.Report{}, &models.ChatSessionLog{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}
