package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/perecibles-api/pkg/config"
)

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	cfg, err := config.Load()
	require.Error(t, err, "sólo postgres y memory son válidos")
	assert.Nil(t, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DASHBOARD_TIMEOUT_SECONDS", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, 3*time.Second, cfg.Dashboard.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 300*time.Second, cfg.Jobs.LockTTL)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "perecibles", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/perecibles?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
