package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_InvalidStorage(t *testing.T) {
	t.Setenv("LEDGER_STORAGE", "redis")
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_LedgerFromEnv(t *testing.T) {
	t.Setenv("LEDGER_STORAGE", "MEMORY")
	t.Setenv("LEDGER_LOCK_TIMEOUT", "750ms")
	t.Setenv("LEDGER_RETRY_ATTEMPTS", "5")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Ledger.Storage)
	assert.Equal(t, 750*time.Millisecond, cfg.Ledger.LockTimeout)
	assert.Equal(t, 5, cfg.Ledger.RetryAttempts)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_LockTimeoutInMilliseconds(t *testing.T) {
	t.Setenv("LEDGER_STORAGE", "memory")
	t.Setenv("LEDGER_LOCK_TIMEOUT", "2000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Ledger.LockTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{
		App:    AppConfig{Env: "development"},
		Ledger: LedgerConfig{Storage: StoragePostgres, LockTimeout: time.Second},
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.Ledger.Storage = "redis"
	assert.Error(t, bad.Validate(), "backend desconocido debe fallar")

	bad = base
	bad.Ledger.LockTimeout = 0
	assert.Error(t, bad.Validate())

	bad = base
	bad.App.Env = "production"
	assert.Error(t, bad.Validate(), "production exige JWT_SECRET")
}

func TestDBConfig_DSNEscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "ledger", Password: "p@ss/word", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://ledger:p%40ss%2Fword@db:5432/stock?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
