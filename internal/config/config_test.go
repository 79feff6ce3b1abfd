package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MAIL_RELAY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "3001", cfg.Server.Port)
	require.Equal(t, BackendFile, cfg.Store.Backend)
	require.Equal(t, "data/patients.json", cfg.Store.DataFile)
	require.Equal(t, RelaySMTP, cfg.Mail.Relay)
	require.Equal(t, 587, cfg.Mail.Port)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.False(t, cfg.RateLimit.Enabled)
	require.Equal(t, "", cfg.Redis.Addr())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "subcentre_test")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("MAIL_RELAY", "redis")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, BackendMongo, cfg.Store.Backend)
	require.Equal(t, "subcentre_test", cfg.MongoDB.Database)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, RelayRedis, cfg.Mail.Relay)
	require.True(t, cfg.RateLimit.Enabled)
	require.Equal(t, 0.5, cfg.RateLimit.RPS)
}

func TestLoadConfigRejectsBadBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "excel")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "unknown STORE_BACKEND")

	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("MAIL_RELAY", "pigeon")
	_, err = LoadConfig()
	require.ErrorContains(t, err, "MAIL_RELAY")
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("PATIENTS_API_URL", "http://centre.local:3001/")
	cfg := LoadClientConfig()
	require.Equal(t, "http://centre.local:3001", cfg.APIURL)
	require.Zero(t, cfg.Timeout)
	require.False(t, cfg.MinIO.Enabled())
	require.Equal(t, "subcentre-exports", cfg.MinIO.Bucket)

	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	require.True(t, LoadClientConfig().MinIO.Enabled())
}
