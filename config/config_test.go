package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "STORE_DRIVER", "MONGODB_URL", "MONGODB_DATABASE", "DATABASE_URL",
	"MIGRATIONS_DIR", "RABBITMQ_URL", "SECRET_KEY", "CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	"ADMIN_EMAIL", "ADMIN_PASSWORD",
}

// clearEnv empties every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "restaurant", cfg.MongoDatabase)
	assert.Equal(t, []string{"http://localhost:9000"}, cfg.CORSOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=9090\nSTORE_DRIVER=postgres\nDATABASE_URL=postgres://pos@localhost/pos\n" +
		"SECRET_KEY=from-file\nCORS_ORIGINS=http://a.test, http://b.test,\nLOG_FORMAT=TEXT\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SECRET_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"bad port", map[string]string{"SECRET_KEY": "k", "PORT": "http"}},
		{"unknown driver", map[string]string{"SECRET_KEY": "k", "STORE_DRIVER": "sqlite"}},
		{"postgres without url", map[string]string{"SECRET_KEY": "k", "STORE_DRIVER": "postgres"}},
		{"unknown log format", map[string]string{"SECRET_KEY": "k", "LOG_FORMAT": "xml"}},
		{"admin email without password", map[string]string{"SECRET_KEY": "k", "ADMIN_EMAIL": "a@b.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
