package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, int64(24*60*60), cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadFirestoreRequiresProject(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "firestore")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "your-secret-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_EXPIRY", "60")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "3")
	t.Setenv("BOOTSTRAP_ADMIN", "root")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, int64(60), cfg.JWTExpiry)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 3, cfg.LoginRatePerMinute)
	assert.Equal(t, "root", cfg.BootstrapAdmin)
}
