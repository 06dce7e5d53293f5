package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestParseEnv_OverlaysSetVariables(t *testing.T) {
	origDotenv := dotenvFile
	t.Cleanup(func() { dotenvFile = origDotenv })
	dotenvFile = filepath.Join(t.TempDir(), "missing.env")

	t.Setenv("GRPC_ADDR", ":6000")
	t.Setenv("HTTP_ADDR", ":6001")
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_RETENTION", "2d")
	t.Setenv("ISSUER_KEY", "issuer")
	unsetEnv(t, "LOG_LEVEL")

	c := &Config{LogLevel: "warn", RedisRetention: time.Hour}
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":6000", c.EndpointAddrGRPC)
	assert.Equal(t, ":6001", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, 3, c.RedisDB)
	assert.Equal(t, 48*time.Hour, c.RedisRetention)
	assert.Equal(t, "issuer", c.IssuerKey)
	assert.Equal(t, "warn", c.LogLevel, "unset variables keep the current value")
}

func TestParseEnv_ReadsDotenvFile(t *testing.T) {
	origDotenv := dotenvFile
	t.Cleanup(func() { dotenvFile = origDotenv })

	dotenvFile = filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenvFile, []byte("JWT_ACCESS_SECRET=from-file\nJWT_REFRESH_SECRET=also-from-file\n"), 0o600))

	unsetEnv(t, "JWT_ACCESS_SECRET")
	t.Setenv("JWT_REFRESH_SECRET", "from-env")

	c := &Config{}
	require.NoError(t, parseEnv(c))

	assert.Equal(t, "from-file", c.AccessTokenSecret)
	assert.Equal(t, "from-env", c.RefreshTokenSecret, "environment wins over the file")
}

func TestParseEnv_BadValues(t *testing.T) {
	origDotenv := dotenvFile
	t.Cleanup(func() { dotenvFile = origDotenv })
	dotenvFile = filepath.Join(t.TempDir(), "missing.env")

	t.Run("redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "zero")
		assert.Error(t, parseEnv(&Config{}))
	})

	t.Run("retention", func(t *testing.T) {
		t.Setenv("REDIS_RETENTION", "forever")
		assert.Error(t, parseEnv(&Config{}))
	})
}
