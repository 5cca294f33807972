package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"agrilink-storefront/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, role string, expires time.Time) string {
	t.Helper()
	claims := &Claims{
		Email: "grower@example.com",
		Role:  role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestInspectToken(t *testing.T) {
	token := signToken(t, "farmer", time.Now().Add(time.Hour))

	claims, err := InspectToken(token)
	require.NoError(t, err)
	assert.Equal(t, "farmer", claims.Role)
	assert.Equal(t, "grower@example.com", claims.Email)

	_, err = InspectToken("opaque-token")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, TokenExpired(signToken(t, "buyer", now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired(signToken(t, "buyer", now.Add(time.Minute)), now))
	assert.False(t, TokenExpired("opaque-token", now))
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT_SEC", "STORAGE_DRIVER", "STATE_FILE", "STOREFRONT_CONFIG", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
}

func TestLoadConfigWithoutDotEnvLogs(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("STOREFRONT_CONFIG", "")
	hook := test.NewGlobal()

	_, err = LoadConfig()
	require.NoError(t, err)

	require.NotEmpty(t, hook.AllEntries())
	entry := hook.AllEntries()[0]
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Contains(t, entry.Message, "No .env file found")
	assert.NotNil(t, entry.Data[logrus.ErrorKey])
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	yml := "port: \"9100\"\napi:\n  base_url: http://backend.local/api/v1\n  timeout: 30s\nstorage:\n  driver: memory\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("STOREFRONT_CONFIG", path)
	t.Setenv("PORT", "9200")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_TIMEOUT_SEC", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9200", cfg.Port)
	assert.Equal(t, "http://backend.local/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "s3"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Storage.StateFile = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.API.Timeout = 0
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestOpenStorage(t *testing.T) {
	mem, err := OpenStorage(context.Background(), StorageConfig{Driver: StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, mem)

	file, err := OpenStorage(context.Background(), StorageConfig{Driver: StorageFile, StateFile: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, file)

	_, err = OpenStorage(context.Background(), StorageConfig{Driver: "tape"})
	assert.Error(t, err)
}
