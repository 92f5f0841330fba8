package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadConfigForTest resets the flag set (LoadConfig registers flags, which
// panics on a second run against the same CommandLine) and runs LoadConfig
// with the given command-line arguments.
func loadConfigForTest(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	oldArgs := os.Args
	os.Args = append([]string{"dentserver-test"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })
	return LoadConfig()
}

// setTestSecret keeps LoadConfig from generating and writing a key file.
func setTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("DENTSERVER_JWT_SECRET", "config-test-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setTestSecret(t)
	t.Setenv("DENTSERVER_STORE_FILE", filepath.Join(t.TempDir(), "clinic.json"))

	cfg, err := loadConfigForTest(t)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.ListenAddress)
	assert.Equal(t, "8080", cfg.ListenPort)
	assert.Equal(t, 3*time.Second, cfg.SaveInterval)
	assert.True(t, cfg.EnableBackup)
	assert.Equal(t, "config-test-secret", cfg.JwtSecret)
	assert.Equal(t, 8*time.Hour, cfg.TokenLifetime)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 1.0, cfg.LoginRateLimit)
	assert.Equal(t, 5, cfg.LoginRateBurst)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setTestSecret(t)
	t.Setenv("DENTSERVER_LISTEN_ADDRESS", "127.0.0.1")
	t.Setenv("DENTSERVER_LISTEN_PORT", "9090")
	t.Setenv("DENTSERVER_SAVE_INTERVAL", "250ms")
	t.Setenv("DENTSERVER_ENABLE_BACKUP", "false")
	t.Setenv("DENTSERVER_STORE_FILE", filepath.Join(t.TempDir(), "store.json"))

	cfg, err := loadConfigForTest(t)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.ListenAddress)
	assert.Equal(t, "9090", cfg.ListenPort)
	assert.Equal(t, 250*time.Millisecond, cfg.SaveInterval)
	assert.False(t, cfg.EnableBackup)
}

func TestLoadConfig_FlagsBeatEnv(t *testing.T) {
	setTestSecret(t)
	t.Setenv("DENTSERVER_LISTEN_PORT", "9090")
	t.Setenv("DENTSERVER_STORE_FILE", filepath.Join(t.TempDir(), "store.json"))

	cfg, err := loadConfigForTest(t, "-port", "7070")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ListenPort)
}

func TestLoadConfig_BadSaveIntervalFallsBack(t *testing.T) {
	setTestSecret(t)
	t.Setenv("DENTSERVER_SAVE_INTERVAL", "soon")
	t.Setenv("DENTSERVER_STORE_FILE", filepath.Join(t.TempDir(), "store.json"))

	cfg, err := loadConfigForTest(t)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.SaveInterval, "an unparseable interval uses the default, not an error")
}

func TestLoadConfig_StorePathIsDirectory(t *testing.T) {
	setTestSecret(t)
	t.Setenv("DENTSERVER_STORE_FILE", t.TempDir())

	_, err := loadConfigForTest(t)
	assert.Error(t, err)
}

func TestLoadConfig_SecretFromFile(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "jwt.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("  file-secret\n"), 0600))
	t.Setenv("DENTSERVER_JWT_SECRET", "env-secret")
	t.Setenv("DENTSERVER_STORE_FILE", filepath.Join(t.TempDir(), "store.json"))

	cfg, err := loadConfigForTest(t, "-jwt-secret-file", keyFile)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.JwtSecret, "the secret file wins and is trimmed")
}

func TestLoadConfig_MissingSecretFileFallsBackToEnv(t *testing.T) {
	t.Setenv("DENTSERVER_JWT_SECRET", "env-secret")
	t.Setenv("DENTSERVER_STORE_FILE", filepath.Join(t.TempDir(), "store.json"))

	cfg, err := loadConfigForTest(t, "-jwt-secret-file", filepath.Join(t.TempDir(), "no-such.key"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JwtSecret)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes")
	assert.True(t, getEnvBool("TEST_BOOL", false))

	t.Setenv("TEST_BOOL", "0")
	assert.False(t, getEnvBool("TEST_BOOL", true))

	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, getEnvBool("TEST_BOOL", true), "garbage falls back to the default")

	assert.False(t, getEnvBool("TEST_BOOL_UNSET", false))
}
