package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPENSE_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("EXPENSE_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("EXPENSE_TEST_KEY"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("EXPENSE_TEST_KEY"))

	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
}

func TestLoadEnvFile_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPENSE_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("EXPENSE_TEST_KEY", "from-env")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("EXPENSE_TEST_KEY"))
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "x.db"))
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid port")
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, applog.ComponentWorker)
	require.NotNil(t, logger)
	assert.Equal(t, applog.ComponentWorker, logger.Component())
}
