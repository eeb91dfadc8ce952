package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alertlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
api_key: file-key
account_id: "1234567"
port: 8080
request_timeout: 5s
max_pages: 20
enrich_concurrency: 3
log_level: debug
`)

	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "file-key", s.APIKey)
	assert.Equal(t, "1234567", s.AccountID)
	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, 5*time.Second, s.RequestTimeout.Std())
	assert.Equal(t, 20, s.MaxPages)
	assert.Equal(t, 3, s.EnrichConcurrency)
	assert.Equal(t, DefaultGraphQLEndpoint, s.GraphQLEndpoint)
}

func TestLoad_LegacyEnvVariables(t *testing.T) {
	t.Setenv("NEW_RELIC_API_KEY", "env-key")
	t.Setenv("ACCOUNT_ID", "7654321")

	path := writeConfig(t, "port: 3000\n")
	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "7654321", s.AccountID)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("ALERTLENS_API_KEY", "override-key")
	t.Setenv("ACCOUNT_ID", "1")

	path := writeConfig(t, "api_key: file-key\naccount_id: \"1\"\n")
	s, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "override-key", s.APIKey)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	path := writeConfig(t, "account_id: \"1\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoad_MissingAccountID(t *testing.T) {
	path := writeConfig(t, "api_key: k\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account_id")
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_DefaultsApplied(t *testing.T) {
	s := &Settings{APIKey: "k", AccountID: "1"}
	require.NoError(t, s.Validate())

	assert.Equal(t, DefaultGraphQLEndpoint, s.GraphQLEndpoint)
	assert.Equal(t, DefaultRequestTimeout, s.RequestTimeout.Std())
	assert.Equal(t, DefaultMaxPages, s.MaxPages)
	assert.Equal(t, DefaultEnrichConcurrency, s.EnrichConcurrency)
	assert.Equal(t, DefaultPort, s.Port)
}

func TestAddr(t *testing.T) {
	s := &Settings{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", s.Addr())
}
