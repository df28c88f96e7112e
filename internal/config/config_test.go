package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://accounts.zoho.com", cfg.AccountsBaseURL)
	assert.Equal(t, "https://www.zohoapis.in/invoice/v3", cfg.APIBaseURL)
	assert.Equal(t, "http://localhost:8000/callback", cfg.RedirectURI)
	assert.Equal(t, "ZohoInvoice.fullaccess.all", cfg.Scope)
	assert.NotEmpty(t, cfg.CredentialsDir)
	assert.Zero(t, cfg.Account)
}

func TestEndpointURLs(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://accounts.zoho.com/oauth/v2/token", cfg.TokenURL())
	assert.Equal(t, "https://accounts.zoho.com/oauth/v2/auth", cfg.AuthURL())

	cfg.AccountsBaseURL = "https://accounts.zoho.eu/"
	assert.Equal(t, "https://accounts.zoho.eu/oauth/v2/token", cfg.TokenURL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ZOMAILER_API_BASE_URL", "https://invoice.example/v3")
	t.Setenv("ZOMAILER_ACCOUNT", "3")
	t.Setenv("ZOMAILER_SCOPE", "ZohoInvoice.invoices.READ")

	cfg := Default()
	LoadFromEnv(cfg)

	assert.Equal(t, "https://invoice.example/v3", cfg.APIBaseURL)
	assert.Equal(t, 3, cfg.Account)
	assert.Equal(t, "ZohoInvoice.invoices.READ", cfg.Scope)
	assert.Equal(t, string(SourceEnv), cfg.Sources["api_base_url"])
}

func TestEnvIgnoresInvalidAccount(t *testing.T) {
	t.Setenv("ZOMAILER_ACCOUNT", "zero")

	cfg := Default()
	LoadFromEnv(cfg)
	assert.Zero(t, cfg.Account)
}

func TestFlagOverridesWinOverEnv(t *testing.T) {
	t.Setenv("ZOMAILER_ACCOUNT", "2")
	t.Setenv("ZOMAILER_CREDENTIALS_DIR", "/from/env")

	cfg := Default()
	LoadFromEnv(cfg)
	ApplyOverrides(cfg, FlagOverrides{Account: 5, CredentialsDir: "/from/flag"})

	assert.Equal(t, 5, cfg.Account)
	assert.Equal(t, "/from/flag", cfg.CredentialsDir)
	assert.Equal(t, string(SourceFlag), cfg.Sources["account"])
	assert.Equal(t, string(SourceFlag), cfg.Sources["credentials_dir"])
}

func TestLoadFromFileMergesKnownKeys(t *testing.T) {
	cfg := Default()
	dir := t.TempDir()
	path := dir + "/config.json"
	require.NoError(t, writeFile(path, `{"api_base_url":"https://www.zohoapis.com/invoice/v3","account":2,"unknown_key":true}`))

	loadFromFile(cfg, path, SourceGlobal)
	assert.Equal(t, "https://www.zohoapis.com/invoice/v3", cfg.APIBaseURL)
	assert.Equal(t, 2, cfg.Account)
	assert.Equal(t, string(SourceGlobal), cfg.Sources["account"])
}

func TestLoadFromFileSkipsMalformed(t *testing.T) {
	cfg := Default()
	dir := t.TempDir()
	path := dir + "/config.json"
	require.NoError(t, writeFile(path, `{broken`))

	loadFromFile(cfg, path, SourceGlobal)
	assert.Equal(t, "https://www.zohoapis.in/invoice/v3", cfg.APIBaseURL)
}
