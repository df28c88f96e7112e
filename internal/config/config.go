// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the resolved configuration.
type Config struct {
	// Zoho endpoints
	AccountsBaseURL string `json:"accounts_base_url"`
	APIBaseURL      string `json:"api_base_url"`
	APIConsoleURL   string `json:"api_console_url"`

	// OAuth settings
	RedirectURI string `json:"redirect_uri"`
	Scope       string `json:"scope"`

	// Storage
	CredentialsDir string `json:"credentials_dir"`

	// Default account index (0 = none selected)
	Account int `json:"account"`

	// Output settings
	Format string `json:"format"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	Account        int
	CredentialsDir string
	Format         string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		AccountsBaseURL: "https://accounts.zoho.com",
		APIBaseURL:      "https://www.zohoapis.in/invoice/v3",
		APIConsoleURL:   "https://api-console.zoho.com/",
		RedirectURI:     "http://localhost:8000/callback",
		Scope:           "ZohoInvoice.fullaccess.all",
		CredentialsDir:  defaultCredentialsDir(),
		Format:          "auto",
		Sources:         make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, systemConfigPath(), SourceSystem)
	loadFromFile(cfg, globalConfigPath(), SourceGlobal)

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	setString := func(key string, dst *string) {
		if v, ok := fileCfg[key].(string); ok && v != "" {
			*dst = v
			cfg.Sources[key] = string(source)
		}
	}

	setString("accounts_base_url", &cfg.AccountsBaseURL)
	setString("api_base_url", &cfg.APIBaseURL)
	setString("api_console_url", &cfg.APIConsoleURL)
	setString("redirect_uri", &cfg.RedirectURI)
	setString("scope", &cfg.Scope)
	setString("credentials_dir", &cfg.CredentialsDir)
	setString("format", &cfg.Format)

	if v, ok := fileCfg["account"].(float64); ok && v == float64(int(v)) && int(v) > 0 {
		cfg.Account = int(v)
		cfg.Sources["account"] = string(source)
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	setEnv := func(name, key string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
			cfg.Sources[key] = string(SourceEnv)
		}
	}

	setEnv("ZOMAILER_ACCOUNTS_BASE_URL", "accounts_base_url", &cfg.AccountsBaseURL)
	setEnv("ZOMAILER_API_BASE_URL", "api_base_url", &cfg.APIBaseURL)
	setEnv("ZOMAILER_REDIRECT_URI", "redirect_uri", &cfg.RedirectURI)
	setEnv("ZOMAILER_SCOPE", "scope", &cfg.Scope)
	setEnv("ZOMAILER_CREDENTIALS_DIR", "credentials_dir", &cfg.CredentialsDir)
	setEnv("ZOMAILER_FORMAT", "format", &cfg.Format)

	if v := os.Getenv("ZOMAILER_ACCOUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Account = n
			cfg.Sources["account"] = string(SourceEnv)
		}
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.Account > 0 {
		cfg.Account = o.Account
		cfg.Sources["account"] = string(SourceFlag)
	}
	if o.CredentialsDir != "" {
		cfg.CredentialsDir = o.CredentialsDir
		cfg.Sources["credentials_dir"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// TokenURL returns the OAuth token endpoint.
func (cfg *Config) TokenURL() string {
	return NormalizeBaseURL(cfg.AccountsBaseURL) + "/oauth/v2/token"
}

// AuthURL returns the OAuth authorization (consent) endpoint.
func (cfg *Config) AuthURL() string {
	return NormalizeBaseURL(cfg.AccountsBaseURL) + "/oauth/v2/auth"
}

// Path helpers

func systemConfigPath() string {
	return "/etc/zomailer/config.json"
}

func globalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "zomailer")
}

func defaultCredentialsDir() string {
	return filepath.Join(GlobalConfigDir(), "credentials")
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
