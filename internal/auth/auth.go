// Package auth implements the Zoho OAuth token lifecycle: authorization
// code exchange, refresh, and the session layer that keeps accounts
// holding a usable access token.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zomailer/zomailer-cli/internal/config"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/version"
)

// DefaultExpirySecs is assumed when the token endpoint omits expires_in.
const DefaultExpirySecs = 3600

// expirySkew is subtracted from the token lifetime so a token is treated
// as expired slightly before the provider would reject it.
const expirySkew = 30 * time.Second

// TokenResponse is the token endpoint's payload. Zoho reports failures in
// the body with HTTP 200, so Error must be checked even on success.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	APIDomain    string `json:"api_domain"`
	TokenType    string `json:"token_type"`
	Error        string `json:"error"`
}

// Rejected reports whether the provider declined the request.
func (r *TokenResponse) Rejected() bool {
	return r.Error != "" || r.AccessToken == ""
}

// ExpiryFrom computes the absolute expiry timestamp for a token issued at
// the given moment.
func (r *TokenResponse) ExpiryFrom(now time.Time) int64 {
	secs := r.ExpiresIn
	if secs <= 0 {
		secs = DefaultExpirySecs
	}
	return now.Add(time.Duration(secs) * time.Second).Unix()
}

// Manager talks to the Zoho accounts server.
type Manager struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewManager creates a token manager.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Exchange trades an authorization code for tokens.
func (m *Manager) Exchange(ctx context.Context, clientID, clientSecret, code string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"redirect_uri":  {m.cfg.RedirectURI},
		"code":          {code},
	}
	return m.postToken(ctx, form)
}

// Refresh obtains a fresh access token from a refresh token.
func (m *Manager) Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenResponse, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
	}
	return m.postToken(ctx, form)
}

func (m *Manager) postToken(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, output.ErrNetwork(err)
	}

	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, output.ErrAPI(resp.StatusCode,
			fmt.Sprintf("Token endpoint returned unparseable response (HTTP %d)", resp.StatusCode))
	}
	return &tr, nil
}

// AuthorizeURL builds the consent page URL for the given client.
func (m *Manager) AuthorizeURL(clientID, state string) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {clientID},
		"scope":         {m.cfg.Scope},
		"redirect_uri":  {m.cfg.RedirectURI},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	if state != "" {
		q.Set("state", state)
	}
	return m.cfg.AuthURL() + "?" + q.Encode()
}
