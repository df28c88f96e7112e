package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zomailer/zomailer-cli/internal/config"
)

func testConfig(accountsURL string) *config.Config {
	cfg := config.Default()
	cfg.AccountsBaseURL = accountsURL
	cfg.RedirectURI = "http://localhost:8000/callback"
	return cfg
}

func TestExchangeSendsAuthorizationCodeGrant(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600}`))
	}))
	defer srv.Close()

	m := NewManager(testConfig(srv.URL))
	tr, err := m.Exchange(context.Background(), "cid", "csecret", "code-123")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", got.Get("grant_type"))
	assert.Equal(t, "cid", got.Get("client_id"))
	assert.Equal(t, "csecret", got.Get("client_secret"))
	assert.Equal(t, "code-123", got.Get("code"))
	assert.Equal(t, "http://localhost:8000/callback", got.Get("redirect_uri"))

	assert.False(t, tr.Rejected())
	assert.Equal(t, "at", tr.AccessToken)
	assert.Equal(t, "rt", tr.RefreshToken)
}

func TestRefreshSendsRefreshTokenGrant(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-2","expires_in":3600}`))
	}))
	defer srv.Close()

	m := NewManager(testConfig(srv.URL))
	tr, err := m.Refresh(context.Background(), "cid", "csecret", "rt-1")
	require.NoError(t, err)

	assert.Equal(t, "refresh_token", got.Get("grant_type"))
	assert.Equal(t, "rt-1", got.Get("refresh_token"))
	assert.Empty(t, tr.RefreshToken)
	assert.False(t, tr.Rejected())
}

func TestProviderErrorIsDataNotFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Zoho reports grant failures with HTTP 200 and an error field.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"invalid_code"}`))
	}))
	defer srv.Close()

	m := NewManager(testConfig(srv.URL))
	tr, err := m.Exchange(context.Background(), "cid", "csecret", "bad")
	require.NoError(t, err)
	assert.True(t, tr.Rejected())
	assert.Equal(t, "invalid_code", tr.Error)
}

func TestExpiryFromDefaultsTo3600(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tr := &TokenResponse{AccessToken: "at"}
	assert.Equal(t, now.Unix()+3600, tr.ExpiryFrom(now))

	tr.ExpiresIn = 120
	assert.Equal(t, now.Unix()+120, tr.ExpiryFrom(now))
}

func TestAuthorizeURL(t *testing.T) {
	cfg := testConfig("https://accounts.zoho.com")
	m := NewManager(cfg)

	raw := m.AuthorizeURL("cid", "state-1")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/oauth/v2/auth", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, cfg.Scope, q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "state-1", q.Get("state"))
}

func TestGenerateStateIsRandom(t *testing.T) {
	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
