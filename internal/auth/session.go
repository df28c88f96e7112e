package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/zomailer/zomailer-cli/internal/config"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/store"
)

// ErrUnauthorizedAccount marks an account that has no refresh token yet
// and cannot produce an access token until the consent flow completes.
var ErrUnauthorizedAccount = errors.New("account is not authorized")

// Pending tracks an authorization flow that has started but not finished.
// At most one flow is pending per session; starting a new one silently
// replaces the old.
type Pending struct {
	Index    int
	ClientID string
	State    string
	Started  time.Time
}

// Session is the facade commands talk to. It hides token freshness: ask
// for an access token and the session refreshes behind the scenes when
// the stored one is expired or missing.
type Session struct {
	cfg     *config.Config
	store   *store.Store
	tokens  *Manager
	pending *Pending

	now func() time.Time
}

// NewSession creates a session over the given store and token manager.
func NewSession(cfg *config.Config, st *store.Store, tokens *Manager) *Session {
	return &Session{
		cfg:    cfg,
		store:  st,
		tokens: tokens,
		now:    time.Now,
	}
}

// AccessToken returns a usable access token for the account, refreshing
// if the stored one expires within the safety margin. Returns
// ErrUnauthorizedAccount when the account has never been authorized.
// Accounts without a refresh token are refused outright, even when a
// stray access token is still cached.
func (s *Session) AccessToken(ctx context.Context, index int) (string, error) {
	acct := s.store.Load(index)
	if !acct.Authorized() {
		return "", fmt.Errorf("account %d: %w", index, ErrUnauthorizedAccount)
	}
	if acct.AccessToken != "" && !s.expired(acct.TokenExpiry) {
		return acct.AccessToken, nil
	}
	return s.refresh(ctx, index, acct)
}

// Refresh forces a token refresh for the account regardless of expiry.
func (s *Session) Refresh(ctx context.Context, index int) (string, error) {
	return s.refresh(ctx, index, s.store.Load(index))
}

// expired reports whether a stored expiry is within the safety margin of
// now. A zero expiry counts as expired.
func (s *Session) expired(expiry int64) bool {
	if expiry == 0 {
		return true
	}
	return s.now().Add(expirySkew).Unix() >= expiry
}

func (s *Session) refresh(ctx context.Context, index int, acct store.Account) (string, error) {
	if !acct.Authorized() {
		return "", fmt.Errorf("account %d: %w", index, ErrUnauthorizedAccount)
	}
	if !acct.HasCredentials() {
		return "", output.ErrAuth(fmt.Sprintf("Account %d has no client credentials", index))
	}

	tr, err := s.tokens.Refresh(ctx, acct.ClientID, acct.ClientSecret, acct.RefreshToken)
	if err != nil {
		return "", err
	}
	if tr.Rejected() {
		return "", output.ErrAuth(fmt.Sprintf("Token refresh rejected for account %d: %s", index, tr.Error))
	}

	patch := store.Patch{
		Token: &store.TokenUpdate{AccessToken: tr.AccessToken, Expiry: tr.ExpiryFrom(s.now())},
	}
	// Zoho normally omits refresh_token on refresh; only persist it when
	// the provider actually rotated it.
	if tr.RefreshToken != "" {
		patch.RefreshToken = store.String(tr.RefreshToken)
	}
	if err := s.store.Save(ctx, index, patch); err != nil {
		return "", err
	}
	return tr.AccessToken, nil
}

// BeginAuthorization opens a pending authorization slot for the account
// and returns the consent URL plus the index of any flow it displaced.
func (s *Session) BeginAuthorization(index int) (authURL string, displaced int, err error) {
	acct := s.store.Load(index)
	if !acct.HasCredentials() {
		return "", 0, output.ErrAuth(fmt.Sprintf("Account %d has no client credentials", index))
	}

	state, err := GenerateState()
	if err != nil {
		return "", 0, err
	}

	if s.pending != nil {
		displaced = s.pending.Index
	}
	s.pending = &Pending{
		Index:    index,
		ClientID: acct.ClientID,
		State:    state,
		Started:  s.now(),
	}
	return s.tokens.AuthorizeURL(acct.ClientID, state), displaced, nil
}

// Pending returns the pending authorization, or nil if none is active.
func (s *Session) Pending() *Pending {
	return s.pending
}

// HandleRedirect completes the pending authorization from the redirect
// URL the browser landed on. The pending slot is cleared whether the
// exchange succeeds or not.
func (s *Session) HandleRedirect(ctx context.Context, redirectURL string) (int, error) {
	pending := s.pending
	defer func() { s.pending = nil }()

	if pending == nil {
		return 0, output.ErrUsage("No authorization is in progress")
	}

	code, state, err := parseRedirect(redirectURL)
	if err != nil {
		return 0, err
	}
	if pending.State != "" && state != pending.State {
		return 0, output.ErrAuth("Authorization state mismatch")
	}

	acct := s.store.Load(pending.Index)
	tr, err := s.tokens.Exchange(ctx, acct.ClientID, acct.ClientSecret, code)
	if err != nil {
		return 0, err
	}
	if tr.Rejected() {
		return 0, output.ErrAuth(fmt.Sprintf("Authorization code exchange rejected: %s", tr.Error))
	}

	patch := store.Patch{
		Token: &store.TokenUpdate{AccessToken: tr.AccessToken, Expiry: tr.ExpiryFrom(s.now())},
	}
	if tr.RefreshToken != "" {
		patch.RefreshToken = store.String(tr.RefreshToken)
	}
	if err := s.store.Save(ctx, pending.Index, patch); err != nil {
		return 0, err
	}
	return pending.Index, nil
}

// parseRedirect extracts the authorization code and state from a redirect
// URL. A missing code is a usage error: the user pasted the wrong URL or
// the provider redirected with an error parameter.
func parseRedirect(redirectURL string) (code, state string, err error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", "", output.ErrUsageHint("Cannot parse redirect URL", err.Error())
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", "", output.ErrAuth("Authorization denied: " + e)
	}
	code = q.Get("code")
	if code == "" {
		return "", "", output.ErrUsageHint("Redirect URL carries no authorization code",
			"Paste the full URL from the browser address bar after approving access")
	}
	return code, q.Get("state"), nil
}
