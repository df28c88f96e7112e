// Package store persists per-account OAuth credentials as JSON files.
//
// Each account lives in its own file named account_N.json inside the
// credentials directory, where N is a positive integer index. Files are
// written atomically and partial updates merge into the existing record
// rather than replacing it, so a token refresh never clobbers fields it
// does not touch.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/zomailer/zomailer-cli/internal/output"
)

// Account is one stored credential record. All fields are optional on
// disk; a freshly created account carries only client_id and client_secret.
type Account struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	TokenExpiry  int64  `json:"token_expiry_timestamp,omitempty"`
}

// Authorized reports whether the account has completed the consent flow.
func (a Account) Authorized() bool {
	return a.RefreshToken != ""
}

// HasCredentials reports whether the account carries an OAuth client pair.
func (a Account) HasCredentials() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}

// TokenUpdate couples an access token with its expiry. The two are only
// ever written together.
type TokenUpdate struct {
	AccessToken string
	Expiry      int64
}

// Patch describes a partial update to an account record. Nil fields are
// left untouched; non-nil fields overwrite, including to the empty string.
type Patch struct {
	ClientID     *string
	ClientSecret *string
	RefreshToken *string
	Token        *TokenUpdate
}

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }

// Store manages the credentials directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the credentials directory path.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path for the given account index.
func (s *Store) Path(index int) string {
	return filepath.Join(s.dir, fmt.Sprintf("account_%d.json", index))
}

// Indexes returns the sorted indexes of all stored accounts. Files whose
// names do not match the account_N.json pattern are ignored.
func (s *Store) Indexes() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, output.ErrStorage("Cannot read credentials directory", err)
	}

	var indexes []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if n, ok := parseIndex(entry.Name()); ok {
			indexes = append(indexes, n)
		}
	}
	sort.Ints(indexes)
	return indexes, nil
}

func parseIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "account_") || !strings.HasSuffix(name, ".json") {
		return 0, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, "account_"), ".json")
	n, err := strconv.Atoi(stem)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Exists reports whether an account file exists for the given index.
func (s *Store) Exists(index int) bool {
	_, err := os.Stat(s.Path(index))
	return err == nil
}

// Load reads the account at index. A missing or unreadable file yields an
// empty record so a broken account can be repaired by re-entering
// credentials rather than blocking every operation.
func (s *Store) Load(index int) Account {
	raw := s.loadRaw(index)
	var acct Account
	b, err := json.Marshal(raw)
	if err != nil {
		return Account{}
	}
	if err := json.Unmarshal(b, &acct); err != nil {
		return Account{}
	}
	return acct
}

// loadRaw reads the account file as a generic map, preserving any keys the
// Account struct does not model. Corrupt or missing files yield an empty map.
func (s *Store) loadRaw(index int) map[string]any {
	data, err := os.ReadFile(s.Path(index))
	if err != nil {
		return map[string]any{}
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]any{}
	}
	return raw
}

// Save applies a partial update to the account at index. The existing
// record is read, the patch merged in, and the result written atomically.
// Unknown keys in the file survive the round trip.
func (s *Store) Save(ctx context.Context, index int, patch Patch) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	raw := s.loadRaw(index)
	applyPatch(raw, patch)
	return s.writeRaw(index, raw)
}

func applyPatch(raw map[string]any, patch Patch) {
	if patch.ClientID != nil {
		raw["client_id"] = *patch.ClientID
	}
	if patch.ClientSecret != nil {
		raw["client_secret"] = *patch.ClientSecret
	}
	if patch.RefreshToken != nil {
		raw["refresh_token"] = *patch.RefreshToken
	}
	if patch.Token != nil {
		raw["access_token"] = patch.Token.AccessToken
		raw["token_expiry_timestamp"] = patch.Token.Expiry
	}
}

// Create allocates the next free index, writes the client credentials,
// and returns the new index. Indexes are never reused while a higher one
// exists: the new index is one past the current maximum. Both credential
// values must be non-empty.
func (s *Store) Create(ctx context.Context, clientID, clientSecret string) (int, error) {
	if clientID == "" || clientSecret == "" {
		return 0, output.ErrUsage("Client ID and client secret must not be empty")
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	indexes, err := s.Indexes()
	if err != nil {
		return 0, err
	}
	next := 1
	if len(indexes) > 0 {
		next = indexes[len(indexes)-1] + 1
	}

	raw := map[string]any{
		"client_id":     clientID,
		"client_secret": clientSecret,
	}
	if err := s.writeRaw(next, raw); err != nil {
		return 0, err
	}
	return next, nil
}

// Delete removes the account file at index. Deleting an absent account
// is a no-op.
func (s *Store) Delete(ctx context.Context, index int) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	err = os.Remove(s.Path(index))
	if err != nil && !os.IsNotExist(err) {
		return output.ErrStorage("Cannot delete account file", err)
	}
	return nil
}

// writeRaw writes the record atomically: temp file in the same directory,
// 0600 permissions, then rename over the target.
func (s *Store) writeRaw(index int, raw map[string]any) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return output.ErrStorage("Cannot create credentials directory", err)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return output.ErrStorage("Cannot encode account record", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".account-*.tmp")
	if err != nil {
		return output.ErrStorage("Cannot create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return output.ErrStorage("Cannot set file permissions", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return output.ErrStorage("Cannot write account file", err)
	}
	if err := tmp.Close(); err != nil {
		return output.ErrStorage("Cannot write account file", err)
	}

	target := s.Path(index)
	if err := os.Rename(tmpPath, target); err != nil {
		if runtime.GOOS == "windows" {
			// Windows cannot rename over an existing file.
			os.Remove(target)
			if err2 := os.Rename(tmpPath, target); err2 == nil {
				return nil
			}
		}
		return output.ErrStorage("Cannot write account file", err)
	}
	return nil
}

// lock takes a directory-wide advisory lock guarding read-modify-write
// cycles. Locking fails open: if the lock cannot be acquired quickly the
// operation proceeds unlocked, since a stuck lock file must not brick the
// credential store.
func (s *Store) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return nil, output.ErrStorage("Cannot create credentials directory", err)
	}

	fl := flock.New(filepath.Join(s.dir, ".lock"))
	lockCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil || !locked {
		return func() {}, nil
	}
	return func() { _ = fl.Unlock() }, nil
}
