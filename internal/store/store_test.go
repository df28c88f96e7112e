package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAssignsSequentialIndexes(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	first, err := s.Create(ctx, "id-1", "secret-1")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := s.Create(ctx, "id-2", "secret-2")
	require.NoError(t, err)
	assert.Equal(t, 2, second)
}

func TestCreateRejectsEmptyCredentials(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	for _, pair := range [][2]string{{"", ""}, {"id-only", ""}, {"", "secret-only"}} {
		_, err := s.Create(ctx, pair[0], pair[1])
		require.Error(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file may be written for rejected credentials")
}

func TestCreateSkipsPastHighestIndex(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	// Simulate a store where accounts 1 and 2 were deleted but 5 remains.
	writeAccountFile(t, dir, 5, map[string]any{"client_id": "id-5"})

	next, err := s.Create(ctx, "id-6", "secret-6")
	require.NoError(t, err)
	assert.Equal(t, 6, next)
}

func TestIndexesIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	writeAccountFile(t, dir, 1, map[string]any{})
	writeAccountFile(t, dir, 3, map[string]any{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "account_abc.json"), []byte("{}"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "account_0.json"), []byte("{}"), 0600))

	indexes, err := s.Indexes()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, indexes)
}

func TestIndexesMissingDirectory(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope"))
	indexes, err := s.Indexes()
	require.NoError(t, err)
	assert.Empty(t, indexes)
}

func TestLoadMissingAccountReturnsEmpty(t *testing.T) {
	s := New(t.TempDir())
	acct := s.Load(7)
	assert.Equal(t, Account{}, acct)
	assert.False(t, acct.Authorized())
	assert.False(t, acct.HasCredentials())
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(s.Path(1), []byte("{not json"), 0600))

	assert.Equal(t, Account{}, s.Load(1))
}

func TestSaveMergesIntoExistingRecord(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	index, err := s.Create(ctx, "client-id", "client-secret")
	require.NoError(t, err)

	err = s.Save(ctx, index, Patch{RefreshToken: String("refresh-1")})
	require.NoError(t, err)

	acct := s.Load(index)
	assert.Equal(t, "client-id", acct.ClientID)
	assert.Equal(t, "client-secret", acct.ClientSecret)
	assert.Equal(t, "refresh-1", acct.RefreshToken)
}

func TestSaveTokenUpdateWritesBothFields(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	index, err := s.Create(ctx, "id", "secret")
	require.NoError(t, err)

	err = s.Save(ctx, index, Patch{Token: &TokenUpdate{AccessToken: "at-1", Expiry: 1700000000}})
	require.NoError(t, err)

	acct := s.Load(index)
	assert.Equal(t, "at-1", acct.AccessToken)
	assert.Equal(t, int64(1700000000), acct.TokenExpiry)
}

func TestSaveDoesNotClobberRefreshToken(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	index, err := s.Create(ctx, "id", "secret")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, index, Patch{RefreshToken: String("keep-me")}))

	// A token-only refresh must leave the refresh token alone.
	err = s.Save(ctx, index, Patch{Token: &TokenUpdate{AccessToken: "at-2", Expiry: 99}})
	require.NoError(t, err)

	acct := s.Load(index)
	assert.Equal(t, "keep-me", acct.RefreshToken)
	assert.Equal(t, "at-2", acct.AccessToken)
}

func TestSavePreservesUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	writeAccountFile(t, dir, 1, map[string]any{
		"client_id": "id",
		"note":      "hand-edited",
	})

	require.NoError(t, s.Save(ctx, 1, Patch{RefreshToken: String("rt")}))

	data, err := os.ReadFile(s.Path(1))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "hand-edited", raw["note"])
	assert.Equal(t, "rt", raw["refresh_token"])
}

func TestSaveOnMissingAccountCreatesFile(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	err := s.Save(ctx, 4, Patch{ClientID: String("late")})
	require.NoError(t, err)

	acct := s.Load(4)
	assert.Equal(t, "late", acct.ClientID)
	assert.True(t, s.Exists(4))
}

func TestDelete(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	index, err := s.Create(ctx, "id", "secret")
	require.NoError(t, err)
	require.True(t, s.Exists(index))

	require.NoError(t, s.Delete(ctx, index))
	assert.False(t, s.Exists(index))

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, index))
}

func TestWrittenFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	s := New(t.TempDir())
	ctx := context.Background()

	index, err := s.Create(ctx, "id", "secret")
	require.NoError(t, err)

	fi, err := os.Stat(s.Path(index))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fi.Mode().Perm())
}

func writeAccountFile(t *testing.T, dir string, index int, raw map[string]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0700))
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	path := filepath.Join(dir, fmt.Sprintf("account_%d.json", index))
	require.NoError(t, os.WriteFile(path, data, 0600))
}
