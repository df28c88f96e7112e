package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/models"
	"github.com/zomailer/zomailer-cli/internal/output"
)

func testApp(t *testing.T) *appctx.App {
	t.Helper()
	t.Setenv("ZOMAILER_CREDENTIALS_DIR", t.TempDir())
	app, err := appctx.NewApp(appctx.GlobalFlags{NoInput: true})
	require.NoError(t, err)
	return app
}

func TestResolveAccountExplicitArg(t *testing.T) {
	app := testApp(t)

	index, err := resolveAccount(app, []string{"3"})
	require.NoError(t, err)
	assert.Equal(t, 3, index)
}

func TestResolveAccountInvalidArg(t *testing.T) {
	app := testApp(t)

	_, err := resolveAccount(app, []string{"zero"})
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)

	_, err = resolveAccount(app, []string{"-1"})
	require.Error(t, err)
}

func TestResolveAccountConfigDefault(t *testing.T) {
	t.Setenv("ZOMAILER_ACCOUNT", "4")
	app := testApp(t)

	index, err := resolveAccount(app, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, index)
}

func TestResolveAccountSingleStored(t *testing.T) {
	app := testApp(t)
	idx, err := app.Store.Create(context.Background(), "id", "secret")
	require.NoError(t, err)

	got, err := resolveAccount(app, nil)
	require.NoError(t, err)
	assert.Equal(t, idx, got)
}

func TestResolveAccountNoneStored(t *testing.T) {
	app := testApp(t)

	_, err := resolveAccount(app, nil)
	require.Error(t, err)
	assert.Contains(t, output.AsError(err).Hint, "accounts add")
}

func TestResolveAccountAmbiguousNonInteractive(t *testing.T) {
	app := testApp(t)
	ctx := context.Background()
	_, err := app.Store.Create(ctx, "a", "1")
	require.NoError(t, err)
	_, err = app.Store.Create(ctx, "b", "2")
	require.NoError(t, err)

	_, err = resolveAccount(app, nil)
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestLoadPayloadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "item.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Consulting\nrate: 150.5\n"), 0600))

	var item models.Item
	require.NoError(t, loadPayloadFile(path, &item))
	assert.Equal(t, "Consulting", item.Name)
	assert.Equal(t, 150.5, item.Rate)
}

func TestLoadPayloadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"customer_id":"9","line_items":[{"item_id":"1","quantity":2}]}`), 0600))

	var inv models.Invoice
	require.NoError(t, loadPayloadFile(path, &inv))
	assert.Equal(t, "9", inv.CustomerID)
	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, 2.0, inv.LineItems[0].Quantity)
}

func TestReadRedirectLine(t *testing.T) {
	got, err := readRedirectLine(strings.NewReader(
		"  http://localhost:8000/callback?code=abc&state=xyz  \n"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/callback?code=abc&state=xyz", got)
}

func TestReadRedirectLineEmpty(t *testing.T) {
	for _, input := range []string{"", "\n", "   \n"} {
		_, err := readRedirectLine(strings.NewReader(input))
		require.Error(t, err)
		assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
	}
}

func TestLoadPayloadFileMissing(t *testing.T) {
	var item models.Item
	err := loadPayloadFile(filepath.Join(t.TempDir(), "nope.yaml"), &item)
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}
