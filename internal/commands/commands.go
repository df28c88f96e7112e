// Package commands defines the command tree.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/auth"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/tui"
)

func isUnauthorized(err error) bool {
	return errors.Is(err, auth.ErrUnauthorizedAccount)
}

// Register adds all top-level commands to the root.
func Register(root *cobra.Command) {
	root.AddCommand(NewAccountsCmd())
	root.AddCommand(NewAuthCmd())
	root.AddCommand(NewOrgsCmd())
	root.AddCommand(NewItemsCmd())
	root.AddCommand(NewCustomersCmd())
	root.AddCommand(NewInvoicesCmd())
	root.AddCommand(NewConsoleCmd())
}

// resolveAccount decides which account a command acts on: an explicit
// positional argument wins, then the --account flag or config default,
// then an interactive picker when exactly that is possible.
func resolveAccount(app *appctx.App, args []string) (int, error) {
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return 0, output.ErrUsage(fmt.Sprintf("Invalid account index %q", args[0]))
		}
		return n, nil
	}

	if app.Config.Account > 0 {
		return app.Config.Account, nil
	}

	indexes, err := app.Store.Indexes()
	if err != nil {
		return 0, err
	}
	switch len(indexes) {
	case 0:
		return 0, output.ErrUsageHint("No accounts configured", "Run: zomailer accounts add")
	case 1:
		return indexes[0], nil
	}

	if !app.IsInteractive() {
		return 0, output.ErrUsageHint("Multiple accounts configured",
			"Pass --account or set ZOMAILER_ACCOUNT")
	}

	items := make([]tui.PickerItem, len(indexes))
	for i, idx := range indexes {
		acct := app.Store.Load(idx)
		desc := "not authorized"
		if acct.Authorized() {
			desc = "authorized"
		}
		items[i] = tui.PickerItem{
			ID:          strconv.Itoa(idx),
			Title:       fmt.Sprintf("Account %d", idx),
			Description: desc,
		}
	}
	picked, err := tui.PickAccount(items)
	if err != nil {
		return 0, err
	}
	if picked == nil {
		return 0, output.ErrUsage("No account selected")
	}
	return strconv.Atoi(picked.ID)
}

// resolveOrg decides which organization to act in: the --org flag wins,
// otherwise the API's organization list is consulted and the default (or
// only) organization used. Interactively, ambiguity opens a picker.
func resolveOrg(ctx context.Context, app *appctx.App, index int) (string, error) {
	if app.Flags.Org != "" {
		return app.Flags.Org, nil
	}

	client := app.InvoiceClient(index, "")
	orgs, err := client.Organizations(ctx)
	if err != nil {
		return "", err
	}
	switch len(orgs) {
	case 0:
		return "", output.ErrAPI(0, "Account has no organizations")
	case 1:
		return orgs[0].OrganizationID, nil
	}

	for _, org := range orgs {
		if org.IsDefaultOrg {
			return org.OrganizationID, nil
		}
	}

	if !app.IsInteractive() {
		return "", output.ErrUsageHint("Multiple organizations found", "Pass --org")
	}

	items := make([]tui.PickerItem, len(orgs))
	for i, org := range orgs {
		items[i] = tui.PickerItem{ID: org.OrganizationID, Title: org.Name, Description: org.OrganizationID}
	}
	picked, err := tui.PickOrganization(items)
	if err != nil {
		return "", err
	}
	if picked == nil {
		return "", output.ErrUsage("No organization selected")
	}
	return picked.ID, nil
}

// loadPayloadFile reads a YAML or JSON payload into dst. YAML is the
// superset, so one decoder covers both. The value goes through a JSON
// round trip so the models' snake_case field names apply to YAML too.
func loadPayloadFile(path string, dst any) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is user-supplied by design
	if err != nil {
		return output.ErrUsageHint("Cannot read payload file", err.Error())
	}

	var intermediate any
	if err := yaml.Unmarshal(data, &intermediate); err != nil {
		return output.ErrUsageHint("Cannot parse payload file", err.Error())
	}
	jsonData, err := json.Marshal(intermediate)
	if err != nil {
		return output.ErrUsageHint("Cannot parse payload file", err.Error())
	}
	if err := json.Unmarshal(jsonData, dst); err != nil {
		return output.ErrUsageHint("Payload does not match the expected shape", err.Error())
	}
	return nil
}

// rawEnvelope re-decodes a provider envelope for output so the user sees
// Zoho's response verbatim.
func rawEnvelope(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
