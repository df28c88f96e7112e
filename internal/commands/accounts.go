package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/store"
	"github.com/zomailer/zomailer-cli/internal/tui"
)

func storePatchCredentials(clientID, clientSecret string) store.Patch {
	return store.Patch{
		ClientID:     store.String(clientID),
		ClientSecret: store.String(clientSecret),
	}
}

// accountView is the account record as shown to users. Secrets and tokens
// never leave the store in full.
type accountView struct {
	Index       int    `json:"index"`
	ClientID    string `json:"client_id,omitempty"`
	Authorized  bool   `json:"authorized"`
	TokenExpiry int64  `json:"token_expiry_timestamp,omitempty"`
}

// NewAccountsCmd creates the accounts command and its subcommands.
func NewAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account", "acc"},
		Short:   "Manage stored Zoho accounts",
		Long:    "List, add, inspect, or delete the OAuth accounts this tool knows about.",
	}

	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsAddCmd())
	cmd.AddCommand(newAccountsShowCmd())
	cmd.AddCommand(newAccountsSetCredentialsCmd())
	cmd.AddCommand(newAccountsDeleteCmd())

	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)

			indexes, err := app.Store.Indexes()
			if err != nil {
				return err
			}

			views := make([]accountView, 0, len(indexes))
			for _, idx := range indexes {
				acct := app.Store.Load(idx)
				views = append(views, accountView{
					Index:       idx,
					ClientID:    acct.ClientID,
					Authorized:  acct.Authorized(),
					TokenExpiry: acct.TokenExpiry,
				})
			}
			return app.OK(views, output.WithSummary(fmt.Sprintf("%d account(s)", len(views))))
		},
	}
}

func newAccountsAddCmd() *cobra.Command {
	var clientID, clientSecret string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new account",
		Long: `Add a new account from a Zoho API console client.

Create a "Server-based Applications" client at https://api-console.zoho.com/
and pass its client ID and secret here. The account is stored under the
next free index; run "zomailer auth login" afterwards to authorize it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			if clientID == "" || clientSecret == "" {
				if !app.IsInteractive() {
					return output.ErrUsage("Both --client-id and --client-secret are required")
				}
				var err error
				if clientID == "" {
					clientID, err = tui.InputRequired("Client ID", "1000.XXXXXXXX")
					if err != nil {
						return err
					}
				}
				if clientSecret == "" {
					clientSecret, err = tui.InputSecret("Client secret")
					if err != nil {
						return err
					}
				}
			}

			index, err := app.Store.Create(ctx, clientID, clientSecret)
			if err != nil {
				return err
			}
			return app.OK(
				accountView{Index: index, ClientID: clientID},
				output.WithSummary(fmt.Sprintf("Created account %d", index)),
			)
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	return cmd
}

func newAccountsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [index]",
		Short: "Show one account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)

			index, err := resolveAccount(app, args)
			if err != nil {
				return err
			}
			if !app.Store.Exists(index) {
				return output.ErrUsage(fmt.Sprintf("Account %d does not exist", index))
			}

			acct := app.Store.Load(index)
			return app.OK(accountView{
				Index:       index,
				ClientID:    acct.ClientID,
				Authorized:  acct.Authorized(),
				TokenExpiry: acct.TokenExpiry,
			})
		},
	}
}

func newAccountsSetCredentialsCmd() *cobra.Command {
	var clientID, clientSecret string
	cmd := &cobra.Command{
		Use:   "set-credentials [index]",
		Short: "Replace an account's client credentials",
		Long: `Replace the OAuth client ID and secret of an existing account.

Tokens obtained under the old client stay in place until the next refresh
fails; re-run "zomailer auth login" after switching clients.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := resolveAccount(app, args)
			if err != nil {
				return err
			}

			if clientID == "" || clientSecret == "" {
				if !app.IsInteractive() {
					return output.ErrUsage("Both --client-id and --client-secret are required")
				}
				if clientID == "" {
					acct := app.Store.Load(index)
					clientID, err = tui.InputRequired("Client ID", acct.ClientID)
					if err != nil {
						return err
					}
				}
				if clientSecret == "" {
					clientSecret, err = tui.InputSecret("Client secret")
					if err != nil {
						return err
					}
				}
			}

			err = app.Store.Save(ctx, index, storePatchCredentials(clientID, clientSecret))
			if err != nil {
				return err
			}
			return app.OK(
				accountView{Index: index, ClientID: clientID},
				output.WithSummary(fmt.Sprintf("Updated credentials for account %d", index)),
			)
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	return cmd
}

func newAccountsDeleteCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "delete <index>",
		Aliases: []string{"rm"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := strconv.Atoi(args[0])
			if err != nil || index <= 0 {
				return output.ErrUsage(fmt.Sprintf("Invalid account index %q", args[0]))
			}

			if !force && app.IsInteractive() {
				ok, err := tui.ConfirmDangerous(fmt.Sprintf("Delete account %d and its tokens?", index))
				if err != nil {
					return err
				}
				if !ok {
					return app.OK(nil, output.WithSummary("Canceled"))
				}
			}

			if err := app.Store.Delete(ctx, index); err != nil {
				return err
			}
			return app.OK(nil, output.WithSummary(fmt.Sprintf("Deleted account %d", index)))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
