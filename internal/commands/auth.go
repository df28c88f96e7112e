package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/auth"
	"github.com/zomailer/zomailer-cli/internal/output"
)

// NewAuthCmd creates the auth command and its subcommands.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize accounts and inspect tokens",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRefreshCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthTokenCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var noBrowser bool
	var manual bool
	cmd := &cobra.Command{
		Use:   "login [index]",
		Short: "Run the OAuth consent flow for an account",
		Long: `Authorize an account against Zoho.

Opens the consent page in the browser and captures the redirect with a
local server on the configured redirect port. With --manual the redirect
URL is read from a prompt instead, for machines where the port or a
browser is unavailable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := resolveAccount(app, args)
			if err != nil {
				return err
			}

			authURL, displaced, err := app.Session.BeginAuthorization(index)
			if err != nil {
				return err
			}
			if displaced != 0 {
				app.Log.Warn("replaced pending authorization", "account", displaced)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Open this URL to authorize:")
			fmt.Fprintln(cmd.ErrOrStderr(), "  "+authURL)

			var redirectURL string
			if manual {
				fmt.Fprintln(cmd.ErrOrStderr(), "Paste the full redirect URL after approving:")
				redirectURL, err = readRedirectLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			} else {
				if !noBrowser {
					if err := auth.OpenBrowser(authURL); err != nil {
						app.Log.Debug("browser launch failed", "err", err)
					}
				}
				redirectURL, err = auth.WaitForRedirect(ctx, app.Config.RedirectURI)
				if err != nil {
					return output.ErrAuth(err.Error())
				}
			}

			done, err := app.Session.HandleRedirect(ctx, redirectURL)
			if err != nil {
				return err
			}
			return app.OK(
				map[string]any{"index": done, "authorized": true},
				output.WithSummary(fmt.Sprintf("Account %d authorized", done)),
			)
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the URL instead of opening a browser")
	cmd.Flags().BoolVar(&manual, "manual", false, "Paste the redirect URL by hand")
	return cmd
}

func newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [index]",
		Short: "Force a token refresh",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := resolveAccount(app, args)
			if err != nil {
				return err
			}
			if _, err := app.Session.Refresh(ctx, index); err != nil {
				return convertAuthError(err)
			}

			acct := app.Store.Load(index)
			return app.OK(
				map[string]any{"index": index, "token_expiry_timestamp": acct.TokenExpiry},
				output.WithSummary(fmt.Sprintf("Refreshed token for account %d", index)),
			)
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [index]",
		Short: "Show token status for an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)

			index, err := resolveAccount(app, args)
			if err != nil {
				return err
			}
			acct := app.Store.Load(index)

			status := map[string]any{
				"index":           index,
				"has_credentials": acct.HasCredentials(),
				"authorized":      acct.Authorized(),
			}
			summary := fmt.Sprintf("Account %d: not authorized", index)
			if acct.TokenExpiry > 0 {
				expires := time.Unix(acct.TokenExpiry, 0)
				status["token_expiry_timestamp"] = acct.TokenExpiry
				status["token_expired"] = time.Now().After(expires)
				if acct.Authorized() {
					summary = fmt.Sprintf("Account %d: authorized, token expires %s",
						index, expires.Format(time.RFC3339))
				}
			} else if acct.Authorized() {
				summary = fmt.Sprintf("Account %d: authorized, no cached token", index)
			}
			return app.OK(status, output.WithSummary(summary))
		},
	}
}

func newAuthTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [index]",
		Short: "Print a valid access token",
		Long: `Print a valid access token for the account, refreshing if needed.

Useful for calling the API directly with curl.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := resolveAccount(app, args)
			if err != nil {
				return err
			}
			token, err := app.Session.AccessToken(ctx, index)
			if err != nil {
				return convertAuthError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

// readRedirectLine reads one pasted line, whitespace and all, and trims
// it. Redirect URLs carry no spaces but surrounding paste artifacts do.
func readRedirectLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", output.ErrUsageHint("Could not read redirect URL", err.Error())
		}
		return "", output.ErrUsage("No redirect URL entered")
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return "", output.ErrUsage("No redirect URL entered")
	}
	return line, nil
}

// convertAuthError maps the unauthorized-account sentinel onto the error
// taxonomy so callers get the login hint and the right exit code.
func convertAuthError(err error) error {
	if err == nil {
		return nil
	}
	if isUnauthorized(err) {
		return output.ErrAuth(err.Error())
	}
	return err
}
