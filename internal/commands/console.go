package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/auth"
	"github.com/zomailer/zomailer-cli/internal/output"
)

// NewConsoleCmd creates the console command.
func NewConsoleCmd() *cobra.Command {
	var noBrowser bool
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Open the Zoho API console",
		Long: `Open the Zoho API console in the browser.

New OAuth clients are created there as "Server-based Applications" with
the configured redirect URI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			url := app.Config.APIConsoleURL

			if !noBrowser {
				if err := auth.OpenBrowser(url); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Open this URL in the browser:")
					fmt.Fprintln(cmd.ErrOrStderr(), "  "+url)
				}
			}
			return app.OK(
				map[string]string{"url": url, "redirect_uri": app.Config.RedirectURI},
				output.WithSummary("Zoho API console: "+url),
			)
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the URL instead of opening a browser")
	return cmd
}
