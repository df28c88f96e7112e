package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/output"
)

// NewOrgsCmd creates the orgs command.
func NewOrgsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"org", "organizations"},
		Short:   "Manage Zoho Invoice organizations",
	}

	cmd.AddCommand(newOrgsListCmd())
	return cmd
}

func newOrgsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List organizations visible to the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := resolveAccount(app, nil)
			if err != nil {
				return err
			}

			client := app.InvoiceClient(index, "")
			orgs, err := client.Organizations(ctx)
			if err != nil {
				return convertAuthError(err)
			}
			return app.OK(orgs, output.WithSummary(fmt.Sprintf("%d organization(s)", len(orgs))))
		},
	}
}
