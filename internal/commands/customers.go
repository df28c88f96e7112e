package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/models"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/tui"
)

// NewCustomersCmd creates the customers command and its subcommands.
func NewCustomersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "contacts"},
		Short:   "Manage customers",
	}

	cmd.AddCommand(newCustomersListCmd())
	cmd.AddCommand(newCustomersAddCmd())
	return cmd
}

func newCustomersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List customers in the organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			index, err := resolveAccount(app, nil)
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(ctx, app, index)
			if err != nil {
				return convertAuthError(err)
			}

			customers, err := app.InvoiceClient(index, orgID).Customers(ctx)
			if err != nil {
				return convertAuthError(err)
			}
			return app.OK(customers, output.WithSummary(fmt.Sprintf("%d customer(s)", len(customers))))
		},
	}
}

func newCustomersAddCmd() *cobra.Command {
	var name, company, email string
	var fromFile string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a customer",
		Long: `Create a customer contact.

The provider's full response envelope is printed whether Zoho accepts or
rejects the contact, so validation problems surface with Zoho's own
message. Use --from-file for contacts with multiple persons or other
fields beyond the basic flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			var contact models.Contact
			switch {
			case fromFile != "":
				if err := loadPayloadFile(fromFile, &contact); err != nil {
					return err
				}
			case name != "":
				contact = models.Contact{
					ContactName: name,
					CompanyName: company,
					ContactType: "customer",
				}
				if email != "" {
					contact.Persons = []models.ContactPerson{{Email: email, IsPrimaryContact: true}}
				}
			case app.IsInteractive():
				values, err := tui.Form("New customer", []tui.FormField{
					{Key: "name", Title: "Contact name", Required: true},
					{Key: "company", Title: "Company name"},
					{Key: "email", Title: "Email"},
				})
				if err != nil {
					return err
				}
				contact = models.Contact{
					ContactName: values["name"],
					CompanyName: values["company"],
					ContactType: "customer",
				}
				if values["email"] != "" {
					contact.Persons = []models.ContactPerson{{Email: values["email"], IsPrimaryContact: true}}
				}
			default:
				return output.ErrUsageHint("Contact name is required", "Pass --name or --from-file")
			}

			if contact.ContactName == "" {
				return output.ErrUsage("Contact name is required")
			}

			index, err := resolveAccount(app, nil)
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(ctx, app, index)
			if err != nil {
				return convertAuthError(err)
			}

			result, err := app.InvoiceClient(index, orgID).CreateCustomer(ctx, contact)
			if err != nil {
				return convertAuthError(err)
			}

			summary := result.Message
			if !result.OK() {
				summary = fmt.Sprintf("Zoho rejected the customer: %s", result.Message)
			}
			return app.OK(rawEnvelope(result.Data), output.WithSummary(summary))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Contact name")
	cmd.Flags().StringVar(&company, "company", "", "Company name")
	cmd.Flags().StringVar(&email, "email", "", "Primary contact email")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Load the contact from a YAML or JSON file")
	return cmd
}
