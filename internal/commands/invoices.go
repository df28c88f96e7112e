package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/models"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/tui"
)

// NewInvoicesCmd creates the invoices command and its subcommands.
func NewInvoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"invoice", "inv"},
		Short:   "Manage invoices",
	}

	cmd.AddCommand(newInvoicesListCmd())
	cmd.AddCommand(newInvoicesDraftsCmd())
	cmd.AddCommand(newInvoicesCreateCmd())
	cmd.AddCommand(newInvoicesSendCmd())
	return cmd
}

func newInvoicesListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoicesList(cmd, status)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (draft, sent, paid, overdue)")
	return cmd
}

func newInvoicesDraftsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List draft invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoicesList(cmd, "draft")
		},
	}
}

func runInvoicesList(cmd *cobra.Command, status string) error {
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

	invoices, err := app.InvoiceClient(index, orgID).Invoices(ctx, status)
	if err != nil {
		return convertAuthError(err)
	}

	label := "invoice(s)"
	if status != "" {
		label = status + " " + label
	}
	return app.OK(invoices, output.WithSummary(fmt.Sprintf("%d %s", len(invoices), label)))
}

func newInvoicesCreateCmd() *cobra.Command {
	var customerID string
	var fromFile string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft invoice",
		Long: `Create a draft invoice.

Line items, dates, and terms come from a YAML or JSON payload file; the
only flag shortcut is --customer for an empty invoice. The provider's
response envelope is printed verbatim so validation failures carry Zoho's
own diagnostics. Created invoices stay in draft until sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			var invoice models.Invoice
			switch {
			case fromFile != "":
				if err := loadPayloadFile(fromFile, &invoice); err != nil {
					return err
				}
			case customerID != "":
				invoice = models.Invoice{CustomerID: customerID}
			default:
				return output.ErrUsageHint("Invoice payload is required", "Pass --from-file or --customer")
			}

			index, err := resolveAccount(app, nil)
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(ctx, app, index)
			if err != nil {
				return convertAuthError(err)
			}
			client := app.InvoiceClient(index, orgID)

			if invoice.CustomerID == "" && app.IsInteractive() {
				customers, err := client.Customers(ctx)
				if err != nil {
					return convertAuthError(err)
				}
				items := make([]tui.PickerItem, len(customers))
				for i, c := range customers {
					items[i] = tui.PickerItem{ID: c.ContactID, Title: c.ContactName, Description: c.CompanyName}
				}
				picked, err := tui.PickCustomer(items)
				if err != nil {
					return err
				}
				if picked == nil {
					return output.ErrUsage("No customer selected")
				}
				invoice.CustomerID = picked.ID
			}
			if invoice.CustomerID == "" {
				return output.ErrUsage("customer_id is required")
			}

			result, err := client.CreateInvoice(ctx, invoice)
			if err != nil {
				return convertAuthError(err)
			}

			summary := result.Message
			if !result.OK() {
				summary = fmt.Sprintf("Zoho rejected the invoice: %s", result.Message)
			}
			return app.OK(rawEnvelope(result.Data), output.WithSummary(summary))
		},
	}

	cmd.Flags().StringVar(&customerID, "customer", "", "Customer ID for an empty draft")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Load the invoice from a YAML or JSON file")
	return cmd
}

func newInvoicesSendCmd() *cobra.Command {
	var to, cc []string
	var subject, body string
	cmd := &cobra.Command{
		Use:   "send [invoice-id]",
		Short: "Email an invoice",
		Long: `Email an invoice to its recipients.

Without --to, Zoho falls back to the contact's stored email settings.
Without an invoice ID, a picker over the draft invoices opens.`,
		Args: cobra.MaximumNArgs(1),
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
			client := app.InvoiceClient(index, orgID)

			var invoiceID string
			if len(args) > 0 {
				invoiceID = args[0]
			} else {
				if !app.IsInteractive() {
					return output.ErrUsage("Invoice ID is required")
				}
				drafts, err := client.Invoices(ctx, "draft")
				if err != nil {
					return convertAuthError(err)
				}
				items := make([]tui.PickerItem, len(drafts))
				for i, inv := range drafts {
					items[i] = tui.PickerItem{
						ID:          inv.InvoiceID,
						Title:       inv.InvoiceNumber,
						Description: fmt.Sprintf("%s, %.2f %s", inv.CustomerName, inv.Total, inv.CurrencyCode),
					}
				}
				picked, err := tui.PickInvoice(items)
				if err != nil {
					return err
				}
				if picked == nil {
					return output.ErrUsage("No invoice selected")
				}
				invoiceID = picked.ID
			}

			email := models.EmailRequest{
				ToMailIDs: to,
				CCMailIDs: cc,
				Subject:   subject,
				Body:      body,
			}
			result, err := client.SendInvoiceEmail(ctx, invoiceID, email)
			if err != nil {
				return convertAuthError(err)
			}

			summary := result.Message
			if !result.OK() {
				summary = fmt.Sprintf("Zoho could not send the invoice: %s", result.Message)
			} else if summary == "" {
				summary = fmt.Sprintf("Sent invoice %s", invoiceID)
			}
			if len(to) > 0 {
				summary += " to " + strings.Join(to, ", ")
			}
			return app.OK(rawEnvelope(result.Data), output.WithSummary(summary))
		},
	}

	cmd.Flags().StringSliceVar(&to, "to", nil, "Recipient email addresses")
	cmd.Flags().StringSliceVar(&cc, "cc", nil, "CC email addresses")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&body, "body", "", "Email body")
	return cmd
}
