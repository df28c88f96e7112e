package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/models"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/tui"
)

// NewItemsCmd creates the items command and its subcommands.
func NewItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage billable items",
	}

	cmd.AddCommand(newItemsListCmd())
	cmd.AddCommand(newItemsAddCmd())
	return cmd
}

func newItemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List items in the organization",
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

			items, err := app.InvoiceClient(index, orgID).Items(ctx)
			if err != nil {
				return convertAuthError(err)
			}
			return app.OK(items, output.WithSummary(fmt.Sprintf("%d item(s)", len(items))))
		},
	}
}

func newItemsAddCmd() *cobra.Command {
	var name, description string
	var rate float64
	var fromFile string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		Long: `Create a billable item.

Pass --name and --rate directly, build the item interactively, or load a
full item payload from a YAML or JSON file with --from-file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromCommand(cmd)
			ctx := cmd.Context()

			var item models.Item
			switch {
			case fromFile != "":
				if err := loadPayloadFile(fromFile, &item); err != nil {
					return err
				}
			case name != "":
				item = models.Item{Name: name, Rate: rate, Description: description}
			case app.IsInteractive():
				values, err := tui.Form("New item", []tui.FormField{
					{Key: "name", Title: "Name", Required: true},
					{Key: "rate", Title: "Rate", Placeholder: "150.00", Required: true},
					{Key: "description", Title: "Description"},
				})
				if err != nil {
					return err
				}
				parsedRate, err := strconv.ParseFloat(values["rate"], 64)
				if err != nil {
					return output.ErrUsage(fmt.Sprintf("Invalid rate %q", values["rate"]))
				}
				item = models.Item{Name: values["name"], Rate: parsedRate, Description: values["description"]}
			default:
				return output.ErrUsageHint("Item name is required", "Pass --name and --rate, or --from-file")
			}

			if item.Name == "" {
				return output.ErrUsage("Item name is required")
			}

			index, err := resolveAccount(app, nil)
			if err != nil {
				return err
			}
			orgID, err := resolveOrg(ctx, app, index)
			if err != nil {
				return convertAuthError(err)
			}

			created, err := app.InvoiceClient(index, orgID).CreateItem(ctx, item)
			if err != nil {
				return convertAuthError(err)
			}
			return app.OK(created, output.WithSummary(fmt.Sprintf("Created item %s", created.ItemID)))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Item name")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Item rate")
	cmd.Flags().StringVar(&description, "description", "", "Item description")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Load the item from a YAML or JSON file")
	return cmd
}
