// Package cli builds the root command and runs the program.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/appctx"
	"github.com/zomailer/zomailer-cli/internal/commands"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/version"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	root := &cobra.Command{
		Use:   "zomailer",
		Short: "Zoho Invoice from the command line",
		Long: `zomailer manages multiple Zoho Invoice accounts and their OAuth
tokens, and drives the Invoice API: organizations, items, customers,
and creating and emailing invoices.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := appctx.NewApp(flags)
			if err != nil {
				return err
			}
			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&flags.JSON, "json", false, "Force JSON output")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "Print only the data payload")
	pf.StringVar(&flags.JQ, "jq", "", "Filter the data payload with a jq expression")
	pf.IntVarP(&flags.Account, "account", "a", 0, "Account index to act as")
	pf.StringVar(&flags.Org, "org", "", "Organization ID to act in")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Verbose logging to stderr")
	pf.BoolVar(&flags.NoInput, "no-input", false, "Never prompt; fail instead")
	pf.StringVar(&flags.CredentialsDir, "credentials-dir", "", "Override the credentials directory")

	commands.Register(root)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		e := output.AsError(err)
		writer := output.New(output.Options{Writer: os.Stderr})
		if werr := writer.Err(e); werr != nil {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return e.ExitCode()
	}
	return output.ExitOK
}
