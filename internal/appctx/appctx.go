// Package appctx carries the per-invocation application state through
// cobra's command context.
package appctx

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zomailer/zomailer-cli/internal/api"
	"github.com/zomailer/zomailer-cli/internal/auth"
	"github.com/zomailer/zomailer-cli/internal/config"
	"github.com/zomailer/zomailer-cli/internal/output"
	"github.com/zomailer/zomailer-cli/internal/store"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	JSON           bool
	Quiet          bool
	JQ             string
	Account        int
	Org            string
	Verbose        bool
	NoInput        bool
	CredentialsDir string
}

// App is the assembled application: config, storage, auth, and output.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Tokens  *auth.Manager
	Session *auth.Session
	Output  *output.Writer
	Flags   GlobalFlags
	Log     *slog.Logger
}

// NewApp builds the app from resolved flags.
func NewApp(flags GlobalFlags) (*App, error) {
	cfg, err := config.Load(config.FlagOverrides{
		Account:        flags.Account,
		CredentialsDir: flags.CredentialsDir,
		Format:         formatFlag(flags),
	})
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.CredentialsDir)
	tokens := auth.NewManager(cfg)

	logLevel := slog.LevelWarn
	if flags.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	return &App{
		Config:  cfg,
		Store:   st,
		Tokens:  tokens,
		Session: auth.NewSession(cfg, st, tokens),
		Output:  output.New(outputOptions(cfg, flags)),
		Flags:   flags,
		Log:     logger,
	}, nil
}

func formatFlag(flags GlobalFlags) string {
	switch {
	case flags.Quiet:
		return "quiet"
	case flags.JSON:
		return "json"
	default:
		return ""
	}
}

func outputOptions(cfg *config.Config, flags GlobalFlags) output.Options {
	format := output.FormatAuto
	switch cfg.Format {
	case "json":
		format = output.FormatJSON
	case "styled":
		format = output.FormatStyled
	case "quiet":
		format = output.FormatQuiet
	}
	return output.Options{
		Format: format,
		Writer: os.Stdout,
		Filter: flags.JQ,
	}
}

// tokenSource adapts the session to the api.TokenSource interface for a
// fixed account index.
type tokenSource struct {
	session *auth.Session
	index   int
}

func (ts tokenSource) AccessToken(ctx context.Context) (string, error) {
	return ts.session.AccessToken(ctx, ts.index)
}

// InvoiceClient returns an API client bound to the given account and
// organization.
func (a *App) InvoiceClient(index int, orgID string) *api.Client {
	return api.New(a.Config.APIBaseURL, orgID, tokenSource{session: a.Session, index: index})
}

// OK writes a success response.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	return a.Output.OK(data, opts...)
}

// IsInteractive reports whether prompts and pickers may run.
func (a *App) IsInteractive() bool {
	if a.Flags.NoInput || a.Flags.JSON || a.Flags.Quiet {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type ctxKey struct{}

// WithApp stores the app in the command's context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, ctxKey{}, app)
}

// FromContext retrieves the app placed in the context by the root command.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(ctxKey{}).(*App)
	return app
}

// FromCommand retrieves the app from a cobra command.
func FromCommand(cmd *cobra.Command) *App {
	return FromContext(cmd.Context())
}
