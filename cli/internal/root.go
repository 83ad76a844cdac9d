package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/localchefbazaar/bazaar/internal/api"
	"github.com/localchefbazaar/bazaar/internal/identity"
	"github.com/localchefbazaar/bazaar/internal/pkg/logger"
	"github.com/localchefbazaar/bazaar/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config      *Config
	Credentials *session.FileStore
	Provider    *identity.RESTProvider
	Client      *api.Client
	Store       *session.Store
	Logger      *slog.Logger

	cancelRun context.CancelFunc
}

// Global logging flags
var (
	logLevel    string
	logFile     string
	logToStderr bool
	logFormat   string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "bazaar",
		Short:         "CLI for the Local Chef Bazaar marketplace",
		Long:          `A command line client for the Local Chef Bazaar marketplace API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = slog.Default().With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = cfg

			creds, err := session.NewFileStore("")
			if err != nil {
				return fmt.Errorf("failed to open credentials store: %w", err)
			}
			ctx.Credentials = creds

			ctx.Provider = identity.NewRESTProvider(cfg.Identity.Endpoint, cfg.Identity.APIKey,
				identity.WithLogger(ctx.Logger))
			ctx.Client = api.NewClient(cfg.Backend.BaseURL, creds, api.WithLogger(ctx.Logger))
			ctx.Store = session.New(ctx.Provider, creds, ctx.Client, ctx.Logger)

			runCtx, cancel := context.WithCancel(context.Background())
			ctx.cancelRun = cancel
			go ctx.Store.Run(runCtx)

			// Restore a persisted session so commands see the stored identity.
			if stored, err := creds.LoadCredentials(); err == nil && stored != nil && stored.AccessToken != "" {
				if stored.IsExpired() {
					ctx.Logger.Debug("stored credential expired", "email", stored.Email)
				} else {
					ctx.Provider.Restore(&identity.Identity{
						UID:         stored.UID,
						Email:       stored.Email,
						DisplayName: stored.DisplayName,
						PhotoURL:    stored.PhotoURL,
						IDToken:     stored.AccessToken,
						ExpiresAt:   stored.ExpiresAt,
					})
				}
			}

			if err := ctx.waitSettled(2 * time.Second); err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if ctx.cancelRun != nil {
				ctx.cancelRun()
			}
		},
	}

	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newMealsCommand())
	rootCmd.AddCommand(newOrdersCommand())
	rootCmd.AddCommand(newProfileCommand())

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// waitSettled blocks until the store has processed the initial auth-state
// events, so commands observe a resolved session.
func (c *CliContext) waitSettled(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.Store.Snapshot().Resolved {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("session did not settle within %s", timeout)
}

// requireIdentity returns the current identity or an error telling the user
// to sign in.
func (c *CliContext) requireIdentity() (*identity.Identity, error) {
	snap := c.Store.Snapshot()
	if snap.Identity == nil {
		return nil, fmt.Errorf("not signed in; run 'bazaar auth login' first")
	}
	return snap.Identity, nil
}

// requireRole runs the route-guard policy for the given roles and translates
// the decision into a command error.
func (c *CliContext) requireRole(roles ...api.Role) error {
	switch decision := c.Store.Check(roles...); decision {
	case session.DecisionAllowed:
		return nil
	case session.DecisionForbidden:
		return fmt.Errorf("your role %q is not permitted to run this command",
			c.Store.Snapshot().EffectiveRole())
	default:
		return fmt.Errorf("not signed in; run 'bazaar auth login' first")
	}
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogFile:     logFile,
		LogToStderr: logToStderr,
		Format:      logFormat,
	}

	globalLogger, err := logger.Setup(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
