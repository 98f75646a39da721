package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lenteapp/lente/internal/pkg/logger"
	"github.com/lenteapp/lente/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const cliContextKey contextKey = "cliContext"

// CliContext holds shared CLI context
type CliContext struct {
	Config      *Config
	Sessions    *session.Manager
	Credentials *FileCredentials
	Logger      *slog.Logger
}

// Global logging flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var ctx CliContext

	rootCmd := &cobra.Command{
		Use:           "lente",
		Short:         "CLI for the lente image analysis service",
		Long:          `A command line client for the lente image analysis API: manage your session, register an account, and run object analysis on images.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging first
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx.Logger = slog.Default().With("component", "cli")
			ctx.Logger.Debug("CLI started", "command", cmd.Name())

			config, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			ctx.Config = config

			baseURL, err := config.BaseURL()
			if err != nil {
				return fmt.Errorf("failed to resolve server base URL: %w", err)
			}

			// The session manager is cheap to build: the credentials file is
			// only touched when a command actually needs a token.
			store := NewFileCredentials("")
			ctx.Credentials = store
			ctx.Sessions = session.NewManager(baseURL, store, session.NewAuthState(), nil, ctx.Logger)

			// Config and registration commands work without a session; auth
			// commands manage the session themselves. Everything else is
			// gated on the authentication check.
			if commandRequiresAuth(cmd) {
				guard := session.NewGuard(ctx.Sessions, ctx.Logger)
				if !guard.CanEnter(cmd.Context()) {
					return fmt.Errorf("authentication required\nPlease run 'lente auth login' first")
				}
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey, &ctx))
			return nil
		},
	}

	// Add subcommands
	rootCmd.AddCommand(newAuthCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newRegisterCommand())
	rootCmd.AddCommand(newAnalyzeCommand())

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false,
		"Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")

	return rootCmd
}

// commandRequiresAuth reports whether a command needs a valid session before
// it runs. Auth, config and registration commands must work logged out.
func commandRequiresAuth(cmd *cobra.Command) bool {
	if !cmd.HasParent() {
		return false // bare root only prints help
	}
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "auth", "config", "register", "help", "completion":
			return false
		}
	}
	return true
}

// setupLogging configures the global logger based on CLI flags
func setupLogging() error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger
	slog.SetDefault(globalLogger)
	return nil
}

// getCliContext extracts the CLI context from the command context
func getCliContext(cmd *cobra.Command) *CliContext {
	return cmd.Context().Value(cliContextKey).(*CliContext)
}
