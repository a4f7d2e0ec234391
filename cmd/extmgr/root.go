package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/app"
	"github.com/felixgeelhaar/extmgr/internal/config"
)

var (
	// Global flags
	cfgFile     string
	baseDir     string
	pluginsRoot string
	logLevel    string
	verbose     bool
	jsonOutput  bool
	yesFlag     bool
)

// stdinIsTerminal reports whether prompts can be shown. Replaced in tests.
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var rootCmd = &cobra.Command{
	Use:   "extmgr",
	Short: "Install, list and remove host application plugins",
	Long: `extmgr manages the plugins of a host application.

Plugins are fetched with git, downloaded as single files or extracted from
zip archives into the plugins root. Every successful change is recorded in
the registry cache and the host rescans its plugins afterwards.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.yaml, .toml or .ini)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", ".", "host installation directory the default paths are derived from")
	rootCmd.PersistentFlags().StringVar(&pluginsRoot, "plugins-root", "", "override the plugins root directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the configuration from defaults, the config file, the
// environment and finally the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(baseDir, cfgFile, os.Environ())
	if err != nil {
		return config.Config{}, err
	}
	if pluginsRoot != "" {
		cfg.PluginsRoot = pluginsRoot
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires the application for a command, writing subprocess output and
// logs to the command's streams.
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
}

// commandContext returns the command context, or Background when the
// command runs without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var list *config.ErrorList
	if errors.As(err, &list) {
		return list.Format()
	}
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml", "ini"}, cobra.ShellCompDirectiveFilterFileExt
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
}
