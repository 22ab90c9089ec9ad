// Package commands implements the CLI commands for patchgen.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/git-pkgs/repodata-patches/internal/app"
	"github.com/git-pkgs/repodata-patches/internal/build"
	"github.com/git-pkgs/repodata-patches/internal/config"
	"github.com/git-pkgs/repodata-patches/internal/logger"
	"github.com/spf13/cobra"
)

// AppFactory builds the application from a resolved configuration.
type AppFactory func(cfg config.Config, log *slog.Logger) *app.App

// CLI represents the command line interface for patchgen.
type CLI struct {
	rootCmd *cobra.Command
	newApp  AppFactory
}

// Option configures a CLI.
type Option func(*CLI)

// WithAppFactory replaces the function used to build the application.
func WithAppFactory(f AppFactory) Option {
	return func(c *CLI) {
		c.newApp = f
	}
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	c := &CLI{newApp: app.Wire}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd := &cobra.Command{
		Use:   "patchgen",
		Short: "Generate conda repodata patch instructions",
		Long: "patchgen fetches repodata.json for every configured channel and subdir\n" +
			"and writes <output>/<channel>/<subdir>/patch_instructions.json.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE:          c.runGenerate,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.String("channel-alias", defaults.ChannelAlias, "Base URL that channel names are resolved against")
	flags.StringSlice("channel", defaults.Channels, "Channel to patch (repeatable)")
	flags.StringSlice("subdir", defaults.Subdirs, "Subdir to patch (repeatable)")
	flags.StringP("output", "o", defaults.OutputDir, "Directory to write instructions to")
	flags.Int("retries", defaults.Retries, "Retries for rate limited or failing fetches")
	flags.Duration("timeout", defaults.Timeout, "Timeout for a single repodata fetch")
	flags.Bool("log-json", false, "Always log JSON records")
	flags.Bool("verbose", false, "Enable debug logging")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newGenerateCmd())
	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and logs. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// resolveConfig loads --config, or the defaults, and applies any flags the
// user set explicitly on top.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if flags.Changed("channel-alias") {
		cfg.ChannelAlias, _ = flags.GetString("channel-alias")
	}
	if flags.Changed("channel") {
		cfg.Channels, _ = flags.GetStringSlice("channel")
	}
	if flags.Changed("subdir") {
		cfg.Subdirs, _ = flags.GetStringSlice("subdir")
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("retries") {
		cfg.Retries, _ = flags.GetInt("retries")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (c *CLI) buildApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}

	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logger.New(cmd.ErrOrStderr(), logger.Options{JSON: jsonLogs, Verbose: verbose})

	log.Debug("resolved config",
		"channel_alias", cfg.ChannelAlias,
		"channels", cfg.Channels,
		"subdirs", cfg.Subdirs,
		"output", cfg.OutputDir)

	return c.newApp(cfg, log), nil
}
