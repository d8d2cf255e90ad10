package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"imgguard/internal/config"
	"imgguard/pkg/logger"
)

var (
	cfgFile    string
	allowFlags []string
	verbose    bool
	noColor    bool
	cfg        *config.Config
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Use:   "imgguard",
	Short: "Remote image source allowlist",
	Long: `imgguard decides whether a remote image URL may be fetched.

Remote patterns (protocol, hostname, port, pathname) are read from
imgguard.yaml, IMGGUARD_* environment variables and --allow flags.
Anything that no pattern matches is denied.

Example usage:
  imgguard check https://i.seadn.io/gae/abc.png
  imgguard check --allow 'https://*.cdn.example.com/img/**' https://a.cdn.example.com/img/x.png
  imgguard patterns --json
  imgguard serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfig] == "true" {
			return nil
		}
		return initConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./imgguard.yaml or ~/.config/imgguard/imgguard.yaml)")
	rootCmd.PersistentFlags().StringArrayVar(&allowFlags, "allow", nil, "extra remote pattern in URL form, e.g. https://*.example.com/img/** (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig loads configuration and applies the logging settings it carries.
// Logs go to stderr so that command output stays machine readable.
func initConfig(cmd *cobra.Command) error {
	logger.SetOutput(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	applyColor(!noColor)
	if verbose {
		logger.SetLevel(logger.LevelDebug)
	}

	loaded, err := config.Load(cfgFile, allowFlags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = logger.LevelDebug
	}
	logger.SetLevel(level)
	applyColor(cfg.Output.Colors && !noColor)

	logger.LogDebug("Configuration loaded | File: %s | Patterns: %d | Env: %s",
		orDefault(cfg.File, "<defaults>"),
		cfg.Allowlist().Len(),
		cfg.Server.Env,
	)
	return nil
}

func applyColor(enabled bool) {
	logger.SetColor(enabled)
	if enabled {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
