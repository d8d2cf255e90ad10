package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and remote patterns",
	Long: `Validate loads the configuration exactly like serve does and fails on the
first malformed setting or remote pattern.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Configuration valid: %d remote patterns (source: %s)",
			cfg.Allowlist().Len(),
			orDefault(cfg.File, "defaults and environment"),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
