package main

import (
	"encoding/json"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var patternsJSON bool

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the loaded remote patterns in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns := cfg.Allowlist().Patterns()

		if patternsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(patterns)
		}

		if len(patterns) == 0 {
			pterm.Warning.WithWriter(cmd.OutOrStdout()).Println("No remote patterns configured: every URL is denied.")
			return nil
		}

		data := pterm.TableData{{"#", "PROTOCOL", "HOSTNAME", "PORT", "PATHNAME", "SEARCH"}}
		for i, p := range patterns {
			data = append(data, []string{
				strconv.Itoa(i),
				string(p.Protocol),
				pterm.FgCyan.Sprint(p.Hostname),
				orDefault(p.Port, "-"),
				orDefault(p.Pathname, "(none)"),
				orDefault(p.Search, "-"),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
	},
}

func init() {
	rootCmd.AddCommand(patternsCmd)

	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "output as JSON")
}
