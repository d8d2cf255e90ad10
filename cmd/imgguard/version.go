package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		if short {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}

		if jsonOutput {
			info := map[string]string{
				"version":   version,
				"commit":    commit,
				"built":     buildTime,
				"goVersion": runtime.Version(),
				"platform":  runtime.GOOS + "/" + runtime.GOARCH,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		cyan := color.New(color.FgHiCyan, color.Bold).SprintFunc()
		white := color.New(color.FgWhite).SprintFunc()

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s : %s\n", cyan("Version    "), white(version))
		fmt.Fprintf(w, "%s : %s\n", cyan("Commit     "), white(commit))
		fmt.Fprintf(w, "%s : %s\n", cyan("Built      "), white(buildTime))
		fmt.Fprintf(w, "%s : %s\n", cyan("Go         "), white(runtime.Version()))
		fmt.Fprintf(w, "%s : %s\n", cyan("Platform   "), white(runtime.GOOS+"/"+runtime.GOARCH))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print version string only")
	versionCmd.Flags().Bool("json", false, "output as JSON")
}
