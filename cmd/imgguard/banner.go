package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

func printBanner(w io.Writer) {
	logo, err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("IMG", pterm.NewStyle(pterm.FgCyan)),
		pterm.NewLettersFromStringWithStyle("GUARD", pterm.NewStyle(pterm.FgMagenta)),
	).Srender()
	if err != nil {
		logo = "IMGGUARD\n"
	}
	fmt.Fprint(w, logo)

	cyan := color.New(color.FgHiCyan, color.Bold).SprintFunc()
	white := color.New(color.FgWhite).SprintFunc()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s : %s\n", cyan("Version    "), white(version))
	fmt.Fprintf(w, "%s : %s\n", cyan("Project    "), white("imgguard remote image allowlist"))
	fmt.Fprintln(w)
}
