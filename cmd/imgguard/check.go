package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"imgguard/internal/handlers"
	"imgguard/pkg/fetchguard"
)

var (
	checkJSON  bool
	checkProbe bool
)

// probeConcurrency bounds parallel HEAD requests made by check --probe.
const probeConcurrency = 4

type checkResult struct {
	handlers.Decision
	Probe string `json:"probe,omitempty"`
	ok    bool
}

var checkCmd = &cobra.Command{
	Use:   "check URL...",
	Short: "Check remote image URLs against the allowlist",
	Long: `Check reports, for every URL, whether a remote pattern permits it.

The command exits non-zero when at least one URL is denied. With --probe,
allowed URLs are also requested (HEAD) through the guarded client, so a
redirect to a host outside the allowlist is reported as a failure.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "output as JSON")
	checkCmd.Flags().BoolVar(&checkProbe, "probe", false, "send a HEAD request for allowed URLs through the guarded client")
}

func runCheck(cmd *cobra.Command, args []string) error {
	allow := cfg.Allowlist()

	results := make([]checkResult, len(args))
	for i, raw := range args {
		d := handlers.Evaluate(allow, raw)
		results[i] = checkResult{Decision: d, ok: d.Allowed}
	}

	if checkProbe {
		client := fetchguard.NewClient(allow,
			fetchguard.WithTimeout(cfg.Fetch.Timeout),
			fetchguard.WithMaxRedirects(cfg.Fetch.MaxRedirects),
			fetchguard.WithHostRateLimit(cfg.Fetch.HostRateLimit, cfg.Fetch.HostBurst),
			fetchguard.WithUserAgent(cfg.Fetch.UserAgent),
		)
		probeAll(cmd.Context(), client, results)
	}

	if checkJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else if err := renderCheckTable(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.ok {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d URLs denied", failed, len(results))
	}
	return nil
}

// probeAll issues HEAD requests for allowed results. Results are written in
// place; every goroutine owns exactly one index.
func probeAll(ctx context.Context, client *http.Client, results []checkResult) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)

	for i := range results {
		if !results[i].Allowed {
			continue
		}
		g.Go(func() error {
			results[i].Probe, results[i].ok = probe(ctx, client, results[i].URL)
			return nil
		})
	}
	_ = g.Wait()
}

func probe(ctx context.Context, client *http.Client, rawURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return err.Error(), false
	}

	resp, err := client.Do(req)
	if err != nil {
		var denied *fetchguard.DeniedError
		if errors.As(err, &denied) {
			return "redirect denied: " + denied.URL, false
		}
		return err.Error(), false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.Status, false
	}
	return resp.Status, true
}

func renderCheckTable(w io.Writer, results []checkResult) error {
	header := []string{"URL", "VERDICT", "DETAIL"}
	if checkProbe {
		header = append(header, "PROBE")
	}
	data := pterm.TableData{header}

	for _, r := range results {
		verdict := pterm.FgGreen.Sprint("ALLOWED")
		detail := r.Pattern
		if !r.Allowed {
			verdict = pterm.FgRed.Sprint("DENIED")
			detail = r.Code
		}
		row := []string{r.URL, verdict, detail}
		if checkProbe {
			probe := r.Probe
			if r.Allowed && !r.ok {
				probe = pterm.FgRed.Sprint(probe)
			}
			row = append(row, probe)
		}
		data = append(data, row)
	}

	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).WithWriter(w).Render()
}
