package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"imgguard/internal/appinfo"
	"imgguard/internal/config"
	"imgguard/internal/handlers"
	"imgguard/internal/middleware"
	"imgguard/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the decision API",
	Long: `Serve exposes the allowlist over HTTP for image fetchers that are not
written in Go:

  GET  /v1/allow?url=URL   200 when allowed, 403 when denied
  POST /v1/allow           {"urls": [...]} batch check
  GET  /v1/patterns        loaded remote patterns
  GET  /v1/stats           decision counters
  GET  /healthz            liveness`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// newServer wires handlers and middleware for cfg.
// Chain: RateLimit -> CORS -> Logger -> routes.
func newServer(cfg *config.Config) (*http.Server, *middleware.RateLimiter) {
	h := handlers.New(cfg.Allowlist(), cfg.MaxBodyBytes())
	limiter := middleware.NewRateLimiter(cfg.Security.RateLimit, cfg.TrustedProxies())

	finalHandler := limiter.Middleware(
		middleware.Cors(cfg.Security.CorsOrigins)(
			middleware.LoggerMiddleware(h.Routes()),
		),
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}, limiter
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if cfg.Output.Banner {
		printBanner(cmd.OutOrStdout())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, limiter := newServer(cfg)
	appinfo.Reset()

	logger.LogInfo("imgguard v%s | Env: %s | Port: %d", version, cfg.Server.Env, cfg.Server.Port)
	if cfg.Server.Env == "production" && len(cfg.Security.CorsOrigins) == 1 && cfg.Security.CorsOrigins[0] == "*" {
		logger.LogWarn("security.cors_origins is \"*\" in production")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return limiter.Run(gctx)
	})

	g.Go(func() error {
		logger.LogServerStart(cfg.Server.Port, cfg.Server.BaseURL, cfg.Allowlist().Len())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", server.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.LogInfo("Shutting down, waiting up to %s for in-flight requests...", cfg.Server.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.LogSuccess("Server stopped")
		return nil
	})

	return g.Wait()
}
