package main

import "imgguard/pkg/logger"

// Set at build time, e.g. -ldflags "-X main.version=1.2.0"
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.LogFatal("%v", err)
	}
}
