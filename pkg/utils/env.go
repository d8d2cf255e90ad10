package utils

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"imgguard/pkg/logger"
)

// LoadEnv loads variables from the given .env files (default ".env") without
// overriding values already present in the environment. Missing files are ignored.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logger.LogWarn("Could not read %s: %v", f, err)
			continue
		}
		logger.LogDebug("Environment loaded from %s", f)
	}
}
