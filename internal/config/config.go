package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"

	"fjacquet/pdf-ledger/internal/logging"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the current or
// parent directory. Variables already set in the environment win. It runs
// once per process.
func LoadEnv() {
	envOnce.Do(func() {
		loadEnvFile(logging.GetLogger(), ".env", filepath.Join("..", ".env"))
	})
}

// loadEnvFile loads the first candidate that exists and returns its path.
func loadEnvFile(log logging.Logger, candidates ...string) string {
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			log.WithError(err).Warn("Error loading .env file",
				logging.F(logging.FieldFile, envFile))
			return ""
		}
		log.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
		return envFile
	}
	log.Debug("No .env file found, using environment variables")
	return ""
}

// ConfigureLogging builds a logger from the log section and installs it as
// the process default.
func ConfigureLogging(cfg *Config) logging.Logger {
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	logging.SetDefault(logger)
	return logger
}
