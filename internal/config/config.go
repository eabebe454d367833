package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"langfile/internal/policy"
)

type Config struct {
	PolicyPath  string
	LogLevel    string
	MetricsFile string
	MemoryDSN   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		PolicyPath:  getEnv("LANGFILE_POLICY", ""),
		LogLevel:    getEnv("LANGFILE_LOG_LEVEL", "info"),
		MetricsFile: getEnv("LANGFILE_METRICS_FILE", ""),
		MemoryDSN:   getEnv("LANGFILE_MEMORY_DSN", "sqlite://langfile-memory.db"),
	}
}

// Policy loads the configured policy file, or the default policy when none
// is set.
func (c *Config) Policy() (*policy.Policy, error) {
	if c.PolicyPath == "" {
		return policy.Default(), nil
	}
	return policy.Load(c.PolicyPath)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
