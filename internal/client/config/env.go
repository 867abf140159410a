package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

var envFile = ".env"

// parseEnv overlays settings from PINBOARD_* variables. A PINBOARD_TIMEOUT
// that time.ParseDuration rejects is ignored.
func parseEnv(cfg *Config) {
	_ = godotenv.Load(envFile)

	if v, ok := os.LookupEnv("PINBOARD_SERVER"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("PINBOARD_TOKEN"); ok && v != "" {
		cfg.Token = v
	}
	if v, ok := os.LookupEnv("PINBOARD_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
}
