package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFile is the dotenv file read before the process environment.
var envFile = ".env"

// parseEnv overlays settings from environment variables. Values from
// envFile are loaded first but never override variables already exported.
// Unparseable numbers and durations are ignored.
//
// Recognised variables:
//
//	HTTP_ADDR, DB_BACKEND, DATABASE_URL, SQLITE_PATH, FORCE_SQLITE,
//	DB_MAX_OPEN_CONNS, DB_CONNECT_TIMEOUT, CACHE_TTL, SECRET_KEY,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION,
//	S3_BASE_ENDPOINT, S3_PUBLIC_BASE_URL
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	if v, ok := lookup("DB_BACKEND"); ok {
		config.Backend = ParseBackend(v)
	}
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SQLitePath, "SQLITE_PATH")
	if v, ok := lookup("FORCE_SQLITE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.ForceSQLite = b
		}
	}
	if v, ok := lookup("DB_MAX_OPEN_CONNS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.MaxOpenConns = n
		}
	}
	setDuration(&config.ConnectTimeout, "DB_CONNECT_TIMEOUT")
	setDuration(&config.CacheTTL, "CACHE_TTL")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.S3PublicBaseURL, "S3_PUBLIC_BASE_URL")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
