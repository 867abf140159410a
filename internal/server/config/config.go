// Package config handles configuration for the pinboard server, including
// defaults, environment variables (optionally from a .env file), a JSON
// overlay and command-line flags, applied in that order.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Backend names the storage technology the process runs against.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Config holds runtime settings for the pinboard server.
//
// Storage fields:
//   - Backend: explicit backend choice; empty means "decide from the rest".
//   - DatabaseDSN: PostgreSQL DSN (pgx). Its presence implies the postgres backend.
//   - SQLitePath: file used by the embedded backend.
//   - ForceSQLite: use the embedded backend even when DatabaseDSN is set.
//   - MaxOpenConns / ConnectTimeout: networked pool size and dial/ping timeout.
//
// CacheTTL bounds how long a cached pin list may be served.
// SecretKey verifies session tokens on write endpoints.
// S3* settings enable image upload slots; an empty S3Bucket disables them.
type Config struct {
	EndpointAddrHTTP string
	Backend          Backend
	DatabaseDSN      string
	SQLitePath       string
	ForceSQLite      bool
	MaxOpenConns     int
	ConnectTimeout   time.Duration
	CacheTTL         time.Duration
	SecretKey        string
	S3RootUser       string
	S3RootPassword   string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	S3PublicBaseURL  string
}

// LoadDefaults populates Config with development defaults: embedded
// storage under ./data and no object storage.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.Backend = ""
	c.DatabaseDSN = ""
	c.SQLitePath = "data/pins.db"
	c.ForceSQLite = false
	c.MaxOpenConns = 10
	c.ConnectTimeout = 5 * time.Second
	c.CacheTTL = 5 * time.Second
	c.SecretKey = "secretKey"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then environment
// variables, then an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// ParseBackend normalises a configured backend name. Unknown names are
// kept so that SelectBackend can reject them.
func ParseBackend(s string) Backend {
	return Backend(strings.ToLower(strings.TrimSpace(s)))
}

// SelectBackend decides which backend the process uses. An explicit Backend
// wins; otherwise ForceSQLite picks the embedded store; otherwise a
// configured DSN implies PostgreSQL; otherwise SQLite. A non-empty Backend
// naming neither store is an error.
func SelectBackend(c *Config) (Backend, error) {
	switch b := ParseBackend(string(c.Backend)); b {
	case BackendPostgres, BackendSQLite:
		return b, nil
	case "":
	default:
		return "", fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendPostgres, BackendSQLite)
	}
	if c.ForceSQLite {
		return BackendSQLite, nil
	}
	if c.DatabaseDSN != "" {
		return BackendPostgres, nil
	}
	return BackendSQLite, nil
}
