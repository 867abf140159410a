package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pinboard/internal/flagx"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Duration fields accept "5s" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	Backend          string         `json:"backend"`
	DatabaseDSN      string         `json:"database_dsn"`
	SQLitePath       string         `json:"sqlite_path"`
	ForceSQLite      *bool          `json:"force_sqlite"`
	MaxOpenConns     int            `json:"max_open_conns"`
	ConnectTimeout   timex.Duration `json:"connect_timeout"`
	CacheTTL         timex.Duration `json:"cache_ttl"`
	SecretKey        string         `json:"secret_key"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	S3PublicBaseURL  string         `json:"s3_public_base_url"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present in it onto config. Absent or zero fields leave config as is.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	if c.Backend != "" {
		config.Backend = ParseBackend(c.Backend)
	}
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SQLitePath, c.SQLitePath)
	if c.ForceSQLite != nil {
		config.ForceSQLite = *c.ForceSQLite
	}
	if c.MaxOpenConns > 0 {
		config.MaxOpenConns = c.MaxOpenConns
	}
	if c.ConnectTimeout.Duration > 0 {
		config.ConnectTimeout = c.ConnectTimeout.Duration
	}
	if c.CacheTTL.Duration > 0 {
		config.CacheTTL = c.CacheTTL.Duration
	}
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3PublicBaseURL, c.S3PublicBaseURL)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
