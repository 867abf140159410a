package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string          HTTP bind address (e.g., ":8080")
//	-k string          backend: "postgres" or "sqlite"
//	-d string          PostgreSQL DSN
//	-f string          SQLite file path
//	-force-sqlite      use SQLite even when a DSN is configured
//	-m int             max open connections (networked backend)
//	-t int             cache TTL, milliseconds
//	-s string          session token secret key
//	-u string          S3 root user
//	-p string          S3 root password
//	-b string          S3 bucket name
//	-g string          S3 region
//	-e string          S3 base endpoint (e.g., "http://127.0.0.1:9000/")
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-k", "-d", "-f", "-force-sqlite", "-m", "-t", "-s", "-u", "-p", "-b", "-g", "-e"},
		"-force-sqlite")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	backend := fs.String("k", string(config.Backend), "storage backend (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "sqlite database file")
	fs.BoolVar(&config.ForceSQLite, "force-sqlite", config.ForceSQLite, "force the embedded backend")
	fs.IntVar(&config.MaxOpenConns, "m", config.MaxOpenConns, "max open database connections")
	cacheTTL := fs.Int("t", int(config.CacheTTL.Milliseconds()), "pin list cache TTL (in milliseconds)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.Backend = ParseBackend(*backend)
	config.CacheTTL = time.Duration(*cacheTTL) * time.Millisecond
}
