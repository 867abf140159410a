// Package config loads runtime configuration for the pinctl command.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables PINBOARD_SERVER, PINBOARD_TOKEN and
//     PINBOARD_TIMEOUT, optionally read from a .env file.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the pinboard HTTP API
//	-k string   session token sent as a Bearer header
//	-t int      request timeout (seconds)
//
// Flags must precede the command; everything after the first non-flag
// argument ends up in Config.Args.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token": "eyJhbGciOi...",
//	  "timeout": "10s"
//	}
package config
