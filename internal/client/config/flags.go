package config

import (
	"flag"
	"io"
	"os"
	"time"
)

// parseFlags populates Config fields from command-line flags and stores the
// remaining arguments in Config.Args.
//
// Supported flags:
//
//	-a string   base URL of the pinboard HTTP API
//	-k string   session token
//	-t int      request timeout (seconds)
//	-c, -config string   JSON config file (consumed by parseJson)
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("pinctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "pinboard API base URL")
	fs.StringVar(&cfg.Token, "k", cfg.Token, "session token")
	timeout := fs.Int("t", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")

	var ignored string
	fs.StringVar(&ignored, "c", "", "path to config file (short)")
	fs.StringVar(&ignored, "config", "", "path to config file")

	if err := fs.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.Timeout = time.Duration(*timeout) * time.Second
		}
	})
	cfg.Args = fs.Args()
}
