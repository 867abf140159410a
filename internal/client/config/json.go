package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/pinboard/internal/flagx"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Timeout is a
// timex.Duration so the file may say "10s" or give integer nanoseconds.
type JsonConfig struct {
	ServerURL string         `json:"server_url"`
	Token     string         `json:"token"`
	Timeout   timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the file named by -c or -config. Fields
// missing from the file keep their current value. Read or unmarshal errors
// panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Token != "" {
		cfg.Token = jc.Token
	}
	if jc.Timeout.Duration > 0 {
		cfg.Timeout = jc.Timeout.Duration
	}
}
