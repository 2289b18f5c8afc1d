// Package config loads the CLI's persisted defaults from a
// `.remaprc.yaml` file, modeled on the YAML configuration conventions
// of cue-lang-cue and joshuapare-hivekit. Absence of the file is not
// an error — every field has a zero-value default.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the CLI's persisted default settings.
type Config struct {
	// Enrich lists named database connections available to
	// enrich_lookup at startup.
	Enrich []EnrichConnection `yaml:"enrich"`
	// SinkURL, if set, is dialed at startup so emit_websocket is ready
	// without the program having to open it itself.
	SinkURL string `yaml:"sink_url"`
	// Plugins lists stdlib function group names read from the file.
	// Nothing reads it when the function registry is built, so it
	// registers no functions by itself.
	Plugins []string `yaml:"plugins"`
}

// EnrichConnection names one database/sql connection to open at
// startup for enrich_lookup.
type EnrichConnection struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// Load reads path (typically ".remaprc.yaml"). A missing file returns
// a zero-value Config, not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
