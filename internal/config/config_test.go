package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SinkURL != "" || len(cfg.Enrich) != 0 {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadParsesEnrichAndSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".remaprc.yaml")
	content := `
sink_url: ws://collector.local/events
enrich:
  - name: geoip
    type: sqlite
    dsn: geoip.db
plugins:
  - enrich
  - sink
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SinkURL != "ws://collector.local/events" {
		t.Fatalf("got %q", cfg.SinkURL)
	}
	if len(cfg.Enrich) != 1 || cfg.Enrich[0].Name != "geoip" {
		t.Fatalf("got %+v", cfg.Enrich)
	}
	if len(cfg.Plugins) != 2 {
		t.Fatalf("got %+v", cfg.Plugins)
	}
}
