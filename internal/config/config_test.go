package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{BaseURL: "http://localhost:11434/v1"},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Store.Driver != DriverRedis {
		t.Errorf("store.driver = %q", cfg.Store.Driver)
	}
	if cfg.Inference.Temperature != 0.1 || cfg.Inference.MaxTokens != 100 {
		t.Errorf("inference defaults: %+v", cfg.Inference)
	}
	if cfg.Embedding.Dimensions != 768 || cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Index.ChunkSize != 10 || cfg.Analysis.BatchSize != 10 {
		t.Errorf("chunk_size=%d batch_size=%d", cfg.Index.ChunkSize, cfg.Analysis.BatchSize)
	}
	if cfg.Cache.AnalyticsTTLSec != 300 {
		t.Errorf("analytics_ttl_sec = %d", cfg.Cache.AnalyticsTTLSec)
	}
	if cfg.Store.SQLitePath != "" {
		t.Error("sqlite path should stay empty for the redis driver")
	}

	cfg = validConfig()
	cfg.Store.Driver = DriverSQLite
	cfg.ApplyDefaults()
	if cfg.Store.SQLitePath == "" {
		t.Error("sqlite path should get a default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mongo" }, "store.driver"},
		{"no embedding url", func(c *Config) { c.Embedding.BaseURL = "" }, "embedding.base_url"},
		{"inference without url", func(c *Config) { c.Inference.Enabled = true }, "inference.base_url"},
		{"inference disabled without url", func(c *Config) { c.Inference.Enabled = false }, ""},
		{"huge chunk", func(c *Config) { c.Index.ChunkSize = 1000 }, "index.chunk_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FEEDEX_TEST_ADDR", "redis:6380")

	got := string(expandEnvVars([]byte("a: ${FEEDEX_TEST_ADDR}\nb: ${FEEDEX_TEST_MISSING:-fallback}\nc: ${FEEDEX_TEST_MISSING}")))
	want := "a: redis:6380\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("FEEDEX_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	body := `
http:
  port: ${FEEDEX_TEST_PORT}
database:
  addrs: ["localhost:6379"]
store:
  driver: sqlite
inference:
  enabled: false
embedding:
  base_url: http://embed:8080/v1
  dimensions: 384
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Store.Driver != DriverSQLite || cfg.Embedding.Dimensions != 384 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Inference.Enabled {
		t.Error("inference should be disabled")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.Embedding.QueryInstruction != "search_query: " {
		t.Errorf("query instruction = %q", cfg.Embedding.QueryInstruction)
	}
}
