package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkEPSG != 25832 {
		t.Errorf("WorkEPSG = %d, want 25832", cfg.WorkEPSG)
	}
	if math.Abs(cfg.OaemRes-math.Pi/180) > 1e-12 {
		t.Errorf("OaemRes = %f, want 1 degree", cfg.OaemRes)
	}
	if cfg.Edges.Source != SourceWFS {
		t.Errorf("Edges.Source = %q, want WFS", cfg.Edges.Source)
	}
	if cfg.Edges.NRange != 150 || cfg.Edges.NRes != 50 || cfg.Geoid.Res != 100 {
		t.Errorf("unexpected default resolutions: %+v", cfg.Edges)
	}
	if cfg.ListenAddr() != "0.0.0.0:8000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
host: 127.0.0.1
port: 9000
oaem_res_deg: 0.5
edges:
  source: file
  data_path: /data/lod2
  lod: 2
  n_range: 200
geoid:
  file: /data/geoid.txt
  interpolation: nearest
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Host != "127.0.0.1" || cfg.Port != 9000 {
		t.Errorf("unexpected host/port: %s:%d", cfg.Host, cfg.Port)
	}
	if math.Abs(cfg.OaemRes-0.5*math.Pi/180) > 1e-12 {
		t.Errorf("OaemRes = %f, want 0.5 degree", cfg.OaemRes)
	}
	if cfg.Edges.Source != SourceFile || cfg.Edges.DataPath != "/data/lod2" || cfg.Edges.LOD != 2 {
		t.Errorf("unexpected edge config: %+v", cfg.Edges)
	}
	if cfg.Edges.NRange != 200 {
		t.Errorf("NRange = %f, want 200", cfg.Edges.NRange)
	}
	if cfg.Geoid.Interpolation != InterpolationNearest {
		t.Errorf("Interpolation = %q, want NEAREST", cfg.Geoid.Interpolation)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OAEMAPI_PORT", "8080")
	t.Setenv("OAEMAPI_EDGE_SOURCE", "file")
	t.Setenv("OAEMAPI_EDGE_DATA_PATH", "/tiles")
	t.Setenv("OAEMAPI_EDGE_LOD", "2")
	t.Setenv("OAEMAPI_N_RES", "20")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Edges.Source != SourceFile || cfg.Edges.DataPath != "/tiles" {
		t.Errorf("unexpected edge config: %+v", cfg.Edges)
	}
	if cfg.Edges.NRes != 20 {
		t.Errorf("NRes = %f, want 20", cfg.Edges.NRes)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = -1 }},
		{"bad source", func(c *Config) { c.Edges.Source = "FTP" }},
		{"file source without path", func(c *Config) { c.Edges.Source = SourceFile }},
		{"bad lod", func(c *Config) {
			c.Edges.Source = SourceFile
			c.Edges.DataPath = "/tiles"
			c.Edges.LOD = 3
		}},
		{"wfs source without url", func(c *Config) { c.WFS.URL = "" }},
		{"bad interpolation", func(c *Config) { c.Geoid.Interpolation = "CUBIC" }},
		{"negative range", func(c *Config) { c.Edges.NRange = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yml"); err == nil {
		t.Error("expected error, got nil")
	}
}
