// Package config loads and validates the oaemapi service configuration.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Edge data sources
const (
	SourceFile = "FILE"
	SourceWFS  = "WFS"
)

// Geoid interpolation modes
const (
	InterpolationNearest = "NEAREST"
	InterpolationLinear  = "LINEAR"
)

// Config is the fully-resolved service configuration. Angular resolutions are
// stored in radians, distances in meters.
type Config struct {
	Host     string
	Port     int
	WorkEPSG int
	OaemRes  float64

	Geoid GeoidConfig
	Edges EdgeConfig
	WFS   WFSConfig
	Area  AreaConfig
}

// GeoidConfig describes the undulation grid.
type GeoidConfig struct {
	File          string
	EPSG          int
	Res           float64
	Interpolation string
}

// EdgeConfig describes where building edges come from.
type EdgeConfig struct {
	Source   string
	DataPath string
	LOD      int
	UTMZone  int
	NRange   float64
	NRes     float64
}

// WFSConfig describes the remote WFS endpoint used when Edges.Source is WFS.
type WFSConfig struct {
	URL  string
	EPSG int
}

// AreaConfig points at an optional area-of-operation polygon (GeoJSON).
type AreaConfig struct {
	File string
}

type yamlConfig struct {
	Host   string  `yaml:"host"`
	Port   int     `yaml:"port"`
	EPSG   int     `yaml:"work_epsg"`
	ResDeg float64 `yaml:"oaem_res_deg"`
	Geoid  struct {
		File          string  `yaml:"file"`
		EPSG          int     `yaml:"epsg"`
		Res           float64 `yaml:"res"`
		Interpolation string  `yaml:"interpolation"`
	} `yaml:"geoid"`
	Edges struct {
		Source   string  `yaml:"source"`
		DataPath string  `yaml:"data_path"`
		LOD      int     `yaml:"lod"`
		UTMZone  int     `yaml:"utm_zone"`
		NRange   float64 `yaml:"n_range"`
		NRes     float64 `yaml:"n_res"`
	} `yaml:"edges"`
	WFS struct {
		URL  string `yaml:"url"`
		EPSG int    `yaml:"epsg"`
	} `yaml:"wfs"`
	Area struct {
		File string `yaml:"file"`
	} `yaml:"area"`
}

// Default returns the configuration used when no file and no overrides are given.
func Default() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     8000,
		WorkEPSG: 25832,
		OaemRes:  math.Pi / 180,
		Geoid: GeoidConfig{
			EPSG:          4258,
			Res:           100,
			Interpolation: InterpolationLinear,
		},
		Edges: EdgeConfig{
			Source:  SourceWFS,
			LOD:     1,
			UTMZone: 32,
			NRange:  150,
			NRes:    50,
		},
		WFS: WFSConfig{
			URL:  "https://www.wfs.nrw.de/geobasis/wfs_nw_3d-gebaeudemodell_lod1",
			EPSG: 25832,
		},
	}
}

// Load reads the YAML configuration file at filename, applies OAEMAPI_*
// environment overrides, and validates the result. An empty filename loads
// defaults plus overrides.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		var yc yamlConfig
		if err := yaml.Unmarshal(data, &yc); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		applyYAML(cfg, &yc)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyYAML(cfg *Config, yc *yamlConfig) {
	if yc.Host != "" {
		cfg.Host = yc.Host
	}
	if yc.Port != 0 {
		cfg.Port = yc.Port
	}
	if yc.EPSG != 0 {
		cfg.WorkEPSG = yc.EPSG
	}
	if yc.ResDeg != 0 {
		cfg.OaemRes = yc.ResDeg * math.Pi / 180
	}
	if yc.Geoid.File != "" {
		cfg.Geoid.File = yc.Geoid.File
	}
	if yc.Geoid.EPSG != 0 {
		cfg.Geoid.EPSG = yc.Geoid.EPSG
	}
	if yc.Geoid.Res != 0 {
		cfg.Geoid.Res = yc.Geoid.Res
	}
	if yc.Geoid.Interpolation != "" {
		cfg.Geoid.Interpolation = normalizeTag(yc.Geoid.Interpolation)
	}
	if yc.Edges.Source != "" {
		cfg.Edges.Source = normalizeTag(yc.Edges.Source)
	}
	if yc.Edges.DataPath != "" {
		cfg.Edges.DataPath = yc.Edges.DataPath
	}
	if yc.Edges.LOD != 0 {
		cfg.Edges.LOD = yc.Edges.LOD
	}
	if yc.Edges.UTMZone != 0 {
		cfg.Edges.UTMZone = yc.Edges.UTMZone
	}
	if yc.Edges.NRange != 0 {
		cfg.Edges.NRange = yc.Edges.NRange
	}
	if yc.Edges.NRes != 0 {
		cfg.Edges.NRes = yc.Edges.NRes
	}
	if yc.WFS.URL != "" {
		cfg.WFS.URL = yc.WFS.URL
	}
	if yc.WFS.EPSG != 0 {
		cfg.WFS.EPSG = yc.WFS.EPSG
	}
	if yc.Area.File != "" {
		cfg.Area.File = yc.Area.File
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Host, "OAEMAPI_HOST")
	setInt(&cfg.Port, "OAEMAPI_PORT")
	setInt(&cfg.WorkEPSG, "OAEMAPI_WORK_EPSG")
	setString(&cfg.Geoid.File, "OAEMAPI_GEOID_FILE")
	setInt(&cfg.Geoid.EPSG, "OAEMAPI_GEOID_EPSG")
	setFloat(&cfg.Geoid.Res, "OAEMAPI_GEOID_RES")
	setString(&cfg.Geoid.Interpolation, "OAEMAPI_GEOID_INTERPOLATION")
	setString(&cfg.Edges.Source, "OAEMAPI_EDGE_SOURCE")
	setString(&cfg.Edges.DataPath, "OAEMAPI_EDGE_DATA_PATH")
	setInt(&cfg.Edges.LOD, "OAEMAPI_EDGE_LOD")
	setInt(&cfg.Edges.UTMZone, "OAEMAPI_EDGE_UTM_ZONE")
	setFloat(&cfg.Edges.NRange, "OAEMAPI_N_RANGE")
	setFloat(&cfg.Edges.NRes, "OAEMAPI_N_RES")
	setString(&cfg.WFS.URL, "OAEMAPI_WFS_URL")
	setInt(&cfg.WFS.EPSG, "OAEMAPI_WFS_EPSG")
	setString(&cfg.Area.File, "OAEMAPI_AREA_FILE")
	cfg.Edges.Source = normalizeTag(cfg.Edges.Source)
	cfg.Geoid.Interpolation = normalizeTag(cfg.Geoid.Interpolation)
}

// Validate checks cross-field constraints that would otherwise surface as
// runtime failures deep inside the compute path.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.OaemRes <= 0 || c.OaemRes > math.Pi/2 {
		return fmt.Errorf("invalid oaem resolution %f rad", c.OaemRes)
	}
	switch c.Edges.Source {
	case SourceFile:
		if c.Edges.DataPath == "" {
			return fmt.Errorf("edge source FILE requires edges.data_path")
		}
		if c.Edges.LOD != 1 && c.Edges.LOD != 2 {
			return fmt.Errorf("invalid edge LOD %d, must be 1 or 2", c.Edges.LOD)
		}
	case SourceWFS:
		if c.WFS.URL == "" {
			return fmt.Errorf("edge source WFS requires wfs.url")
		}
	default:
		return fmt.Errorf("unknown edge source %q", c.Edges.Source)
	}
	switch c.Geoid.Interpolation {
	case InterpolationNearest, InterpolationLinear:
	default:
		return fmt.Errorf("unknown geoid interpolation %q", c.Geoid.Interpolation)
	}
	if c.Edges.NRange <= 0 || c.Edges.NRes <= 0 || c.Geoid.Res <= 0 {
		return fmt.Errorf("ranges and resolutions must be positive")
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func normalizeTag(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		out[i] = ch
	}
	return string(out)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
