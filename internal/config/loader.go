package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"surrogated/internal/common/fsutil"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr           string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir      string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	ArtifactExts   []string `json:"artifact_exts" yaml:"artifact_exts" toml:"artifact_exts"`
	EmissionsFile  string   `json:"emissions_file" yaml:"emissions_file" toml:"emissions_file"`
	WatchEmissions *bool    `json:"watch_emissions" yaml:"watch_emissions" toml:"watch_emissions"`
	Configurations []string `json:"configurations" yaml:"configurations" toml:"configurations"`
	StaticDir      string   `json:"static_dir" yaml:"static_dir" toml:"static_dir"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes   int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	RequestTimeout string   `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat      string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	Concurrency    int      `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	ErrorMaxLen    int      `json:"error_max_len" yaml:"error_max_len" toml:"error_max_len"`
	RepairOnLoad   *bool    `json:"repair_on_load" yaml:"repair_on_load" toml:"repair_on_load"`
	CacheSize      int      `json:"cache_size" yaml:"cache_size" toml:"cache_size"`
}

// Defaults applied by ApplyDefaults.
const (
	DefaultAddr          = ":8000"
	DefaultModelsDir     = "models"
	DefaultEmissionsFile = "emissions.csv"
	DefaultStaticDir     = "pareto-frontend/dist"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err := cfg.resolve(filepath.Dir(path)); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) resolve(base string) error {
	for _, p := range []*string{&c.ModelsDir, &c.EmissionsFile, &c.StaticDir} {
		r, err := fsutil.ResolvePath(base, *p)
		if err != nil {
			return err
		}
		*p = r
	}
	return nil
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.EmissionsFile == "" {
		c.EmissionsFile = DefaultEmissionsFile
	}
	if c.StaticDir == "" {
		c.StaticDir = DefaultStaticDir
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.RepairOnLoad == nil {
		c.RepairOnLoad = boolPtr(true)
	}
	if c.WatchEmissions == nil {
		c.WatchEmissions = boolPtr(true)
	}
}

// Validate reports every field that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must not be negative"))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative"))
	}
	if c.ErrorMaxLen < 0 {
		errs = append(errs, fmt.Errorf("error_max_len must not be negative"))
	}
	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}
	for _, e := range c.ArtifactExts {
		if !strings.HasPrefix(e, ".") {
			errs = append(errs, fmt.Errorf("artifact extension %q must start with a dot", e))
		}
	}
	return errors.Join(errs...)
}

// Timeout parses RequestTimeout; empty means none.
func (c *Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout: %w", err)
	}
	return d, nil
}

// Repair reports whether artifacts are repaired as they load.
func (c *Config) Repair() bool { return c.RepairOnLoad == nil || *c.RepairOnLoad }

// Watch reports whether the emissions file is reloaded on change.
func (c *Config) Watch() bool { return c.WatchEmissions == nil || *c.WatchEmissions }

func boolPtr(b bool) *bool { return &b }
