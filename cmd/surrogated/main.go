package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"surrogated/internal/catalog"
	"surrogated/internal/config"
)

var (
	// Global flags
	configPath     string
	logLevel       string
	logFormat      string
	modelsDir      string
	emissionsFile  string
	artifactExts   string
	configurations string

	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "surrogated",
	Short: "surrogated serves cost predictions from pre-trained surrogate models",
	Long: `surrogated loads one surrogate model per process configuration and answers
cost predictions for all of them at once, joined with each configuration's
emissions and specific energy.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		return err
	},
}

func init() {
	defaultConfig := os.Getenv("SURROGATED_CONFIG")
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfig, "Config file (.yaml, .json or .toml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console or json")
	pf.StringVar(&modelsDir, "models-dir", "", "Directory holding surrogate_<name> artifacts")
	pf.StringVar(&emissionsFile, "emissions-file", "", "Emissions and specific energy CSV")
	pf.StringVar(&artifactExts, "artifact-exts", "", "Comma-separated artifact extensions tried in order")
	pf.StringVar(&configurations, "configurations", "", "Comma-separated subset of configurations to serve")

	rootCmd.AddCommand(serveCmd, checkCmd, predictCmd, sweepCmd)
}

// loadConfig merges the config file, then explicitly set flags, then defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var c config.Config
	if configPath != "" {
		var err error
		if c, err = config.Load(configPath); err != nil {
			return c, fmt.Errorf("load config: %w", err)
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
	if flags.Changed("models-dir") {
		c.ModelsDir = modelsDir
	}
	if flags.Changed("emissions-file") {
		c.EmissionsFile = emissionsFile
	}
	if flags.Changed("artifact-exts") {
		c.ArtifactExts = splitCSV(artifactExts)
	}
	if flags.Changed("configurations") {
		c.Configurations = splitCSV(configurations)
	}
	applyServeFlags(flags, &c)
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := catalog.Parse(c.Configurations); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// splitCSV splits a comma-separated flag value, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
