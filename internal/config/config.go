package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/unde-cli/internal/dataset"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user configuration directory under $HOME.
const DirName = ".unde"

// Global configuration structure.
type Global struct {
	// Figure output
	OutputPath   string  `mapstructure:"output_path" yaml:"output_path"`
	DPI          int     `mapstructure:"dpi" yaml:"dpi"`
	PlotWidthIn  float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`

	// Separator detection: "auto" or a fixed separator
	Separator         string `mapstructure:"separator" yaml:"separator"`
	SeparatorFallback string `mapstructure:"separator_fallback" yaml:"separator_fallback"`
	MinColumns        int    `mapstructure:"min_columns" yaml:"min_columns"`

	// Positioning model
	Neighbors       int     `mapstructure:"neighbors" yaml:"neighbors"`
	TestRatio       float64 `mapstructure:"test_ratio" yaml:"test_ratio"`
	Seed            uint64  `mapstructure:"seed" yaml:"seed"`
	MinSplitSamples int     `mapstructure:"min_split_samples" yaml:"min_split_samples"`
	MinTrainingRows int     `mapstructure:"min_training_rows" yaml:"min_training_rows"`

	// Stage gates
	MinUniquePoints int `mapstructure:"min_unique_points" yaml:"min_unique_points"`
	MinPlotRows     int `mapstructure:"min_plot_rows" yaml:"min_plot_rows"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	Format   string `mapstructure:"format" yaml:"format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"output_path", "dpi", "plot_width_in", "plot_height_in",
	"separator", "separator_fallback", "min_columns",
	"neighbors", "test_ratio", "seed", "min_split_samples", "min_training_rows",
	"min_unique_points", "min_plot_rows",
	"log_level", "format",
}

// DefaultPath returns ~/.unde/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.unde/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_path", "unde_data_analysis.png")
	v.SetDefault("dpi", 300)
	v.SetDefault("plot_width_in", 15.0)
	v.SetDefault("plot_height_in", 12.0)
	v.SetDefault("separator", "auto")
	v.SetDefault("separator_fallback", "last")
	v.SetDefault("min_columns", 5)
	v.SetDefault("neighbors", 5)
	v.SetDefault("test_ratio", 0.3)
	v.SetDefault("seed", 42)
	v.SetDefault("min_split_samples", 20)
	v.SetDefault("min_training_rows", 10)
	v.SetDefault("min_unique_points", 10)
	v.SetDefault("min_plot_rows", 5)
	v.SetDefault("log_level", "warn")
	v.SetDefault("format", "text")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
// A .env file in the working directory feeds UNDE_* variables without
// overriding ones already set.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix("UNDE")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, DirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		// An explicit path that does not exist yet is fine too; Save creates it.
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Set assigns one key from its string form, validating the result.
func (c *Global) Set(key, value string) error {
	v := viper.New()
	setDefaults(v)
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return fmt.Errorf("read current config: %w", err)
	}
	known := false
	for _, k := range Keys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown key: %s", key)
	}
	v.Set(key, value)
	var next Global
	if err := v.Unmarshal(&next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Validate rejects settings the analysis cannot run with.
func (c *Global) Validate() error {
	switch {
	case c.DPI <= 0:
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	case c.PlotWidthIn <= 0 || c.PlotHeightIn <= 0:
		return fmt.Errorf("plot size must be positive, got %gx%g", c.PlotWidthIn, c.PlotHeightIn)
	case c.MinColumns < 1:
		return fmt.Errorf("min_columns must be at least 1, got %d", c.MinColumns)
	case c.Neighbors < 1:
		return fmt.Errorf("neighbors must be at least 1, got %d", c.Neighbors)
	case c.TestRatio <= 0 || c.TestRatio >= 1:
		return fmt.Errorf("test_ratio must be in (0,1), got %g", c.TestRatio)
	case c.MinTrainingRows < 1:
		return fmt.Errorf("min_training_rows must be at least 1, got %d", c.MinTrainingRows)
	case c.MinPlotRows < 0:
		return fmt.Errorf("min_plot_rows must not be negative, got %d", c.MinPlotRows)
	case c.MinUniquePoints < 0:
		return fmt.Errorf("min_unique_points must not be negative, got %d", c.MinUniquePoints)
	case c.MinSplitSamples < 0:
		return fmt.Errorf("min_split_samples must not be negative, got %d", c.MinSplitSamples)
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "text", "json", "yaml", "yml":
	default:
		return fmt.Errorf("unsupported format: %s (use text|json|yaml)", c.Format)
	}
	if _, err := c.SeparatorPolicy(); err != nil {
		return err
	}
	return nil
}

// SeparatorPolicy builds the loader policy from the separator settings.
func (c *Global) SeparatorPolicy() (dataset.SeparatorPolicy, error) {
	p := dataset.DefaultSeparatorPolicy()
	sep, err := dataset.ParseSeparator(c.Separator)
	if err != nil {
		return p, err
	}
	fb, err := dataset.ParseFallback(c.SeparatorFallback)
	if err != nil {
		return p, err
	}
	p.Fixed, p.Fallback, p.MinColumns = sep, fb, c.MinColumns
	return p, nil
}
