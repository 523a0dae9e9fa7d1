// Package config loads exporter settings from YAML or TOML files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/skelanim/anm/export"
	"github.com/mogaika/skelanim/coord"
)

type Config struct {
	Tolerance      float32    `yaml:"tolerance" toml:"tolerance"`
	Dense          bool       `yaml:"dense" toml:"dense"`
	OptimizeJoints bool       `yaml:"optimize_joints" toml:"optimize_joints"`
	HalfPrecision  bool       `yaml:"half_precision" toml:"half_precision"`
	ConvertBasis   bool       `yaml:"convert_basis" toml:"convert_basis"`
	UnitScale      float32    `yaml:"unit_scale" toml:"unit_scale"`
	DefaultScale   [3]float32 `yaml:"default_scale,flow" toml:"default_scale"`
	Workers        int        `yaml:"workers" toml:"workers"`
	LogLevel       string     `yaml:"log_level" toml:"log_level"`
	ASCIINames     bool       `yaml:"ascii_names" toml:"ascii_names"`
}

func Default() Config {
	return Config{
		Tolerance:      1e-5,
		OptimizeJoints: true,
		UnitScale:      0.01,
		DefaultScale:   [3]float32{1, 1, 1},
		LogLevel:       "info",
		ASCIINames:     true,
	}
}

func (c *Config) Validate() error {
	if c.Tolerance < 0 {
		return errors.Errorf("tolerance %v is negative", c.Tolerance)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers %d is negative", c.Workers)
	}
	if c.ConvertBasis && !(c.UnitScale > 0) {
		return errors.Errorf("unit_scale %v must be positive", c.UnitScale)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "log_level")
	}
	return nil
}

// Parse decodes data over the defaults, so missing keys keep their default value.
// format is "yaml", "yml" or "toml".
func Parse(data []byte, format string) (Config, error) {
	c := Default()
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &c)
	case "toml":
		err = toml.Unmarshal(data, &c)
	default:
		return c, errors.Errorf("Unknown config format %q", format)
	}
	if err != nil {
		return c, errors.Wrapf(err, "Can't parse %s config", format)
	}
	return c, c.Validate()
}

// Load picks the format from the file extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), errors.Wrapf(err, "Can't read config")
	}
	c, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return c, errors.Wrapf(err, "%s", path)
	}
	return c, nil
}

// ExportOptions maps the settings onto exporter options. The native decoder
// and logger are left to the caller.
func (c *Config) ExportOptions(l *log.Logger) export.Options {
	opts := export.DefaultOptions()
	opts.Tolerance = c.Tolerance
	opts.Dense = c.Dense
	opts.OptimizeJoints = c.OptimizeJoints
	opts.HalfPrecision = c.HalfPrecision
	opts.DefaultScale = mgl32.Vec3(c.DefaultScale)
	opts.ASCIINames = c.ASCIINames
	opts.Log = l
	if c.ConvertBasis {
		opts.Converter = coord.NewUEToUSD(c.UnitScale)
	}
	return opts
}
