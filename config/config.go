// Package config loads typeforge.toml.
//
// Precedence (lowest to highest): defaults < typeforge.toml < .env < environment.
// Environment variables use the TYPEFORGE_ prefix with dots replaced by
// underscores, e.g. TYPEFORGE_OUTPUT_DIR=gen.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/typeforge/errors"
)

// FileName is the project configuration file searched for upward from the working directory.
const FileName = "typeforge.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TYPEFORGE"

// Config is the complete project configuration.
type Config struct {
	Input        InputConfig   `mapstructure:"input"`
	Output       OutputConfig  `mapstructure:"output"`
	Targets      []string      `mapstructure:"targets"`
	Constructors bool          `mapstructure:"constructors"`
	Parallelism  int           `mapstructure:"parallelism"`
	Naming       NamingConfig  `mapstructure:"naming"`
	TypeMappings []TypeMapping `mapstructure:"type_mappings"`
	Log          LogConfig     `mapstructure:"log"`
	Watch        WatchConfig   `mapstructure:"watch"`

	// File is the configuration file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// InputConfig locates the type graph.
type InputConfig struct {
	// Path is an IR document, or a Go package pattern when Format is "go".
	Path string `mapstructure:"path"`
	// Format is json, yaml, toml or go; empty infers it from Path.
	Format string `mapstructure:"format"`
}

// OutputConfig controls where generated files go.
type OutputConfig struct {
	Dir  string `mapstructure:"dir"`
	Name string `mapstructure:"name"`
}

// NamingConfig overrides identifier conventions per target.
type NamingConfig struct {
	Python     string `mapstructure:"python"`
	Rust       string `mapstructure:"rust"`
	TypeScript string `mapstructure:"typescript"`
	// IdentifierSource is "identifier" or "rename".
	IdentifierSource string `mapstructure:"identifier_source"`
}

// TypeMapping replaces a named type with a target expression in one language.
// It is a list entry rather than a table because configuration keys are
// case-insensitive while type names are not.
type TypeMapping struct {
	Language string `mapstructure:"language"`
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
}

// LogConfig configures the logger.
type LogConfig struct {
	JSON      bool `mapstructure:"json"`
	Verbosity int  `mapstructure:"verbosity"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "")
	v.SetDefault("input.format", "")
	v.SetDefault("output.dir", "generated")
	v.SetDefault("output.name", "types")
	v.SetDefault("targets", []string{"all"})
	v.SetDefault("constructors", false)
	v.SetDefault("parallelism", 4)
	v.SetDefault("naming.python", "")
	v.SetDefault("naming.rust", "")
	v.SetDefault("naming.typescript", "")
	v.SetDefault("naming.identifier_source", "identifier")
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
	v.SetDefault("watch.debounce_ms", 200)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load searches upward from dir for typeforge.toml and loads it. A .env
// file in dir is read into the environment first. Without a config file
// the defaults and environment apply.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to read .env")
	}

	path := FindProjectConfig(dir)
	if path == "" {
		return unmarshal(newViper(), "")
	}
	return LoadFromFile(path)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return unmarshal(v, path)
}

func unmarshal(v *viper.Viper, path string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config %s", path)
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, errors.Wrapf(err, "invalid config %s", path)
		}
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// FindProjectConfig walks up from dir looking for typeforge.toml.
// Returns the path of the first one found, or "".
func FindProjectConfig(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// BaseDir is the directory relative paths in the configuration resolve against.
func (c *Config) BaseDir() string {
	if c.File == "" {
		return "."
	}
	return filepath.Dir(c.File)
}

// Resolve makes a configured path absolute against BaseDir.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir(), path)
}
