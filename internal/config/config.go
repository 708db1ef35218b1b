// Package config loads npm-time-machine settings from an optional TOML
// file. Command-line flags are applied on top by the CLI.
//
// Example .npm-time-machine.toml:
//
//	input       = "package.json"
//	output      = "package.json.out"
//	registry    = "https://registry.npmjs.org"
//	concurrency = 8
//	timeout     = "10s"
//	cache_dir   = ".npm_time_machine_cache"
//	cache_ttl   = "720h"
//	redis_url   = "redis://localhost:6379/0"
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/npm-time-machine/pkg/cache"
	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/integrations"
	"github.com/matzehuels/npm-time-machine/pkg/integrations/npm"
	"github.com/matzehuels/npm-time-machine/pkg/registry"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = ".npm-time-machine.toml"

const (
	DefaultInput   = "package.json"
	DefaultOutput  = "package.json.out"
	DefaultRetries = 3
)

// Config is the complete run configuration.
type Config struct {
	Input       string        `toml:"input"`
	Output      string        `toml:"output"`
	Registry    string        `toml:"registry"`
	Concurrency int           `toml:"concurrency"`
	Timeout     time.Duration `toml:"timeout"`
	Retries     int           `toml:"retries"`
	NoCache     bool          `toml:"no_cache"`
	CacheDir    string        `toml:"cache_dir"`
	CacheTTL    time.Duration `toml:"cache_ttl"`
	RedisURL    string        `toml:"redis_url"`
	KeepGoing   bool          `toml:"keep_going"`
	DryRun      bool          `toml:"dry_run"`
	Silent      bool          `toml:"silent"`
	Verbose     bool          `toml:"verbose"`
}

// Default returns the configuration used when no file and no flags are
// given.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills every unset field with its default.
func (c *Config) SetDefaults() {
	if c.Input == "" {
		c.Input = DefaultInput
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Registry == "" {
		c.Registry = npm.DefaultBaseURL
	}
	if c.Concurrency == 0 {
		c.Concurrency = registry.DefaultConcurrency
	}
	if c.Timeout == 0 {
		c.Timeout = integrations.DefaultTimeout
	}
	if c.Retries == 0 {
		c.Retries = DefaultRetries
	}
	if c.CacheDir == "" {
		c.CacheDir = cache.DefaultDir
	}
}

// Load reads the TOML file at path on top of the defaults. When explicit
// is false a missing file is not an error and yields [Default].
func Load(path string, explicit bool) (Config, error) {
	var c Config
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	c.SetDefaults()
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Input == "":
		return errs.New(errs.ErrCodeInvalidConfig, "input file must be set")
	case c.Output == "":
		return errs.New(errs.ErrCodeInvalidConfig, "output file must be set")
	case c.Concurrency < 1:
		return errs.New(errs.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	case c.Timeout < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "timeout must not be negative")
	case c.Retries < 1:
		return errs.New(errs.ErrCodeInvalidConfig, "retries must be at least 1, got %d", c.Retries)
	case c.CacheTTL < 0:
		return errs.New(errs.ErrCodeInvalidConfig, "cache_ttl must not be negative")
	case c.Silent && c.Verbose:
		return errs.New(errs.ErrCodeInvalidConfig, "silent and verbose are mutually exclusive")
	}
	if err := validateURL("registry", c.Registry, "http", "https"); err != nil {
		return err
	}
	if c.RedisURL != "" {
		if err := validateURL("redis_url", c.RedisURL, "redis", "rediss", "unix"); err != nil {
			return err
		}
	}
	return nil
}

func validateURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s is not a valid URL", field)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return errs.New(errs.ErrCodeInvalidConfig, "%s: unsupported scheme %q", field, u.Scheme)
}
