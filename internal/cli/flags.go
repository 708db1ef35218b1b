package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/npm-time-machine/internal/config"
)

// runFlags are the command-line settings. Values from flags the user set
// explicitly override the config file.
type runFlags struct {
	configFile string
	cfg        config.Config
}

func newRunFlags() *runFlags {
	return &runFlags{configFile: config.DefaultFile, cfg: config.Default()}
}

func (f *runFlags) register(root *cobra.Command) {
	p := root.PersistentFlags()
	p.StringVar(&f.configFile, "config", f.configFile, "TOML config file")
	p.StringVar(&f.cfg.CacheDir, "cache-dir", f.cfg.CacheDir, "directory of memoized registry lookups")
	p.StringVar(&f.cfg.RedisURL, "redis-url", f.cfg.RedisURL, "memoize registry lookups in redis instead of the cache directory")
	p.BoolVarP(&f.cfg.Verbose, "verbose", "v", false, "enable verbose logging")
	p.BoolVar(&f.cfg.Silent, "silent", false, "silent mode")

	l := root.Flags()
	l.StringVarP(&f.cfg.Input, "file", "f", f.cfg.Input, "input file")
	l.StringVarP(&f.cfg.Output, "output", "o", f.cfg.Output, "output file")
	l.BoolVar(&f.cfg.NoCache, "no-cache", false, "don't use / reload cache")
	l.BoolVar(&f.cfg.DryRun, "dry-run", false, "dry run - show changes only")
	l.StringVar(&f.cfg.Registry, "registry", f.cfg.Registry, "npm registry base URL")
	l.IntVar(&f.cfg.Concurrency, "concurrency", f.cfg.Concurrency, "max registry requests in flight")
	l.DurationVar(&f.cfg.Timeout, "timeout", f.cfg.Timeout, "per-request timeout")
	l.IntVar(&f.cfg.Retries, "retries", f.cfg.Retries, "attempts per registry request")
	l.DurationVar(&f.cfg.CacheTTL, "cache-ttl", 0, "expire memoized lookups after this long (0 keeps them)")
	l.BoolVar(&f.cfg.KeepGoing, "keep-going", false, "skip packages that fail to load instead of aborting")
}

// resolve loads the config file and applies every flag the user set on
// cmd on top of it.
func (f *runFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(f.configFile, explicit)
	if err != nil {
		return config.Config{}, err
	}

	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("cache-dir", func() { cfg.CacheDir = f.cfg.CacheDir })
	set("redis-url", func() { cfg.RedisURL = f.cfg.RedisURL })
	set("verbose", func() { cfg.Verbose = f.cfg.Verbose })
	set("silent", func() { cfg.Silent = f.cfg.Silent })
	set("file", func() { cfg.Input = f.cfg.Input })
	set("output", func() { cfg.Output = f.cfg.Output })
	set("no-cache", func() { cfg.NoCache = f.cfg.NoCache })
	set("dry-run", func() { cfg.DryRun = f.cfg.DryRun })
	set("registry", func() { cfg.Registry = f.cfg.Registry })
	set("concurrency", func() { cfg.Concurrency = f.cfg.Concurrency })
	set("timeout", func() { cfg.Timeout = f.cfg.Timeout })
	set("retries", func() { cfg.Retries = f.cfg.Retries })
	set("cache-ttl", func() { cfg.CacheTTL = f.cfg.CacheTTL })
	set("keep-going", func() { cfg.KeepGoing = f.cfg.KeepGoing })

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// retryDelay is the wait before the second attempt of a registry request.
const retryDelay = time.Second
