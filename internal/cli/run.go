package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/npm-time-machine/internal/config"
	"github.com/matzehuels/npm-time-machine/pkg/cache"
	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
	"github.com/matzehuels/npm-time-machine/pkg/httputil"
	"github.com/matzehuels/npm-time-machine/pkg/integrations"
	"github.com/matzehuels/npm-time-machine/pkg/integrations/npm"
	"github.com/matzehuels/npm-time-machine/pkg/manifest"
	"github.com/matzehuels/npm-time-machine/pkg/registry"
	"github.com/matzehuels/npm-time-machine/pkg/timemachine"
)

// run executes one time-machine run for the date argument.
func (c *CLI) run(cmd *cobra.Command, dateArg string, flags *runFlags) error {
	start := time.Now()
	ctx := cmd.Context()

	date, err := parseDate(dateArg)
	if err != nil {
		return err
	}
	cfg, err := flags.resolve(cmd)
	if err != nil {
		return err
	}
	c.SetLogLevel(levelFor(cfg))
	logger := c.Logger.With("run", newRunID())

	if !cfg.Silent {
		c.printInfo("Processing...")
	}
	defer func() {
		if cfg.DryRun {
			c.printInfo("dry-run - no files were written.")
		}
	}()

	m, err := manifest.Read(cfg.Input)
	switch {
	case errs.Is(err, errs.ErrCodeFileNotFound):
		fmt.Fprintf(c.stderr, "Error: Package input file (%s) couldn't be found. Exiting.\n", cfg.Input)
		return nil
	case errors.Is(err, manifest.ErrSyntax):
		fmt.Fprintf(c.stderr, "Error: Package input file (%s) doesn't seem to be valid JSON. Exiting.\n", cfg.Input)
		return nil
	case err != nil:
		return err
	}
	logger.Debug("read manifest", "path", cfg.Input, "dependencies", len(m.Dependencies()))

	store, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	progress := &loadProgress{total: len(m.Dependencies())}
	var spinner *Spinner
	if !cfg.Silent {
		spinner = newSpinner(ctx, c.stderr, fmt.Sprintf("Loading release histories (0/%d)", progress.total))
		progress.update = func(done, total int) {
			spinner.SetMessage(fmt.Sprintf("Loading release histories (%d/%d)", done, total))
		}
		spinner.Start()
	}
	hooks := progress.hooks(logger)

	client := npm.NewClient(cfg.Registry, integrations.Options{Timeout: cfg.Timeout, Hooks: hooks.HTTP})
	reg := registry.New(client, store, registry.Options{
		Concurrency: cfg.Concurrency,
		Refresh:     cfg.NoCache,
		CacheTTL:    cfg.CacheTTL,
		Retry:       httputil.Policy{Attempts: cfg.Retries, Delay: retryDelay},
		Hooks:       hooks,
		Logger:      logger,
	})
	machine := timemachine.New(reg, m, timemachine.Options{
		Date:      date,
		Output:    cfg.Output,
		DryRun:    cfg.DryRun,
		KeepGoing: cfg.KeepGoing,
		Logger:    logger,
	})

	res, err := machine.Run(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	logger.Info("resolved",
		"packages", progress.total,
		"cached", progress.cached.Load(),
		"pins", len(res.Changes))

	c.report(cfg, m, res, time.Since(start))
	return nil
}

// report prints the pins and the run summary.
func (c *CLI) report(cfg config.Config, m *manifest.Manifest, res *timemachine.Result, elapsed time.Duration) {
	if cfg.Silent && !cfg.DryRun {
		return
	}

	if len(res.Changes) == 0 {
		c.printInfo("No changes.")
	} else {
		c.printSuccess("%d change(s):", len(res.Changes))
		for _, ch := range res.Changes {
			from := ""
			if d, ok := m.Dependency(ch.Package); ok {
				from = d.Raw
			}
			c.printChange(ch.Package, from, ch.Version.String())
		}
	}
	for pkg, err := range res.Failed {
		c.printWarning("%s skipped: %s", pkg, errs.UserMessage(err))
	}
	if res.Written != "" {
		c.printFile(res.Written)
	}
	if !cfg.Silent {
		c.printInfo("Done. Took %.3f seconds.", elapsed.Seconds())
	}
}

// openCache returns the memo store selected by cfg: redis when a URL is
// configured, the cache directory otherwise.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cache.DefaultRedisPrefix)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeCache, err, "connect to redis")
		}
		return rc, nil
	}
	return cache.NewFileCache(cfg.CacheDir), nil
}
