package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/npm-time-machine/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand(flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage memoized registry lookups",
	}

	cmd.AddCommand(c.cacheClearCommand(flags))
	cmd.AddCommand(c.cachePathCommand(flags))

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all memoized registry lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			if cfg.RedisURL != "" {
				rc, err := cache.NewRedisCache(cmd.Context(), cfg.RedisURL, cache.DefaultRedisPrefix)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(cmd.Context())
				if err != nil {
					return err
				}
				c.printSuccess("Cleared %d cached entries", n)
				c.printDetail("Redis: %s", cfg.RedisURL)
				return nil
			}

			fc := cache.NewFileCache(cfg.CacheDir)
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			if n == 0 {
				c.printInfo("Cache is empty")
				return nil
			}
			c.printSuccess("Cleared %d cached entries", n)
			c.printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			c.println(cache.NewFileCache(cfg.CacheDir).Dir())
			return nil
		},
	}
}
