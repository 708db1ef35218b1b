// Package cli implements the npm-time-machine command-line interface.
//
// The root command takes a target date and rewrites a package.json so
// that every dependency whose declared range falls behind the newest
// release published by that date is pinned to that release:
//
//	npm-time-machine 27-09-2017 -f package.json -o package.json.out
//
// # Commands
//
//   - (root): compute and write pins
//   - cache clear: remove memoized registry lookups
//   - cache path: print where lookups are memoized
//   - version: print build information
//   - completion: generate shell completion scripts
//
// # Logging
//
// Diagnostics go to stderr through charmbracelet/log: info by default,
// debug with --verbose (-v), errors only with --silent. Every log line of a
// run carries a short run id. User-facing output goes to stdout.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/npm-time-machine/pkg/buildinfo"
)

// appName is the binary name used in help and version output.
const appName = "npm-time-machine"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stdout io.Writer
	stderr io.Writer
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects user-facing output.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.stdout = stdout
	c.stderr = stderr
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	flags := newRunFlags()

	root := &cobra.Command{
		Use:   appName + " <DD-MM-YYYY>",
		Short: "Move package.json through time",
		Long: `npm-time-machine locks the dependencies of a package.json to the latest
releases published at a given date, but never to anything older than the
declared range already allows.

For a package.json with react ^0.14.0:

  npm-time-machine 27-09-2017   react -> 16.0.0
  npm-time-machine 21-10-2020   react -> 17.0.0`,
		Version:       buildinfo.Version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, args[0], flags)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	flags.register(root)

	root.AddCommand(c.cacheCommand(flags))
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the command tree with args from the command line and
// prints any error to stderr.
func (c *CLI) Execute(ctx context.Context) error {
	err := c.RootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.printError("%v", err)
	}
	return err
}

// versionCommand creates the "version" subcommand.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			c.println(appName + " " + buildinfo.String())
		},
	}
}
