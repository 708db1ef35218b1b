package cli

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/npm-time-machine/internal/config"
	"github.com/matzehuels/npm-time-machine/pkg/observability"
)

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// levelFor maps the verbosity settings to a log level.
func levelFor(cfg config.Config) log.Level {
	switch {
	case cfg.Silent:
		return log.ErrorLevel
	case cfg.Verbose:
		return log.DebugLevel
	}
	return log.InfoLevel
}

// newRunID returns a short random id to correlate the log lines of one run.
func newRunID() string {
	return uuid.NewString()[:8]
}

// logHooks reports registry traffic and memo cache activity at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("request failed", "path", path, "err", err)
}

func (h logHooks) OnCacheHit(_ context.Context, key string) {
	h.logger.Debug("cache hit", "key", key)
}

func (h logHooks) OnCacheMiss(_ context.Context, key string) {
	h.logger.Debug("cache miss", "key", key)
}

func (h logHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.logger.Debug("cache set", "key", key, "bytes", size)
}

// loadProgress counts finished loads and reports them to a callback.
type loadProgress struct {
	total  int
	done   atomic.Int32
	cached atomic.Int32
	update func(done, total int)
}

func (p *loadProgress) OnLoadStart(context.Context, string) {}

func (p *loadProgress) OnLoadComplete(_ context.Context, _ string, _ int, cached bool, _ time.Duration, _ error) {
	if cached {
		p.cached.Add(1)
	}
	n := p.done.Add(1)
	if p.update != nil {
		p.update(int(n), p.total)
	}
}

// hooks bundles logHooks and p for a run.
func (p *loadProgress) hooks(logger *log.Logger) observability.Hooks {
	lh := logHooks{logger: logger}
	return observability.Hooks{Cache: lh, HTTP: lh, Load: p}
}
