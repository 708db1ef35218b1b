package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/npm-time-machine/internal/config"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Info("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("logger output = %q, want message", buf.String())
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name    string
		silent  bool
		verbose bool
		want    log.Level
	}{
		{"default", false, false, log.InfoLevel},
		{"verbose", false, true, log.DebugLevel},
		{"silent", true, false, log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Silent, cfg.Verbose = tt.silent, tt.verbose
			if got := levelFor(cfg); got != tt.want {
				t.Errorf("levelFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRunID(t *testing.T) {
	a, b := newRunID(), newRunID()
	if len(a) != 8 {
		t.Errorf("len(runID) = %d, want 8", len(a))
	}
	if a == b {
		t.Error("run ids should differ")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/left-pad")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/left-pad", 200, 15*time.Millisecond)
	h.OnCacheSet(ctx, "left-pad.vit", 128)

	out := buf.String()
	for _, want := range []string{"request", "/left-pad", "status=200", "left-pad.vit"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadProgress(t *testing.T) {
	var updates []int
	p := &loadProgress{total: 3, update: func(done, total int) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		updates = append(updates, done)
	}}
	ctx := context.Background()

	p.OnLoadComplete(ctx, "a", 1, true, 0, nil)
	p.OnLoadComplete(ctx, "b", 1, false, 0, nil)
	p.OnLoadComplete(ctx, "c", 0, true, 0, nil)

	if len(updates) != 3 || updates[2] != 3 {
		t.Errorf("updates = %v, want [1 2 3]", updates)
	}
	if got := p.cached.Load(); got != 2 {
		t.Errorf("cached = %d, want 2", got)
	}

	hooks := p.hooks(log.New(&bytes.Buffer{}))
	if hooks.Load != p || hooks.Cache == nil || hooks.HTTP == nil {
		t.Errorf("hooks() = %+v, want all categories set", hooks)
	}
}
