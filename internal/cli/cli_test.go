package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/npm-time-machine/internal/config"
	"github.com/matzehuels/npm-time-machine/pkg/cache"
	errs "github.com/matzehuels/npm-time-machine/pkg/errors"
)

const packageJSON = `{
  "name": "app",
  "dependencies": {
    "left-pad": "^1.0.0",
    "lodash": "^4.17.0"
  }
}`

func newRegistryServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/left-pad":
			w.Write([]byte(`{"time": {"1.0.0": "2016-01-01T00:00:00.000Z", "1.1.0": "2016-06-01T00:00:00.000Z", "2.0.0": "2020-01-01T00:00:00.000Z"}}`))
		case "/lodash":
			w.Write([]byte(`{"time": {"4.17.0": "2016-11-01T00:00:00.000Z", "4.17.21": "2021-02-20T00:00:00.000Z"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

type harness struct {
	dir    string
	input  string
	output string
	cache  string
	stdout bytes.Buffer
	stderr syncBuffer
	logs   syncBuffer
}

func newHarness(t *testing.T, manifest string) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	h.input = filepath.Join(h.dir, "package.json")
	h.output = filepath.Join(h.dir, "package.json.out")
	h.cache = filepath.Join(h.dir, "cache")
	if manifest != "" {
		if err := os.WriteFile(h.input, []byte(manifest), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func (h *harness) run(args ...string) error {
	c := New(&h.logs, LogInfo)
	c.SetOutput(&h.stdout, &h.stderr)
	root := c.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (h *harness) runArgs(srv *httptest.Server, extra ...string) []string {
	args := []string{"01-01-2021", "-f", h.input, "-o", h.output, "--registry", srv.URL, "--cache-dir", h.cache}
	return append(args, extra...)
}

func TestRun_WritesPins(t *testing.T) {
	srv, _ := newRegistryServer(t)
	h := newHarness(t, packageJSON)

	if err := h.run(h.runArgs(srv)...); err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, h.stderr.String())
	}

	out := h.stdout.String()
	for _, want := range []string{"Processing...", "left-pad: ^1.0.0 → 2.0.0", "Done. Took"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "lodash:") {
		t.Errorf("lodash should not be pinned:\n%s", out)
	}

	written, err := os.ReadFile(h.output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	want := `{
  "name": "app",
  "dependencies": {
    "left-pad": "2.0.0",
    "lodash": "^4.17.0"
  }
}
`
	if string(written) != want {
		t.Errorf("output =\n%s\nwant\n%s", written, want)
	}
	if !strings.Contains(h.logs.String(), "run=") {
		t.Errorf("logs should carry a run id:\n%s", h.logs.String())
	}
}

func TestRun_MemoizesLookups(t *testing.T) {
	srv, requests := newRegistryServer(t)
	h := newHarness(t, packageJSON)

	if err := h.run(h.runArgs(srv)...); err != nil {
		t.Fatal(err)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("first run requests = %d, want 2", got)
	}
	if _, err := os.Stat(filepath.Join(h.cache, "left-pad.vit")); err != nil {
		t.Errorf("memo file missing: %v", err)
	}

	if err := h.run(h.runArgs(srv)...); err != nil {
		t.Fatal(err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("second run requests = %d, want still 2", got)
	}

	if err := h.run(h.runArgs(srv, "--no-cache")...); err != nil {
		t.Fatal(err)
	}
	if got := requests.Load(); got != 4 {
		t.Errorf("--no-cache run requests = %d, want 4", got)
	}
}

func TestRun_DryRun(t *testing.T) {
	srv, _ := newRegistryServer(t)
	h := newHarness(t, packageJSON)

	if err := h.run(h.runArgs(srv, "--dry-run")...); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "dry-run - no files were written.") {
		t.Errorf("stdout missing dry-run notice:\n%s", h.stdout.String())
	}
	if !strings.Contains(h.stdout.String(), "left-pad: ^1.0.0 → 2.0.0") {
		t.Errorf("dry run should list changes:\n%s", h.stdout.String())
	}
	if _, err := os.Stat(h.output); !os.IsNotExist(err) {
		t.Error("dry run wrote the output file")
	}
}

func TestRun_Silent(t *testing.T) {
	srv, _ := newRegistryServer(t)
	h := newHarness(t, packageJSON)

	if err := h.run(h.runArgs(srv, "--silent")...); err != nil {
		t.Fatal(err)
	}
	if h.stdout.Len() != 0 {
		t.Errorf("silent run printed:\n%s", h.stdout.String())
	}
	if _, err := os.Stat(h.output); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRun_ManifestErrors(t *testing.T) {
	srv, _ := newRegistryServer(t)

	t.Run("missing", func(t *testing.T) {
		h := newHarness(t, "")
		if err := h.run(h.runArgs(srv)...); err != nil {
			t.Fatalf("missing input should exit cleanly, got %v", err)
		}
		want := "Error: Package input file (" + h.input + ") couldn't be found. Exiting."
		if !strings.Contains(h.stderr.String(), want) {
			t.Errorf("stderr = %q, want %q", h.stderr.String(), want)
		}
	})

	t.Run("not json", func(t *testing.T) {
		h := newHarness(t, "dependencies: {}")
		if err := h.run(h.runArgs(srv)...); err != nil {
			t.Fatalf("invalid input should exit cleanly, got %v", err)
		}
		want := "Error: Package input file (" + h.input + ") doesn't seem to be valid JSON. Exiting."
		if !strings.Contains(h.stderr.String(), want) {
			t.Errorf("stderr = %q, want %q", h.stderr.String(), want)
		}
	})

	t.Run("no dependencies", func(t *testing.T) {
		h := newHarness(t, `{"name": "app"}`)
		err := h.run(h.runArgs(srv)...)
		if !errs.Is(err, errs.ErrCodeInvalidManifest) {
			t.Errorf("run error = %v, want INVALID_MANIFEST", err)
		}
	})
}

func TestRun_InvalidDate(t *testing.T) {
	h := newHarness(t, packageJSON)
	err := h.run("2021-01-01", "-f", h.input)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("run error = %v, want INVALID_INPUT", err)
	}
}

func TestRun_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	h := newHarness(t, packageJSON)

	err := h.run(h.runArgs(srv, "--retries", "1")...)
	if !errs.Is(err, errs.ErrCodeNetwork) {
		t.Errorf("run error = %v, want NETWORK_ERROR", err)
	}

	h.stdout.Reset()
	if err := h.run(h.runArgs(srv, "--retries", "1", "--keep-going")...); err != nil {
		t.Fatalf("--keep-going run failed: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "skipped") {
		t.Errorf("stdout should report skipped packages:\n%s", h.stdout.String())
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"27-09-2017", time.Date(2017, 9, 27, 0, 0, 0, 0, time.UTC), false},
		{"01-01-2021", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"1-1-2021", time.Time{}, true},
		{"2021-01-01", time.Time{}, true},
		{"31-02-2021", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	srv, _ := newRegistryServer(t)
	h := newHarness(t, packageJSON)
	fromConfig := filepath.Join(h.dir, "from-config.json")
	cfgPath := filepath.Join(h.dir, config.DefaultFile)
	cfg := "output = \"" + filepath.ToSlash(fromConfig) + "\"\nconcurrency = 2\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	base := []string{"01-01-2021", "-f", h.input, "--registry", srv.URL, "--cache-dir", h.cache, "--config", cfgPath}

	if err := h.run(base...); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(fromConfig); err != nil {
		t.Errorf("config output not used: %v", err)
	}

	if err := h.run(append(base, "-o", h.output)...); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(h.output); err != nil {
		t.Errorf("-o should override config output: %v", err)
	}
}

func TestRun_BadConfig(t *testing.T) {
	h := newHarness(t, packageJSON)
	cfgPath := filepath.Join(h.dir, "bad.toml")
	if err := os.WriteFile(cfgPath, []byte("concurrency = -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := h.run("01-01-2021", "-f", h.input, "--config", cfgPath)
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("run error = %v, want INVALID_CONFIG", err)
	}
}

func TestCacheCommands(t *testing.T) {
	srv, _ := newRegistryServer(t)
	h := newHarness(t, packageJSON)

	if err := h.run("cache", "path", "--cache-dir", h.cache); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(h.stdout.String()) != h.cache {
		t.Errorf("cache path = %q, want %q", h.stdout.String(), h.cache)
	}

	h.stdout.Reset()
	if err := h.run("cache", "clear", "--cache-dir", h.cache); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "Cache is empty") {
		t.Errorf("clear on empty cache printed:\n%s", h.stdout.String())
	}

	if err := h.run(h.runArgs(srv)...); err != nil {
		t.Fatal(err)
	}
	h.stdout.Reset()
	if err := h.run("cache", "clear", "--cache-dir", h.cache); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "Cleared 2 cached entries") {
		t.Errorf("clear printed:\n%s", h.stdout.String())
	}
	if n, _ := cache.NewFileCache(h.cache).Clear(); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run("version"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.stdout.String(), "commit:") {
		t.Errorf("version output = %q", h.stdout.String())
	}
}

func TestExecute_PrintsErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	c := New(&bytes.Buffer{}, LogInfo)
	c.SetOutput(&stdout, &stderr)

	root := c.RootCommand()
	root.SetArgs([]string{"not-a-date"})
	err := root.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if stderr.Len() != 0 {
		t.Errorf("root command should not print errors itself, got %q", stderr.String())
	}
}
