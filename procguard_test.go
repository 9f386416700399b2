//go:build !windows

package procguard

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "procguard.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestFacadeEnsureRunning(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, `
name = "facade"
signature = "sleep 53.917"
command = "sleep 53.917"
log_dir = "`+dir+`"
log_prefix = "facade"

[history]
dsn = "sqlite://`+filepath.Join(dir, "history.db")+`"
`)
	c, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	reg := prometheus.NewRegistry()
	if err := RegisterMetrics(reg); err != nil {
		t.Fatalf("register metrics: %v", err)
	}

	var out bytes.Buffer
	g, closeFn, err := New(c, &out, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer func() { _ = closeFn() }()

	res, err := g.EnsureRunning(context.Background())
	if err != nil {
		t.Fatalf("ensure running: %v", err)
	}
	defer func() { _ = syscall.Kill(-res.PID, syscall.SIGKILL) }()
	if res.State != StateStarted {
		t.Fatalf("expected started, got %s", res.State)
	}
	if !strings.HasPrefix(filepath.Base(res.LogPath), "facade-") {
		t.Fatalf("unexpected log path %s", res.LogPath)
	}
	if g.History == nil {
		t.Fatalf("history sink not configured")
	}

	prom := filepath.Join(dir, "procguard.prom")
	if err := WriteMetrics(prom, reg); err != nil {
		t.Fatalf("write metrics: %v", err)
	}
	b, _ := os.ReadFile(prom)
	if !strings.Contains(string(b), `procguard_guard_starts_total{name="facade"} 1`) {
		t.Fatalf("metrics textfile missing start sample:\n%s", b)
	}
}

func TestFacadeSkipsUnusableHistory(t *testing.T) {
	for _, dsn := range []string{"redis://localhost", "sqlite://" + filepath.Join(t.TempDir(), "no", "such", "dir", "h.db")} {
		t.Run(dsn, func(t *testing.T) {
			dir := t.TempDir()
			c := &Config{
				Name:      "nohistory",
				Signature: "definitely-not-a-running-process-3e7b",
				Command:   "true",
				LogDir:    dir,
				LogPrefix: "nohistory",
				History:   HistoryConfig{DSN: dsn},
			}
			var out, diag bytes.Buffer
			g, closeFn, err := New(c, &out, slog.New(slog.NewTextHandler(&diag, nil)))
			if err != nil {
				t.Fatalf("history failure must not stop the guard: %v", err)
			}
			defer func() { _ = closeFn() }()
			if g.History != nil {
				t.Fatalf("expected no history sink")
			}
			if !strings.Contains(diag.String(), "history sink unavailable") {
				t.Fatalf("expected a warning, got %q", diag.String())
			}

			res, err := g.EnsureRunning(context.Background())
			if err != nil {
				t.Fatalf("ensure running: %v", err)
			}
			if res.State != StateStarted || out.String() != "assistant is started\n" {
				t.Fatalf("unexpected result %s %q", res.State, out.String())
			}
		})
	}
}
