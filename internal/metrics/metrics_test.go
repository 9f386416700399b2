package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	sharedRegOnce sync.Once
	sharedReg     *prometheus.Registry
)

// testRegistry registers the package collectors exactly once; Register is a
// no-op afterwards, so every test has to gather from the same registry.
func testRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	sharedRegOnce.Do(func() {
		sharedReg = prometheus.NewRegistry()
		if err := Register(sharedReg); err != nil {
			t.Fatalf("register: %v", err)
		}
	})
	return sharedReg
}

func TestRegisterIdempotentAndCountersWork(t *testing.T) {
	reg := testRegistry(t)
	// idempotent: calling again should be no-op
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}

	IncCheck("assistant", "started")
	IncCheck("assistant", "running")
	IncCheck("assistant", "running")
	IncStart("assistant")
	ObserveCheckDuration("assistant", 0.02)
	SetLastRun("assistant", 1705311000)

	if got := testutil.ToFloat64(checks.WithLabelValues("assistant", "running")); got != 2 {
		t.Fatalf("running checks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(starts.WithLabelValues("assistant")); got != 1 {
		t.Fatalf("starts = %v, want 1", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	wantNames := map[string]bool{
		"procguard_guard_checks_total":               false,
		"procguard_guard_starts_total":               false,
		"procguard_guard_check_duration_seconds":     false,
		"procguard_guard_last_run_timestamp_seconds": false,
	}
	for _, mf := range mfs {
		if _, ok := wantNames[mf.GetName()]; ok {
			wantNames[mf.GetName()] = true
		}
	}
	for n, ok := range wantNames {
		if !ok {
			t.Fatalf("expected to find metric %s", n)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := testRegistry(t)
	IncCheck("textfile", "started")

	path := filepath.Join(t.TempDir(), "procguard.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(b), `procguard_guard_checks_total{name="textfile",outcome="started"} 1`) {
		t.Fatalf("textfile missing sample:\n%s", b)
	}
}

type failingRegisterer struct{}

func (failingRegisterer) Register(prometheus.Collector) error  { return errors.New("boom") }
func (failingRegisterer) MustRegister(...prometheus.Collector) {}
func (failingRegisterer) Unregister(prometheus.Collector) bool { return false }

func TestRegisterError(t *testing.T) {
	if regOK.Load() {
		// collectors already registered by another test; Register short-circuits
		if err := Register(failingRegisterer{}); err != nil {
			t.Fatalf("expected no-op after success, got %v", err)
		}
		return
	}
	if err := Register(failingRegisterer{}); err == nil {
		t.Fatal("expected error from failing registerer")
	}
}
