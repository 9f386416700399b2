package procguard

import (
	"io"
	"log/slog"

	cfg "github.com/loykin/procguard/internal/config"
	"github.com/loykin/procguard/internal/guard"
	"github.com/loykin/procguard/internal/history"
	"github.com/loykin/procguard/internal/history/factory"
	"github.com/loykin/procguard/internal/lister"
	"github.com/loykin/procguard/internal/metrics"
	"github.com/loykin/procguard/internal/spawner"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.

type Guard = guard.Guard

type Result = guard.Result

type State = guard.State

type Config = cfg.FileConfig

type Command = spawner.Command

type HistorySink = history.Sink

type HistoryConfig = cfg.HistoryConfig

const (
	StateRunning = guard.StateRunning
	StateStarted = guard.StateStarted
)

func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// New builds a Guard from c. The returned close function releases the
// history sink, if one was configured. A sink that cannot be opened is
// logged and skipped.
func New(c *Config, stdout io.Writer, log *slog.Logger) (*Guard, func() error, error) {
	l, err := lister.New(c.Lister)
	if err != nil {
		return nil, nil, err
	}
	env, err := c.ChildEnv()
	if err != nil {
		return nil, nil, err
	}
	g := &guard.Guard{
		Name:      c.Name,
		Signature: c.Signature,
		Command:   spawner.Command{Line: c.Command, WorkDir: c.WorkDir, Env: env},
		LogDir:    c.LogDir,
		LogPrefix: c.LogPrefix,
		Lister:    l,
		Spawner:   spawner.Detached{},
		Stdout:    stdout,
		Logger:    log,
	}
	closeFn := func() error { return nil }
	if c.History.DSN != "" {
		sink, err := factory.NewSinkFromDSN(c.History.DSN)
		if err != nil {
			// history is an observer; the guard runs without it
			if log == nil {
				log = slog.Default()
			}
			log.Warn("history sink unavailable", "name", c.Name, "error", err)
			return g, closeFn, nil
		}
		g.History = sink
		if cl, ok := sink.(io.Closer); ok {
			closeFn = cl.Close
		}
	}
	return g, closeFn, nil
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }

// WriteMetrics writes gathered metrics to a node_exporter textfile.
func WriteMetrics(path string, g prometheus.Gatherer) error { return metrics.WriteTextfile(path, g) }
