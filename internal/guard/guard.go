// Package guard decides whether the supervised program needs launching.
//
// Each call to EnsureRunning lists the live processes once and either reports
// that a process whose command line contains the signature is already present,
// or launches one new detached instance with its output appended to a fresh
// timestamped log file. Check and launch are not atomic: two guards running at
// the same moment can both see nothing and both launch.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/loykin/procguard/internal/detector"
	"github.com/loykin/procguard/internal/history"
	"github.com/loykin/procguard/internal/lister"
	"github.com/loykin/procguard/internal/logfile"
	"github.com/loykin/procguard/internal/metrics"
	"github.com/loykin/procguard/internal/spawner"
)

// Messages printed on stdout, one per successful invocation.
const (
	MsgRunning = "assistant is already running"
	MsgStarted = "assistant is started"
)

// State is the branch taken by EnsureRunning.
type State string

const (
	StateRunning State = "running"
	StateStarted State = "started"
)

// Result describes what EnsureRunning did.
type Result struct {
	State   State
	Match   string // matching command line when State is StateRunning
	LogPath string // log file when State is StateStarted
	PID     int    // launched PID, informational only
}

// Guard holds the fixed parameters of the supervised program.
type Guard struct {
	Name      string // label for logs and metrics
	Signature string
	Command   spawner.Command
	LogDir    string
	LogPrefix string

	Lister  lister.Lister
	Spawner spawner.Spawner
	History history.Sink

	Now    func() time.Time
	Stdout io.Writer
	Logger *slog.Logger
}

func (g *Guard) validate() error {
	switch {
	case g.Signature == "":
		return detector.ErrEmptySignature
	case g.Lister == nil:
		return errors.New("guard requires a process lister")
	case g.Spawner == nil:
		return errors.New("guard requires a spawner")
	case g.LogDir == "":
		return errors.New("guard requires a log directory")
	case g.LogPrefix == "":
		return errors.New("guard requires a log prefix")
	}
	return nil
}

func (g *Guard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Guard) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

func (g *Guard) log() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Guard) detector() detector.SignatureDetector {
	return detector.SignatureDetector{Signature: g.Signature, Lister: g.Lister}
}

// Check reports whether a matching process is alive without launching anything.
func (g *Guard) Check(ctx context.Context) (string, bool, error) {
	if g.Signature == "" {
		return "", false, detector.ErrEmptySignature
	}
	if g.Lister == nil {
		return "", false, errors.New("guard requires a process lister")
	}
	return g.detector().Find(ctx)
}

// EnsureRunning launches the program unless a matching process already exists.
// It never waits for the launched process.
func (g *Guard) EnsureRunning(ctx context.Context) (Result, error) {
	if err := g.validate(); err != nil {
		return Result{}, err
	}
	begin := g.now()
	metrics.SetLastRun(g.Name, float64(begin.Unix()))

	t0 := time.Now()
	match, alive, err := g.detector().Find(ctx)
	metrics.ObserveCheckDuration(g.Name, time.Since(t0).Seconds())
	if err != nil {
		metrics.IncCheck(g.Name, "error")
		return Result{}, err
	}

	if alive {
		g.log().Debug("process already running", "name", g.Name, "match", match)
		res := Result{State: StateRunning, Match: match}
		g.record(ctx, history.Event{Type: history.EventRunning, OccurredAt: begin, Signature: g.Signature})
		metrics.IncCheck(g.Name, string(StateRunning))
		_, _ = fmt.Fprintln(g.stdout(), MsgRunning)
		return res, nil
	}

	logPath := logfile.Path(g.LogDir, g.LogPrefix, begin)
	pid, err := g.Spawner.Spawn(ctx, g.Command, logPath)
	if err != nil {
		metrics.IncCheck(g.Name, "error")
		return Result{}, fmt.Errorf("launch %s: %w", g.Name, err)
	}
	g.log().Debug("process started", "name", g.Name, "pid", pid, "log", logPath)
	res := Result{State: StateStarted, LogPath: logPath, PID: pid}
	g.record(ctx, history.Event{
		Type:       history.EventStarted,
		OccurredAt: begin,
		Signature:  g.Signature,
		Command:    g.Command.Line,
		LogPath:    logPath,
		PID:        pid,
	})
	metrics.IncCheck(g.Name, string(StateStarted))
	metrics.IncStart(g.Name)
	_, _ = fmt.Fprintln(g.stdout(), MsgStarted)
	return res, nil
}

// record sends e to the history sink; failures never change the outcome.
func (g *Guard) record(ctx context.Context, e history.Event) {
	if g.History == nil {
		return
	}
	if err := g.History.Send(ctx, e); err != nil {
		g.log().Warn("history send failed", "name", g.Name, "error", err)
	}
}
