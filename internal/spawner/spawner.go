package spawner

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/loykin/procguard/internal/logfile"
)

// Spawner launches a program and lets it go. Implementations must not wait
// for the child to exit.
type Spawner interface {
	// Spawn starts cmd with stdout and stderr appended to logPath and
	// returns the child's PID for reporting only.
	Spawn(ctx context.Context, cmd Command, logPath string) (int, error)
}

// unbufferedEnv asks Python children to flush every write so log lines
// appear as they are produced.
var unbufferedEnv = []string{"PYTHONUNBUFFERED=1"}

// Detached spawns the child in its own session with both output streams
// pointed at one append-mode log file.
type Detached struct{}

func (Detached) Spawn(ctx context.Context, c Command, logPath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(c.Line) == "" {
		return 0, ErrEmptyCommand
	}
	f, err := logfile.Open(logPath)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	// the child holds its own descriptor after Start
	defer func() { _ = f.Close() }()

	null, err := os.Open(os.DevNull)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer func() { _ = null.Close() }()

	c.Env = append(append([]string{}, unbufferedEnv...), c.Env...)
	cmd, err := c.Build()
	if err != nil {
		return 0, err
	}
	cmd.Stdin = null
	cmd.Stdout = f
	cmd.Stderr = f
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %q: %w", c.Line, err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
