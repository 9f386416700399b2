package spawner

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/loykin/procguard/internal/env"
)

// ErrEmptyCommand is returned when the command line has nothing to run.
var ErrEmptyCommand = errors.New("empty command line")

// shellMeta are characters that require a shell to interpret the command line.
const shellMeta = "|&;<>*?`$\"'(){}[]~"

// Command describes how to launch the guarded program.
type Command struct {
	Line    string   // command line, e.g. "python3 -u /srv/app/bot.py"
	WorkDir string   // optional working directory
	Env     []string // KEY=VALUE entries layered over the inherited environment
}

// Build constructs an *exec.Cmd for c.Line. It avoids invoking a shell when
// not necessary and honours an explicit "sh -c '...'" prefix without
// wrapping it in a second shell.
func (c Command) Build() (*exec.Cmd, error) {
	line := strings.TrimSpace(c.Line)
	if line == "" {
		return nil, ErrEmptyCommand
	}
	var cmd *exec.Cmd
	if after, ok := parseExplicitShell(line); ok {
		cmd = getShellCommand(after)
	} else if strings.ContainsAny(line, shellMeta) {
		cmd = getShellCommand(line)
	} else {
		parts := strings.Fields(line)
		// #nosec G204
		cmd = exec.Command(parts[0], parts[1:]...)
	}
	if c.WorkDir != "" {
		cmd.Dir = c.WorkDir
	}
	cmd.Env = env.Merge(os.Environ(), c.Env)
	return cmd, nil
}

// parseExplicitShell detects "sh -c <ARG>" style prefixes and returns ARG
// with one pair of enclosing quotes stripped.
func parseExplicitShell(line string) (string, bool) {
	trim := strings.TrimLeft(line, " \t")
	for _, p := range []string{"sh -c ", "/bin/sh -c ", "/usr/bin/sh -c "} {
		if !strings.HasPrefix(trim, p) {
			continue
		}
		after := trim[len(p):]
		if n := len(after); n >= 2 {
			if (after[0] == '\'' && after[n-1] == '\'') || (after[0] == '"' && after[n-1] == '"') {
				after = after[1 : n-1]
			}
		}
		return after, true
	}
	return "", false
}
