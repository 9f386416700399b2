package lister

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// PS lists processes through `ps -eo pid=,args=`. The ps helper's own line
// is filtered out by PID so it never counts as a match.
type PS struct {
	Exclude []int32
}

func (p PS) List(ctx context.Context) ([]string, error) {
	// #nosec G204
	cmd := exec.CommandContext(ctx, "ps", "-eo", "pid=,args=")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ps pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ps: %w", err)
	}
	helper := int32(cmd.Process.Pid)

	var out []string
	s := bufio.NewScanner(stdout)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		pid, args, ok := parsePSLine(s.Text())
		if !ok || pid == helper || skipPID(pid, p.Exclude) {
			continue
		}
		out = append(out, args)
	}
	scanErr := s.Err()
	if scanErr != nil {
		_, _ = io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("read ps output: %w", scanErr)
	}
	return out, nil
}

// parsePSLine splits a "  PID ARGS..." line.
func parsePSLine(line string) (int32, string, bool) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i <= 0 {
		return 0, "", false
	}
	pid, err := strconv.ParseInt(line[:i], 10, 32)
	if err != nil {
		return 0, "", false
	}
	args := strings.TrimSpace(line[i:])
	if args == "" {
		return 0, "", false
	}
	return int32(pid), args, true
}
