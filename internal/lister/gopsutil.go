package lister

import (
	"context"
	"fmt"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Gopsutil enumerates processes natively (procfs on Linux, sysctl on BSD/Darwin)
// without spawning a helper.
type Gopsutil struct {
	Exclude []int32
}

func (g Gopsutil) List(ctx context.Context) ([]string, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	out := make([]string, 0, len(procs))
	for _, p := range procs {
		if skipPID(p.Pid, g.Exclude) {
			continue
		}
		// the process may have exited between enumeration and read
		cl, err := p.CmdlineWithContext(ctx)
		if err != nil {
			continue
		}
		cl = strings.TrimSpace(cl)
		if cl == "" {
			continue // kernel threads
		}
		out = append(out, cl)
	}
	return out, nil
}
