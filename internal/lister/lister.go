package lister

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnknownLister is returned by New for an unsupported lister kind.
var ErrUnknownLister = errors.New("unknown process lister")

// Kinds accepted by New.
const (
	KindGopsutil = "gopsutil"
	KindPS       = "ps"
)

// Lister returns the command lines of the processes currently alive.
// Implementations exclude the calling process and any helper process they
// spawn to perform the enumeration.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// New returns the lister registered under kind. An empty kind selects gopsutil.
func New(kind string, exclude ...int32) (Lister, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindGopsutil:
		return Gopsutil{Exclude: exclude}, nil
	case KindPS:
		return PS{Exclude: exclude}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLister, kind)
	}
}

// Static is a fixed process table.
type Static []string

func (s Static) List(context.Context) ([]string, error) {
	out := make([]string, len(s))
	copy(out, s)
	return out, nil
}

// skipPID reports whether pid is the current process or one of exclude.
func skipPID(pid int32, exclude []int32) bool {
	if int(pid) == os.Getpid() {
		return true
	}
	for _, e := range exclude {
		if e == pid {
			return true
		}
	}
	return false
}
