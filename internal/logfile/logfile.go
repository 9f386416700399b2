// Package logfile names and opens the per-launch output files of the guarded
// process. Files are created once per launch and never removed here.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// TimestampLayout renders YYYYMMDD-HHMMSS.
const TimestampLayout = "20060102-150405"

// Name returns "<prefix>-YYYYMMDD-HHMMSS.log" for t.
func Name(prefix string, t time.Time) string {
	return fmt.Sprintf("%s-%s.log", prefix, t.Format(TimestampLayout))
}

// Path joins dir with Name(prefix, t).
func Path(dir, prefix string, t time.Time) string {
	return filepath.Join(dir, Name(prefix, t))
}

// Pattern matches file names produced by Name for prefix.
func Pattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-\d{8}-\d{6}\.log$`)
}

// Open opens path for appending, creating it if absent.
func Open(path string) (*os.File, error) {
	// #nosec G304
	return os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// List returns the names of launch logs for prefix in dir, oldest first.
func List(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	re := Pattern(prefix)
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && re.MatchString(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
