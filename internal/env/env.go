// Package env composes the environment handed to the launched process.
package env

import (
	"sort"
	"strings"
)

// Merge composes a KEY=VALUE list from base and each layer of overrides,
// later layers winning. Base entries are copied verbatim. Layer values may
// reference other variables as ${VAR}; expansion is a single pass against
// the merged map. Entries without '=' or with an empty key are dropped.
// Output is sorted by key.
func Merge(base []string, layers ...[]string) []string {
	m := make(map[string]string, len(base))
	layered := make(map[string]bool)
	apply := func(kvs []string, fromLayer bool) {
		for _, kv := range kvs {
			i := strings.IndexByte(kv, '=')
			if i <= 0 {
				continue
			}
			m[kv[:i]] = kv[i+1:]
			layered[kv[:i]] = fromLayer
		}
	}
	apply(base, false)
	for _, l := range layers {
		apply(l, true)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if layered[k] {
			v = expand(v, m)
		}
		out = append(out, k+"="+v)
	}
	return out
}

func expand(s string, m map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "${")
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i+2:], '}')
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		name := s[i+2 : i+2+j]
		if v, ok := m[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(s[i : i+3+j])
		}
		s = s[i+3+j:]
	}
	b.WriteString(s)
	return b.String()
}
