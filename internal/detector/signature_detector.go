package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loykin/procguard/internal/lister"
)

// ErrEmptySignature is returned when a detector has nothing to match on.
var ErrEmptySignature = errors.New("empty process signature")

// SignatureDetector reports a process as alive when any live command line
// contains Signature. Matching is a plain substring test, so an unrelated
// process whose command line happens to contain the signature also counts.
type SignatureDetector struct {
	Signature string
	Lister    lister.Lister
}

func (d SignatureDetector) Alive(ctx context.Context) (bool, error) {
	_, ok, err := d.Find(ctx)
	return ok, err
}

// Find returns the first command line that matches.
func (d SignatureDetector) Find(ctx context.Context) (string, bool, error) {
	if d.Signature == "" {
		return "", false, ErrEmptySignature
	}
	if d.Lister == nil {
		return "", false, errors.New("signature detector has no lister")
	}
	lines, err := d.Lister.List(ctx)
	if err != nil {
		return "", false, fmt.Errorf("enumerate processes: %w", err)
	}
	line, ok := Match(lines, d.Signature)
	return line, ok, nil
}

func (d SignatureDetector) Describe() string { return "signature:" + d.Signature }

// Match returns the first element of cmdlines containing signature.
func Match(cmdlines []string, signature string) (string, bool) {
	if signature == "" {
		return "", false
	}
	for _, l := range cmdlines {
		if strings.Contains(l, signature) {
			return l, true
		}
	}
	return "", false
}
