package eventlog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/linepulse/internal/domain/model"
)

// Patterns maps a filename marker to the process whose events the file holds.
type Patterns map[string]model.Process

// DefaultPatterns returns the collector's file naming.
func DefaultPatterns() Patterns {
	return Patterns{
		"포장실작업이벤트로그": model.ProcessPackaging,
		"검사작업이벤트로그":  model.ProcessInspection,
		"이적작업이벤트로그":  model.ProcessTransfer,
	}
}

// ParsePatterns converts marker → process-code pairs, e.g. from configuration.
// An empty input yields DefaultPatterns.
func ParsePatterns(raw map[string]string) (Patterns, error) {
	if len(raw) == 0 {
		return DefaultPatterns(), nil
	}
	out := make(Patterns, len(raw))
	for marker, code := range raw {
		p, err := model.ParseProcess(code)
		if err != nil || p == model.ProcessAll {
			return nil, fmt.Errorf("%w: %q → %q", ErrUnknownPattern, marker, code)
		}
		out[marker] = p
	}
	return out, nil
}

// Match returns the process of a file name. Longer markers win so that a
// marker contained in another never shadows it.
func (p Patterns) Match(name string) (model.Process, bool) {
	markers := make([]string, 0, len(p))
	for m := range p {
		markers = append(markers, m)
	}
	sort.Slice(markers, func(i, j int) bool {
		if len(markers[i]) != len(markers[j]) {
			return len(markers[i]) > len(markers[j])
		}
		return markers[i] < markers[j]
	})
	for _, m := range markers {
		if strings.Contains(name, m) {
			return p[m], true
		}
	}
	return model.ProcessAll, false
}
