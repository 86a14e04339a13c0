package streamfilter

import (
	"fmt"
	"strings"
	"sync"

	goahocorasick "github.com/anknown/ahocorasick"
)

// DefaultPatterns are the fragments of tool-call syntax the models tend to
// leak into their visible text.
var DefaultPatterns = []string{
	"ChackGPT to=functions",
	`{"emotion":`,
	"to=functions.",
	"DisplaySlide(",
	"SetChackEmotion(",
	"SetDrewEmotion(",
	"GetVideo(",
	"DisplayVideo(",
	"GetPresentationSlide(",
}

// Matcher answers case-insensitive containment and prefix questions against
// a fixed pattern set.
type Matcher struct {
	patterns []string
	machine  *goahocorasick.Machine
}

// NewMatcher builds an Aho-Corasick automaton over the lowercased patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("streamfilter: at least one pattern is required")
	}

	lowered := make([]string, 0, len(patterns))
	runes := make([][]rune, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			return nil, fmt.Errorf("streamfilter: empty pattern")
		}
		lp := strings.ToLower(p)
		lowered = append(lowered, lp)
		runes = append(runes, []rune(lp))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(runes); err != nil {
		return nil, fmt.Errorf("streamfilter: building automaton: %w", err)
	}
	return &Matcher{patterns: lowered, machine: m}, nil
}

var defaultMatcher = sync.OnceValue(func() *Matcher {
	m, err := NewMatcher(DefaultPatterns)
	if err != nil {
		panic(err)
	}
	return m
})

// DefaultMatcher returns the shared matcher over DefaultPatterns.
func DefaultMatcher() *Matcher {
	return defaultMatcher()
}

// Contains reports whether any pattern occurs in s.
func (m *Matcher) Contains(s string) bool {
	if s == "" {
		return false
	}
	hits := m.machine.MultiPatternSearch([]rune(strings.ToLower(s)), true)
	return len(hits) > 0
}

// IsPrefix reports whether any pattern starts with s. The empty string is a
// prefix of every pattern.
func (m *Matcher) IsPrefix(s string) bool {
	ls := strings.ToLower(s)
	for _, p := range m.patterns {
		if strings.HasPrefix(p, ls) {
			return true
		}
	}
	return false
}
