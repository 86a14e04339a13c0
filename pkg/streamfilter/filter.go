// Package streamfilter withholds leaked tool-call syntax from streamed model
// output.
//
// Tokens accumulate until the buffer can no longer grow into a forbidden
// pattern, at which point they are released. Once a pattern is seen, output is
// suppressed through the end of the current line.
package streamfilter

import (
	"strings"
)

// Filter is a per-stream redaction state machine. It is not safe for
// concurrent use.
type Filter struct {
	matcher  *Matcher
	acc      strings.Builder
	skipping bool
	emitted  int
}

// New returns a filter using m, or the default matcher when m is nil.
func New(m *Matcher) *Filter {
	if m == nil {
		m = DefaultMatcher()
	}
	return &Filter{matcher: m}
}

// Push feeds one streamed token and returns the text that may be forwarded.
func (f *Filter) Push(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	f.acc.WriteString(token)
	buf := f.acc.String()

	if f.skipping {
		idx := strings.IndexByte(buf, '\n')
		if idx < 0 {
			return "", false
		}
		rest := buf[idx+1:]
		f.acc.Reset()
		f.skipping = false
		if rest == "" {
			return "", false
		}
		f.emitted++
		return rest, true
	}

	trimmed := strings.TrimSpace(buf)
	switch {
	case f.matcher.Contains(trimmed):
		f.skipping = true
		return "", false
	case f.matcher.IsPrefix(trimmed):
		return "", false
	}

	f.acc.Reset()
	f.emitted++
	return buf, true
}

// Pending returns the withheld text. It is discarded when the stream ends.
func (f *Filter) Pending() string {
	return f.acc.String()
}

// Skipping reports whether the filter is suppressing output until a newline.
func (f *Filter) Skipping() bool {
	return f.skipping
}

// Emitted counts the chunks released so far.
func (f *Filter) Emitted() int {
	return f.emitted
}
