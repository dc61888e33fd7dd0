// Package urlsync keeps a URL's query string and its parameter rows in step.
//
// Editing the URL rewrites the rows, and editing a row rewrites the URL. Either
// rewrite would normally fire the opposite transform, so both run under a
// phase guard: while one transform is applying, the other is dropped.
package urlsync

import (
	"net/url"
	"strings"

	"github.com/unkn0wn-root/restpad/internal/kv"
)

type Phase int

const (
	Idle Phase = iota
	Decomposing
	Recomposing
)

func (p Phase) String() string {
	switch p {
	case Decomposing:
		return "decomposing"
	case Recomposing:
		return "recomposing"
	default:
		return "idle"
	}
}

type Synchronizer struct {
	phase Phase
}

func New() *Synchronizer {
	return &Synchronizer{}
}

func (s *Synchronizer) Phase() Phase {
	return s.phase
}

// Hold runs fn with the guard taken so nothing it triggers synchronizes.
// Used when the form is refilled wholesale from a stored request. fn always
// runs; the result reports whether this call took the guard or found it
// already held.
func (s *Synchronizer) Hold(fn func()) bool {
	if s.phase != Idle {
		fn()
		return false
	}
	s.phase = Decomposing
	defer func() { s.phase = Idle }()
	fn()
	return true
}

// Decompose replaces the parameter rows with the query pairs of raw. It returns
// false when the guard is held or raw has no query string.
func (s *Synchronizer) Decompose(raw string, apply func([]kv.Pair)) bool {
	if s.phase != Idle {
		return false
	}
	_, query, ok := SplitQuery(raw)
	if !ok {
		return false
	}
	pairs := ParseQuery(query)

	s.phase = Decomposing
	defer func() { s.phase = Idle }()
	apply(pairs)
	return true
}

// Recompose rebuilds the URL from its base and the given rows and hands the
// result to apply. It returns false when the guard is held.
func (s *Synchronizer) Recompose(current string, rows []kv.Row, apply func(string)) bool {
	if s.phase != Idle {
		return false
	}
	next := Compose(current, kv.Serialize(rows))

	s.phase = Recomposing
	defer func() { s.phase = Idle }()
	apply(next)
	return true
}

// SplitQuery splits on the first '?'.
func SplitQuery(raw string) (base, query string, ok bool) {
	idx := strings.IndexByte(raw, '?')
	if idx < 0 {
		return raw, "", false
	}
	return raw[:idx], raw[idx+1:], true
}

// Compose drops any existing query from current and appends pairs, if any.
func Compose(current string, pairs []kv.Pair) string {
	base, _, _ := SplitQuery(strings.TrimSpace(current))
	if len(pairs) == 0 {
		return base
	}
	return base + "?" + EncodeQuery(pairs)
}

// ParseQuery decodes an x-www-form-urlencoded query keeping pair order.
// Undecodable escapes are kept literally instead of failing the whole query.
func ParseQuery(query string) []kv.Pair {
	pairs := []kv.Pair{}
	for _, seg := range strings.Split(query, "&") {
		if seg == "" {
			continue
		}
		key, value, _ := strings.Cut(seg, "=")
		pairs = append(pairs, kv.Pair{Key: unescape(key), Value: unescape(value)})
	}
	return pairs
}

func EncodeQuery(pairs []kv.Pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(p.Key))
		b.WriteByte('=')
		b.WriteString(EscapeComponent(p.Value))
	}
	return b.String()
}

// EscapeComponent percent-encodes s for use as a query key or value. Spaces
// become %20, not '+'.
func EscapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func unescape(s string) string {
	out, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}
	return out
}
