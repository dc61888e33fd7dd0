// Package kv models the ordered key/value rows behind query parameters and headers.
package kv

import (
	"net/http"
	"strings"
)

type Pair struct {
	Key   string `json:"key"   yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Row is an editable row. Unlike Pair it may carry a blank key while being edited.
type Row struct {
	Key   string
	Value string
}

type Field int

const (
	FieldKey Field = iota
	FieldValue
)

// List is the live, ordered set of rows for one editor.
type List struct {
	rows []Row
}

func NewList(pairs []Pair) *List {
	l := &List{}
	l.Replace(pairs)
	return l
}

func (l *List) Len() int {
	return len(l.rows)
}

func (l *List) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

func (l *List) Row(i int) (Row, bool) {
	if i < 0 || i >= len(l.rows) {
		return Row{}, false
	}
	return l.rows[i], true
}

func (l *List) Add(key, value string) int {
	l.rows = append(l.rows, Row{Key: key, Value: value})
	return len(l.rows) - 1
}

func (l *List) Delete(i int) bool {
	if i < 0 || i >= len(l.rows) {
		return false
	}
	l.rows = append(l.rows[:i], l.rows[i+1:]...)
	return true
}

func (l *List) Edit(i int, field Field, value string) bool {
	if i < 0 || i >= len(l.rows) {
		return false
	}
	switch field {
	case FieldKey:
		l.rows[i].Key = value
	case FieldValue:
		l.rows[i].Value = value
	default:
		return false
	}
	return true
}

// Replace drops every row and loads pairs in order.
func (l *List) Replace(pairs []Pair) {
	l.rows = l.rows[:0]
	for _, p := range pairs {
		l.rows = append(l.rows, Row{Key: p.Key, Value: p.Value})
	}
}

// EnsureBlank leaves a single empty row in an otherwise empty list so editors
// always have something to type into.
func (l *List) EnsureBlank() {
	if len(l.rows) == 0 {
		l.rows = append(l.rows, Row{})
	}
}

func (l *List) Pairs() []Pair {
	return Serialize(l.rows)
}

// Serialize trims rows and drops any whose key is blank. Empty values and
// duplicate keys survive in their original order.
func Serialize(rows []Row) []Pair {
	out := make([]Pair, 0, len(rows))
	for _, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			continue
		}
		out = append(out, Pair{Key: key, Value: strings.TrimSpace(r.Value)})
	}
	return out
}

// Flatten collapses pairs into a map; later duplicates win.
func Flatten(pairs []Pair) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out
}

// Header is Flatten for HTTP. Names are canonicalized before collapsing, so
// "x-id" and "X-Id" are one header and the later row wins.
func Header(pairs []Pair) http.Header {
	h := make(http.Header, len(pairs))
	for _, p := range pairs {
		h[http.CanonicalHeaderKey(p.Key)] = []string{p.Value}
	}
	return h
}

func HasKey(pairs []Pair, key string) bool {
	for _, p := range pairs {
		if strings.EqualFold(p.Key, key) {
			return true
		}
	}
	return false
}

func Clone(pairs []Pair) []Pair {
	if pairs == nil {
		return []Pair{}
	}
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	return out
}
