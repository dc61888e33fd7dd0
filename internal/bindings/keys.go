package bindings

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// modifiers maps accepted spellings to the canonical name. rank fixes the
// order they are printed in, so "shift+ctrl+s" and "ctrl+shift+s" agree.
var (
	modifiers = map[string]string{
		"ctrl":    "ctrl",
		"control": "ctrl",
		"alt":     "alt",
		"option":  "alt",
		"shift":   "shift",
		"cmd":     "cmd",
		"command": "cmd",
		"meta":    "cmd",
	}
	rank = []string{"ctrl", "alt", "shift", "cmd"}
)

// parseKey validates one configured key. Bindings are single presses, so a
// space separated sequence is rejected.
func parseKey(spec string) (string, error) {
	if len(strings.Fields(spec)) > 1 {
		return "", fmt.Errorf("bindings are single keys, got %q", spec)
	}
	return canonical(spec)
}

// NormalizeKeyString puts a runtime key name into the form the Map indexes
// by. Unusable input normalises to "".
func NormalizeKeyString(raw string) string {
	key, err := canonical(raw)
	if err != nil {
		return ""
	}
	return key
}

func canonical(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", errors.New("empty key")
	case raw == "?":
		return "shift+/", nil
	case raw == "+" || !strings.Contains(raw, "+"):
		return bareKey(raw), nil
	}

	held := make(map[string]bool, len(rank))
	var key []string
	for _, part := range strings.Split(raw, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if mod, ok := modifiers[part]; ok {
			held[mod] = true
			continue
		}
		key = append(key, part)
	}
	if len(key) == 0 {
		return "", fmt.Errorf("key %q has modifiers only", raw)
	}

	parts := make([]string, 0, len(rank)+1)
	for _, mod := range rank {
		if held[mod] {
			parts = append(parts, mod)
		}
	}
	return strings.Join(append(parts, strings.Join(key, "+")), "+"), nil
}

// bareKey lowercases a key with no modifiers. A single capital letter is the
// shifted form of that letter.
func bareKey(raw string) string {
	if r := []rune(raw); len(r) == 1 && unicode.IsUpper(r[0]) && unicode.IsLetter(r[0]) {
		return "shift+" + strings.ToLower(raw)
	}
	return strings.ToLower(raw)
}
