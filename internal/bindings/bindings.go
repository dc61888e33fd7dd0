// Package bindings maps key presses to UI actions. Every action has a
// default key; users rebind them in a file under the config directory.
package bindings

import (
	"fmt"
	"sort"
)

// Map resolves a normalised key to its action and an action to its keys.
type Map struct {
	byKey    map[string]ActionID
	byAction map[ActionID][]string
}

// DefaultMap is the built-in layout. It panics only if the definitions table
// itself conflicts.
func DefaultMap() *Map {
	m, err := compile(nil)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Map) Match(key string) (ActionID, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.byKey[NormalizeKeyString(key)]
	return id, ok
}

// Keys lists the keys bound to action, primary first.
func (m *Map) Keys(action ActionID) []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.byAction[action]...)
}

// Label is the primary key of action, or "" when it is unbound.
func (m *Map) Label(action ActionID) string {
	if m == nil || len(m.byAction[action]) == 0 {
		return ""
	}
	return m.byAction[action][0]
}

// compile layers overrides on top of the defaults. An override replaces the
// whole key list of its action.
func compile(overrides map[ActionID][]string) (*Map, error) {
	m := &Map{
		byKey:    make(map[string]ActionID),
		byAction: make(map[ActionID][]string, len(definitions)),
	}
	for _, def := range definitions {
		keys := def.defaults
		if custom, ok := overrides[def.id]; ok {
			keys = custom
		}
		m.byAction[def.id] = append([]string(nil), keys...)
	}

	for _, id := range KnownActions() {
		for _, key := range m.byAction[id] {
			if owner, taken := m.byKey[key]; taken {
				if owner == id {
					return nil, fmt.Errorf("action %s: key %q listed twice", id, key)
				}
				return nil, fmt.Errorf("key %q bound to both %s and %s", key, owner, id)
			}
			m.byKey[key] = id
		}
	}
	return m, nil
}

// KnownActions returns every action id in sorted order.
func KnownActions() []ActionID {
	ids := make([]ActionID, 0, len(definitions))
	for _, def := range definitions {
		ids = append(ids, def.id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
