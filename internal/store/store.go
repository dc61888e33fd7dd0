// Package store provides the key/value persistence backends behind the
// request collection and the theme preference.
package store

import (
	"strings"

	"github.com/unkn0wn-root/restpad/internal/errdef"
)

// KV is an opaque get/set-by-key string store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Closer is implemented by backends holding OS resources.
type Closer interface {
	Close() error
}

func Open(backend Backend, path string) (KV, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(string(backend)))) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(path), nil
	case BackendSQLite, "":
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, errdef.New(errdef.CodeConfig, "unknown storage backend %q", backend)
	}
}

func Close(s KV) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
