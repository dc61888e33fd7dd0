package theme

import (
	"strings"

	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/restpad/internal/errdef"
	"github.com/unkn0wn-root/restpad/internal/store"
)

// Key is the persistence key for the theme preference.
const Key = "restpad.theme"

type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

func (m Mode) Toggle() Mode {
	if m == Light {
		return Dark
	}
	return Light
}

func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Detect guesses the mode from the terminal background.
func Detect() Mode {
	if termenv.HasDarkBackground() {
		return Dark
	}
	return Light
}

// Load returns the stored preference, then fallback, then detect's answer.
// A nil detect means Dark.
func Load(kv store.KV, fallback string, detect func() Mode) Mode {
	if kv != nil {
		if raw, ok, err := kv.Get(Key); err == nil && ok {
			if mode, ok := ParseMode(raw); ok {
				return mode
			}
		}
	}
	if mode, ok := ParseMode(fallback); ok {
		return mode
	}
	if detect == nil {
		return Dark
	}
	return detect()
}

func Save(kv store.KV, mode Mode) error {
	if err := kv.Set(Key, string(mode)); err != nil {
		return errdef.Wrap(errdef.CodeStorage, err, "save theme")
	}
	return nil
}
