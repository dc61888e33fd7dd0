package bindings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMapContainsExpectedBindings(t *testing.T) {
	m := DefaultMap()

	cases := map[string]ActionID{
		"ctrl+s":    ActionSave,
		"ctrl+r":    ActionSend,
		"ctrl+n":    ActionNewRequest,
		"ctrl+x":    ActionDelete,
		"ctrl+t":    ActionToggleTheme,
		"tab":       ActionFocusNext,
		"shift+tab": ActionFocusPrev,
		"ctrl+a":    ActionAddRow,
		"ctrl+k":    ActionDeleteRow,
		"ctrl+p":    ActionPasteCurl,
		"ctrl+y":    ActionCopyResponse,
		"+":         ActionGrowDrawer,
		"-":         ActionShrinkDrawer,
	}
	for key, want := range cases {
		if got, ok := m.Match(key); !ok || got != want {
			t.Fatalf("expected %s -> %s, got %q (ok=%v)", key, want, got, ok)
		}
	}
	if got := m.Label(ActionSend); got != "ctrl+r" {
		t.Fatalf("expected send label ctrl+r, got %q", got)
	}
}

func TestLoadOverridesBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `
[bindings]
save = ["ctrl+shift+s"]
send = ["Ctrl+Enter", "f5"]
`
	path := filepath.Join(dir, "bindings.toml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}

	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Path != path || src.Format != FormatTOML {
		t.Fatalf("unexpected source %+v", src)
	}

	if action, ok := m.Match("ctrl+s"); ok {
		t.Fatalf("expected ctrl+s to be unbound, got %v", action)
	}
	if action, ok := m.Match("ctrl+shift+s"); !ok || action != ActionSave {
		t.Fatalf("expected ctrl+shift+s -> save, got %q (ok=%v)", action, ok)
	}
	if action, ok := m.Match("ctrl+enter"); !ok || action != ActionSend {
		t.Fatalf("expected ctrl+enter -> send, got %q (ok=%v)", action, ok)
	}
	if action, ok := m.Match("f5"); !ok || action != ActionSend {
		t.Fatalf("expected f5 -> send, got %q (ok=%v)", action, ok)
	}
}

func TestLoadJSONBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bindings.json")
	if err := os.WriteFile(path, []byte(`{"bindings":{"quit":["ctrl+q"]}}`), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Format != FormatJSON {
		t.Fatalf("expected json source, got %q", src.Format)
	}
	if action, ok := m.Match("ctrl+q"); !ok || action != ActionQuit {
		t.Fatalf("expected ctrl+q -> quit, got %q (ok=%v)", action, ok)
	}
}

func TestLoadRejectsConflictingBindings(t *testing.T) {
	dir := t.TempDir()
	payload := `
[bindings]
save = ["ctrl+r"]
`
	path := filepath.Join(dir, "bindings.toml")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}

	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected conflict error, got nil")
	}
}

func TestLoadRejectsUnknownActionAndChords(t *testing.T) {
	for name, payload := range map[string]string{
		"unknown": "[bindings]\nlaunch_rocket = [\"ctrl+l\"]\n",
		"chord":   "[bindings]\nsave = [\"g s\"]\n",
	} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "bindings.toml"), []byte(payload), 0o644); err != nil {
			t.Fatalf("%s: write bindings: %v", name, err)
		}
		if _, _, err := Load(dir); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFallsBackToDefaults(t *testing.T) {
	m, src, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Format != FormatTOML {
		t.Fatalf("expected toml default source, got %q", src.Format)
	}
	if _, ok := m.Match("ctrl+r"); !ok {
		t.Fatalf("expected defaults to be bound")
	}
}

func TestLoadYAMLBindings(t *testing.T) {
	dir := t.TempDir()
	payload := "bindings:\n  toggle_drawer: [\"f2\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "bindings.yaml"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write bindings: %v", err)
	}
	m, src, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if src.Format != FormatYAML {
		t.Fatalf("expected yaml source, got %q", src.Format)
	}
	if action, ok := m.Match("f2"); !ok || action != ActionToggleDrawer {
		t.Fatalf("expected f2 -> toggle_drawer, got %q (ok=%v)", action, ok)
	}
	if _, ok := m.Match("ctrl+d"); ok {
		t.Fatalf("expected ctrl+d to be released")
	}
}

func TestNormalizeKeyString(t *testing.T) {
	cases := map[string]string{
		"Shift+Ctrl+S": "ctrl+shift+s",
		"control+up":   "ctrl+up",
		"option+x":     "alt+x",
		"G":            "shift+g",
		"?":            "shift+/",
		"+":            "+",
		"  Enter ":     "enter",
		"ctrl+":        "",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeKeyString(in); got != want {
			t.Fatalf("NormalizeKeyString(%q) = %q, want %q", in, got, want)
		}
	}
}
