package ui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Clipboard is the system clipboard, swappable in tests.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

func (m *Model) pasteCurlCmd() tea.Cmd {
	clip := m.clip
	return func() tea.Msg {
		text, err := clip.ReadAll()
		return clipboardPasteMsg{text: text, err: err}
	}
}

func (m *Model) copyResponseCmd() tea.Cmd {
	view := m.ctrl.Response()
	if view.RawBody == "" {
		return statusCmd(statusWarn, "No response available to copy")
	}
	clip := m.clip
	text := view.RawBody
	return func() tea.Msg {
		err := clip.WriteAll(text)
		return clipboardCopyMsg{size: len(text), err: err}
	}
}
