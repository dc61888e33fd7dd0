package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/restpad/internal/dispatch"
)

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusWarn
	statusError
	statusSuccess
)

type statusMsg struct {
	text  string
	level statusLevel
}

type responseMsg struct {
	outcome dispatch.Outcome
}

type clipboardPasteMsg struct {
	text string
	err  error
}

type clipboardCopyMsg struct {
	size int
	err  error
}

func statusCmd(level statusLevel, text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{level: level, text: text}
	}
}

func runCallCmd(call *dispatch.Call) tea.Cmd {
	return func() tea.Msg {
		return responseMsg{outcome: call.Run()}
	}
}
