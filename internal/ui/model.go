// Package ui is the terminal front end. It owns widgets and layout only; every
// change to request state goes through app.Controller as an intent.
package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/restpad/internal/app"
	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/config"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/theme"
)

type focusArea int

const (
	focusSidebar focusArea = iota
	focusURL
	focusEditor
	focusResponse
)

var focusOrder = []focusArea{focusSidebar, focusURL, focusEditor, focusResponse}

type editorTab int

const (
	tabParams editorTab = iota
	tabHeaders
	tabBody
	tabCurl
)

var editorTabs = []editorTab{tabParams, tabHeaders, tabBody, tabCurl}

func (t editorTab) label() string {
	switch t {
	case tabHeaders:
		return "Headers"
	case tabBody:
		return "Body"
	case tabCurl:
		return "cURL"
	default:
		return "Params"
	}
}

// table maps a key/value tab onto its controller table.
func (t editorTab) table() (app.Table, bool) {
	switch t {
	case tabParams:
		return app.ParamsTable, true
	case tabHeaders:
		return app.HeadersTable, true
	}
	return 0, false
}

type Config struct {
	Controller *app.Controller
	Bindings   *bindings.Map
	Layout     config.LayoutSettings
	Clipboard  Clipboard
	Version    string
}

type Model struct {
	cfg   Config
	ctrl  *app.Controller
	keys  *bindings.Map
	theme theme.Theme
	clip  Clipboard

	width  int
	height int
	ready  bool

	focus focusArea
	tab   editorTab

	sidebarCursor int
	sidebarOffset int

	urlInput    textinput.Model
	cellInput   textinput.Model
	editingCell bool
	rowCursor   int
	colCursor   kv.Field
	rowOffset   int

	body textarea.Model
	curl textarea.Model

	response   viewport.Model
	drawer     viewport.Model
	showDrawer bool
	spinner    spinner.Model

	status statusMsg
}

func New(cfg Config) Model {
	keys := cfg.Bindings
	if keys == nil {
		keys = bindings.DefaultMap()
	}
	clip := cfg.Clipboard
	if clip == nil {
		clip = systemClipboard{}
	}
	cfg.Layout = config.NormaliseLayoutSettings(cfg.Layout)

	urlInput := textinput.New()
	urlInput.Prompt = ""
	urlInput.Placeholder = "https://api.example.com/resource?key=value"

	cellInput := textinput.New()
	cellInput.Prompt = ""

	body := textarea.New()
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.Placeholder = `{"key": "value"}`

	curl := textarea.New()
	curl.ShowLineNumbers = false
	curl.CharLimit = 0
	curl.Placeholder = "curl -X POST 'https://...' -H 'Content-Type: application/json' -d '{...}'"

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		cfg:       cfg,
		ctrl:      cfg.Controller,
		keys:      keys,
		theme:     theme.For(cfg.Controller.Theme()),
		clip:      clip,
		focus:     focusURL,
		urlInput:  urlInput,
		cellInput: cellInput,
		body:      body,
		curl:      curl,
		response:  viewport.New(0, 0),
		drawer:    viewport.New(0, 0),
		spinner:   spin,
		status: statusMsg{
			text:  "Ready",
			level: statusInfo,
		},
	}
	m.applyTheme()
	m.loadForm()
	m.refreshResponse()
	m.applyFocus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// loadForm copies the controller's form into every widget.
func (m *Model) loadForm() {
	f := m.ctrl.Form()
	m.urlInput.SetValue(f.URL)
	m.body.SetValue(f.Body)
	m.curl.SetValue(f.Curl)
	m.editingCell = false
	m.cellInput.Blur()
	m.clampRowCursor()
	m.syncSidebarCursor()
}

func (m *Model) syncURL() {
	if url := m.ctrl.Form().URL; m.urlInput.Value() != url {
		m.urlInput.SetValue(url)
	}
}

func (m *Model) syncSidebarCursor() {
	active := m.ctrl.ActiveID()
	for i, e := range m.ctrl.Requests() {
		if e.ID == active {
			m.sidebarCursor = i
			return
		}
	}
}

func (m *Model) activeList() *kv.List {
	table, ok := m.tab.table()
	if !ok {
		return nil
	}
	if table == app.HeadersTable {
		return m.ctrl.Form().Headers
	}
	return m.ctrl.Form().Params
}

func (m *Model) clampRowCursor() {
	list := m.activeList()
	if list == nil || list.Len() == 0 {
		m.rowCursor = 0
		return
	}
	if m.rowCursor >= list.Len() {
		m.rowCursor = list.Len() - 1
	}
	if m.rowCursor < 0 {
		m.rowCursor = 0
	}
}

func (m *Model) applyTheme() {
	m.theme = theme.For(m.ctrl.Theme())
	m.urlInput.PlaceholderStyle = m.theme.Placeholder
	m.cellInput.TextStyle = m.theme.RowValue
	m.spinner.Style = m.theme.StatusBarKey
	m.refreshResponse()
}

func (m *Model) applyFocus() {
	m.urlInput.Blur()
	m.body.Blur()
	m.curl.Blur()
	switch m.focus {
	case focusURL:
		m.urlInput.Focus()
	case focusEditor:
		switch m.tab {
		case tabBody:
			m.body.Focus()
		case tabCurl:
			m.curl.Focus()
		}
	}
}

// textFocused reports whether printable keys belong to a text widget.
func (m *Model) textFocused() bool {
	if m.editingCell || m.focus == focusURL {
		return true
	}
	return m.focus == focusEditor && (m.tab == tabBody || m.tab == tabCurl)
}

func (m *Model) sending() bool {
	return m.ctrl.Response().State == app.ResponsePending
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.status = statusMsg{level: level, text: text}
}
