package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unkn0wn-root/restpad/internal/app"
	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/request"
)

// panelStep is one drawer row expressed in the persisted panel size unit.
const panelStep = 20

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.ready = true
		m.applyLayout()
	case tea.KeyMsg:
		if cmd := m.handleKey(typed); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case responseMsg:
		if m.ctrl.Deliver(typed.outcome) {
			m.refreshResponse()
			out := typed.outcome
			if out.Failed() {
				m.setStatus(statusError, "Request failed: "+out.Err.Error())
			} else {
				m.setStatus(statusSuccess, fmt.Sprintf("%s in %dms", out.Status(), out.ElapsedMillis()))
			}
		}
	case spinner.TickMsg:
		if m.sending() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			cmds = append(cmds, cmd)
		}
	case clipboardPasteMsg:
		if typed.err != nil {
			m.setStatus(statusError, "Clipboard unavailable: "+typed.err.Error())
			break
		}
		if cmd := m.dispatch(app.ImportCurl{Text: typed.text}); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.focus = focusEditor
		m.tab = tabCurl
		m.applyFocus()
	case clipboardCopyMsg:
		if typed.err != nil {
			m.setStatus(statusError, "Copy failed: "+typed.err.Error())
		} else {
			m.setStatus(statusSuccess, fmt.Sprintf("Copied response body (%d bytes)", typed.size))
		}
	case statusMsg:
		m.status = typed
	}

	m.syncOffsets()
	return m, tea.Batch(cmds...)
}

// dispatch hands in to the controller and refreshes whatever it touched.
func (m *Model) dispatch(in app.Intent) tea.Cmd {
	call := m.ctrl.Handle(in)

	switch in := in.(type) {
	case app.Switch, app.Create, app.Delete, app.ImportCurl:
		m.loadForm()
		m.refreshResponse()
	case app.AddRow, app.DeleteRow, app.EditRow:
		m.syncURL()
		m.clampRowCursor()
	case app.ToggleTheme:
		m.applyTheme()
	case app.ResizePanel:
		m.applyLayout()
	case app.Save:
		if in.Rerender {
			m.syncSidebarCursor()
		}
	}
	if notice := m.ctrl.Notice(); notice != "" {
		m.setStatus(statusInfo, notice)
	}

	if call == nil {
		return nil
	}
	m.refreshResponse()
	m.setStatus(statusInfo, "Sending "+call.Request.Method+" "+call.Request.URL)
	return tea.Batch(runCallCmd(call), m.spinner.Tick)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	if m.editingCell {
		return m.updateCell(msg)
	}
	if !(m.textFocused() && msg.Type == tea.KeyRunes) {
		if action, ok := m.keys.Match(key); ok {
			return m.runAction(action)
		}
	}

	switch m.focus {
	case focusSidebar:
		return m.updateSidebar(msg)
	case focusURL:
		return m.updateURL(msg)
	case focusEditor:
		return m.updateEditor(msg)
	case focusResponse:
		var cmd tea.Cmd
		m.response, cmd = m.response.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) runAction(action bindings.ActionID) tea.Cmd {
	switch action {
	case bindings.ActionQuit:
		return m.quit()
	case bindings.ActionSave:
		return m.dispatch(app.Save{Rerender: true})
	case bindings.ActionSend:
		return m.dispatch(app.Send{})
	case bindings.ActionNewRequest:
		return m.dispatch(app.Create{})
	case bindings.ActionDelete:
		return m.dispatch(app.Delete{ID: m.deleteTarget()})
	case bindings.ActionToggleTheme:
		return m.dispatch(app.ToggleTheme{})
	case bindings.ActionFocusNext:
		m.cycleFocus(1)
	case bindings.ActionFocusPrev:
		m.cycleFocus(-1)
	case bindings.ActionNextTab:
		m.cycleTab(1)
	case bindings.ActionPrevTab:
		m.cycleTab(-1)
	case bindings.ActionAddRow:
		table, ok := m.tab.table()
		if !ok {
			return nil
		}
		cmd := m.dispatch(app.AddRow{Table: table})
		m.focus = focusEditor
		m.rowCursor = m.activeList().Len() - 1
		m.colCursor = kv.FieldKey
		m.applyFocus()
		return cmd
	case bindings.ActionDeleteRow:
		table, ok := m.tab.table()
		if !ok {
			return nil
		}
		return m.dispatch(app.DeleteRow{Table: table, Index: m.rowCursor})
	case bindings.ActionPasteCurl:
		return m.pasteCurlCmd()
	case bindings.ActionCopyResponse:
		return m.copyResponseCmd()
	case bindings.ActionCycle:
		return m.cycle()
	case bindings.ActionToggleDrawer:
		m.showDrawer = !m.showDrawer
		m.applyLayout()
	case bindings.ActionGrowDrawer:
		m.showDrawer = true
		return m.dispatch(app.ResizePanel{Size: m.ctrl.PanelSize() + panelStep})
	case bindings.ActionShrinkDrawer:
		return m.dispatch(app.ResizePanel{Size: m.ctrl.PanelSize() - panelStep})
	}
	return nil
}

// cycle is the context action: method on the URL line, body type on the body
// tab, import on the curl tab.
func (m *Model) cycle() tea.Cmd {
	f := m.ctrl.Form()
	switch {
	case m.focus == focusURL:
		return m.dispatch(app.EditMethod{Method: nextMethod(f.Method)})
	case m.focus == focusEditor && m.tab == tabBody:
		return m.dispatch(app.EditBodyType{BodyType: nextBodyType(f.BodyType)})
	case m.focus == focusEditor && m.tab == tabCurl:
		return m.dispatch(app.ImportCurl{Text: m.curl.Value()})
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.ctrl.Handle(app.Save{})
	return tea.Quit
}

func (m *Model) deleteTarget() string {
	if m.focus == focusSidebar {
		reqs := m.ctrl.Requests()
		if m.sidebarCursor >= 0 && m.sidebarCursor < len(reqs) {
			return reqs[m.sidebarCursor].ID
		}
	}
	return m.ctrl.ActiveID()
}

func (m *Model) cycleFocus(delta int) {
	idx := 0
	for i, f := range focusOrder {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(focusOrder)) % len(focusOrder)
	m.focus = focusOrder[idx]
	m.applyFocus()
}

func (m *Model) cycleTab(delta int) {
	idx := (int(m.tab) + delta + len(editorTabs)) % len(editorTabs)
	m.tab = editorTabs[idx]
	m.focus = focusEditor
	m.rowCursor = 0
	m.rowOffset = 0
	m.clampRowCursor()
	m.applyFocus()
}

func (m *Model) updateSidebar(msg tea.KeyMsg) tea.Cmd {
	reqs := m.ctrl.Requests()
	if len(reqs) == 0 {
		return nil
	}
	next := m.sidebarCursor
	switch msg.String() {
	case "up", "k":
		next--
	case "down", "j":
		next++
	case "home", "g":
		next = 0
	case "end", "G":
		next = len(reqs) - 1
	case "enter":
	default:
		return nil
	}
	if next < 0 || next >= len(reqs) {
		return nil
	}
	m.sidebarCursor = next
	return m.dispatch(app.Switch{ID: reqs[next].ID})
}

func (m *Model) updateURL(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return m.dispatch(app.Send{})
	}
	before := m.urlInput.Value()
	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	if after := m.urlInput.Value(); after != before {
		m.dispatch(app.EditURL{URL: after})
	}
	return cmd
}

func (m *Model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.tab {
	case tabBody:
		before := m.body.Value()
		m.body, cmd = m.body.Update(msg)
		if after := m.body.Value(); after != before {
			m.dispatch(app.EditBody{Content: after})
		}
		return cmd
	case tabCurl:
		before := m.curl.Value()
		m.curl, cmd = m.curl.Update(msg)
		if after := m.curl.Value(); after != before {
			m.dispatch(app.EditCurl{Text: after})
		}
		return cmd
	}

	list := m.activeList()
	switch msg.String() {
	case "up", "k":
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case "down", "j":
		if list != nil && m.rowCursor < list.Len()-1 {
			m.rowCursor++
		}
	case "left", "h":
		m.colCursor = kv.FieldKey
	case "right", "l":
		m.colCursor = kv.FieldValue
	case "enter", "e":
		return m.startCellEdit()
	}
	return nil
}

func (m *Model) startCellEdit() tea.Cmd {
	list := m.activeList()
	if list == nil {
		return nil
	}
	if list.Len() == 0 {
		table, _ := m.tab.table()
		m.dispatch(app.AddRow{Table: table})
		m.rowCursor = 0
	}
	row, ok := list.Row(m.rowCursor)
	if !ok {
		return nil
	}
	value := row.Key
	if m.colCursor == kv.FieldValue {
		value = row.Value
	}
	m.editingCell = true
	m.cellInput.SetValue(value)
	m.cellInput.CursorEnd()
	return m.cellInput.Focus()
}

func (m *Model) updateCell(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		m.editingCell = false
		m.cellInput.Blur()
		return nil
	case "tab":
		if m.colCursor == kv.FieldKey {
			m.colCursor = kv.FieldValue
			m.editingCell = false
			return m.startCellEdit()
		}
		m.editingCell = false
		m.cellInput.Blur()
		return nil
	}

	before := m.cellInput.Value()
	var cmd tea.Cmd
	m.cellInput, cmd = m.cellInput.Update(msg)
	if after := m.cellInput.Value(); after != before {
		if table, ok := m.tab.table(); ok {
			m.dispatch(app.EditRow{Table: table, Index: m.rowCursor, Field: m.colCursor, Value: after})
		}
	}
	return cmd
}

func nextMethod(current string) string {
	for i, method := range request.Methods {
		if method == current {
			return request.Methods[(i+1)%len(request.Methods)]
		}
	}
	return request.Methods[0]
}

func nextBodyType(current request.BodyType) request.BodyType {
	for i, bt := range request.BodyTypes {
		if bt == current {
			return request.BodyTypes[(i+1)%len(request.BodyTypes)]
		}
	}
	return request.BodyTypes[0]
}
