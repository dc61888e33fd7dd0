package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/unkn0wn-root/restpad/internal/app"
	"github.com/unkn0wn-root/restpad/internal/bindings"
	"github.com/unkn0wn-root/restpad/internal/kv"
	"github.com/unkn0wn-root/restpad/internal/render"
	"github.com/unkn0wn-root/restpad/internal/request"
	"github.com/unkn0wn-root/restpad/internal/ui/scroll"
)

const (
	idleResponseHint = "Send a request to see the response"
	ellipsis         = "…"
)

func (m Model) View() string {
	if !m.ready {
		return "Initialising..."
	}
	l := m.computeLayout()

	right := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderURLPane(l),
		m.renderEditorPane(l),
		m.renderResponsePane(l),
	)
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(l), right)

	parts := []string{main}
	if m.showDrawer {
		parts = append(parts, m.renderDrawer(l))
	}
	parts = append(parts, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderSidebar(l layout) string {
	reqs := m.ctrl.Requests()
	active := m.ctrl.ActiveID()
	innerW := innerSize(l.sidebarWidth)
	start, end := scroll.Window(m.sidebarOffset, sidebarRows(l), len(reqs))

	lines := []string{m.theme.PaneTitle.Render(fmt.Sprintf("Requests (%d)", len(reqs)))}
	for i := start; i < end; i++ {
		e := reqs[i]
		badge := m.theme.MethodBadge.
			Foreground(m.theme.MethodColor(e.Method)).
			Render(e.Method)
		nameW := innerW - lipgloss.Width(badge)
		name := ansi.Truncate(e.DisplayName(), maxInt(nameW, 0), ellipsis)
		name = runewidth.FillRight(name, maxInt(nameW, 0))

		style := m.theme.ListItem
		if e.ID == active {
			style = m.theme.ListItemActive
		} else if m.focus == focusSidebar && i == m.sidebarCursor {
			style = m.theme.RowCursor
		}
		lines = append(lines, badge+style.Render(name))
	}

	return m.pane(m.theme.SidebarBorder, m.focus == focusSidebar, l.sidebarWidth, l.mainHeight).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderURLPane(l layout) string {
	f := m.ctrl.Form()
	badge := m.theme.MethodBadge.
		Foreground(m.theme.MethodColor(f.Method)).
		Render(f.Method)
	line := lipgloss.JoinHorizontal(lipgloss.Top, badge, " ", m.urlInput.View())
	return m.pane(m.theme.EditorBorder, m.focus == focusURL, l.mainWidth, urlPaneHeight).
		Render(line)
}

func (m Model) renderEditorPane(l layout) string {
	var content string
	switch m.tab {
	case tabBody:
		content = m.renderBodyTab()
	case tabCurl:
		content = m.curl.View()
	default:
		content = m.renderTable(innerSize(l.mainWidth), tableRows(l))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), "", content)
	return m.pane(m.theme.EditorBorder, m.focus == focusEditor, l.mainWidth, l.editorHeight).
		Render(body)
}

func (m Model) renderTabs() string {
	form := m.ctrl.Form()
	tabs := make([]string, 0, len(editorTabs))
	for _, t := range editorTabs {
		label := t.label()
		switch t {
		case tabParams:
			label = fmt.Sprintf("%s (%d)", label, len(form.Params.Pairs()))
		case tabHeaders:
			label = fmt.Sprintf("%s (%d)", label, len(form.Headers.Pairs()))
		}
		if t == m.tab {
			tabs = append(tabs, m.theme.TabActive.Render(label))
			continue
		}
		tabs = append(tabs, m.theme.TabInactive.Render(label))
	}
	return m.theme.Tabs.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderBodyTab() string {
	form := m.ctrl.Form()
	kind := m.theme.Muted.Render("type: ") + m.theme.RowKey.Render(string(form.BodyType))
	if !request.HasBody(form.Method) {
		kind += m.theme.Muted.Render("  (not sent with " + form.Method + ")")
	}
	return lipgloss.JoinVertical(lipgloss.Left, kind, m.body.View())
}

func (m Model) renderTable(width, height int) string {
	list := m.activeList()
	if list == nil {
		return ""
	}
	rows := list.Rows()
	colW := (width - 2) / 2
	if colW < 1 {
		colW = 1
	}

	start, end := scroll.Window(m.rowOffset, height, len(rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		row := rows[i]
		selected := m.focus == focusEditor && i == m.rowCursor
		marker := "  "
		if selected {
			marker = m.theme.RowCursor.Render("> ")
		}
		key := m.renderCell(row.Key, "key", colW, selected && m.colCursor == kv.FieldKey, m.theme.RowKey)
		value := m.renderCell(row.Value, "value", colW, selected && m.colCursor == kv.FieldValue, m.theme.RowValue)
		lines = append(lines, marker+key+" "+value)
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Placeholder.Render("No rows"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCell(text, placeholder string, width int, active bool, style lipgloss.Style) string {
	if active && m.editingCell {
		return runewidth.FillRight(ansi.Truncate(m.cellInput.View(), width, ""), width)
	}
	if text == "" {
		cell := runewidth.FillRight(ansi.Truncate(placeholder, width, ellipsis), width)
		if active {
			return m.theme.RowCursor.Render(cell)
		}
		return m.theme.Placeholder.Render(cell)
	}
	cell := runewidth.FillRight(ansi.Truncate(text, width, ellipsis), width)
	if active {
		return m.theme.RowCursor.Underline(true).Render(cell)
	}
	return style.Render(cell)
}

func (m Model) renderResponsePane(l layout) string {
	view := m.ctrl.Response()

	var status string
	switch view.State {
	case app.ResponsePending:
		status = m.spinner.View() + " " + m.theme.Muted.Render(view.Status)
	case app.ResponseIdle:
		status = m.theme.Muted.Render(view.Status)
	default:
		style := m.theme.Error
		if view.OK {
			style = m.theme.Success
		}
		status = style.Render(view.Status) + "  " + m.theme.Muted.Render(view.ElapsedLabel())
		if view.Truncated {
			status += m.theme.Muted.Render("  (truncated)")
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, status, m.response.View())
	return m.pane(m.theme.ResponseBorder, m.focus == focusResponse, l.mainWidth, l.responseHeight).
		Render(body)
}

func (m Model) renderDrawer(l layout) string {
	return m.pane(m.theme.DrawerBorder, false, m.width, l.drawerHeight).
		Render(m.drawer.View())
}

func (m Model) renderStatusBar() string {
	var style lipgloss.Style
	switch m.status.level {
	case statusError:
		style = m.theme.Error
	case statusWarn:
		style = m.theme.StatusBarKey
	case statusSuccess:
		style = m.theme.Success
	default:
		style = m.theme.StatusBar
	}
	left := style.Render(m.status.text)

	hints := []string{
		m.hint(bindings.ActionSend, "send"),
		m.hint(bindings.ActionNewRequest, "new"),
		m.hint(bindings.ActionPasteCurl, "paste curl"),
		m.hint(bindings.ActionToggleDrawer, "debug"),
		m.hint(bindings.ActionToggleTheme, string(m.theme.Mode)),
		m.hint(bindings.ActionQuit, "quit"),
	}
	right := m.theme.StatusBar.Render(strings.Join(hints, "  "))
	if m.cfg.Version != "" {
		right += m.theme.Muted.Render(" restpad " + m.cfg.Version)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left+" "+right, maxInt(m.width, 0), ellipsis)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) hint(action bindings.ActionID, label string) string {
	key := m.keys.Label(action)
	if key == "" {
		return label
	}
	return m.theme.StatusBarKey.Render(key) + " " + label
}

// refreshResponse pushes the current response view into the viewports.
func (m *Model) refreshResponse() {
	view := m.ctrl.Response()

	var content string
	switch view.State {
	case app.ResponseIdle:
		content = m.theme.Placeholder.Render(idleResponseHint)
	case app.ResponsePending:
		content = m.theme.Muted.Render("Waiting for response...")
	case app.ResponseFailed:
		content = m.theme.Error.Render(view.Body)
	default:
		content = render.Highlight(view.Body, view.Lexer, m.theme.ChromaStyle)
	}
	m.response.SetContent(content)
	m.response.GotoTop()

	m.drawer.SetContent(m.renderDebug(view))
}

func (m *Model) renderDebug(view app.ResponseView) string {
	colW := m.drawer.Width/2 - 1
	if colW < 10 {
		colW = 10
	}
	column := func(head, text string) string {
		return lipgloss.NewStyle().Width(colW).Render(
			lipgloss.JoinVertical(lipgloss.Left, head, m.theme.DebugText.Render(text)),
		)
	}
	respHead := m.theme.PaneTitle.Render("Response")
	if view.Timing != "" {
		respHead += "  " + m.theme.Muted.Render(view.Timing)
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		column(m.theme.PaneTitle.Render("Request"), view.DebugRequest),
		"  ",
		column(respHead, view.DebugResponse),
	)
}
