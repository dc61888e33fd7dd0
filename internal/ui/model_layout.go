package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unkn0wn-root/restpad/internal/ui/scroll"
)

const (
	minSidebarWidth = 18
	urlPaneHeight   = 3
	statusBarHeight = 1
	minDrawerRows   = 2
	minPaneHeight   = 4
)

// paneFrame is the border cost of a bordered pane on each axis.
const paneFrame = 2

type layout struct {
	sidebarWidth   int
	mainWidth      int
	mainHeight     int
	editorHeight   int
	responseHeight int
	drawerHeight   int
}

func (m *Model) computeLayout() layout {
	var l layout
	if m.width <= 0 || m.height <= 0 {
		return l
	}

	if m.showDrawer {
		rows := m.ctrl.PanelSize() / panelStep
		if maxRows := m.height/2 - paneFrame; rows > maxRows {
			rows = maxRows
		}
		if rows < minDrawerRows {
			rows = minDrawerRows
		}
		l.drawerHeight = rows + paneFrame
	}

	l.mainHeight = m.height - statusBarHeight - l.drawerHeight
	if l.mainHeight < 0 {
		l.mainHeight = 0
	}

	l.sidebarWidth = int(float64(m.width) * m.cfg.Layout.SidebarWidth)
	if l.sidebarWidth < minSidebarWidth {
		l.sidebarWidth = minSidebarWidth
	}
	if l.sidebarWidth > m.width/2 {
		l.sidebarWidth = m.width / 2
	}
	l.mainWidth = m.width - l.sidebarWidth

	rest := l.mainHeight - urlPaneHeight
	if rest < 0 {
		rest = 0
	}
	l.editorHeight = int(float64(rest) * m.cfg.Layout.EditorSplit)
	if l.editorHeight < minPaneHeight && rest >= minPaneHeight*2 {
		l.editorHeight = minPaneHeight
	}
	l.responseHeight = rest - l.editorHeight
	return l
}

func (m *Model) applyLayout() {
	l := m.computeLayout()
	inner := innerSize(l.mainWidth)

	m.urlInput.Width = inner - 10
	m.cellInput.Width = inner/2 - 2

	// tab bar plus the border
	editorRows := innerSize(l.editorHeight) - 2
	m.body.SetWidth(inner)
	m.body.SetHeight(maxInt(editorRows, 1))
	m.curl.SetWidth(inner)
	m.curl.SetHeight(maxInt(editorRows, 1))

	// status line
	m.response.Width = inner
	m.response.Height = maxInt(innerSize(l.responseHeight)-1, 0)

	m.drawer.Width = innerSize(m.width)
	m.drawer.Height = innerSize(l.drawerHeight)

	m.refreshResponse()
}

func innerSize(outer int) int {
	if outer <= paneFrame {
		return 0
	}
	return outer - paneFrame
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (m *Model) pane(style lipgloss.Style, focused bool, width, height int) lipgloss.Style {
	s := style.Width(innerSize(width)).Height(innerSize(height))
	if focused {
		s = s.BorderForeground(m.theme.FocusBorder)
	}
	return s
}

// sidebarRows is the list height below the pane title.
func sidebarRows(l layout) int {
	return maxInt(innerSize(l.mainHeight)-1, 0)
}

// tableRows is the row area below the tab bar and its spacer.
func tableRows(l layout) int {
	return maxInt(innerSize(l.editorHeight)-2, 0)
}

// syncOffsets scrolls the sidebar and the row table to keep their cursors visible.
func (m *Model) syncOffsets() {
	l := m.computeLayout()
	m.sidebarOffset = scroll.Align(m.sidebarCursor, m.sidebarOffset, sidebarRows(l), len(m.ctrl.Requests()))
	if list := m.activeList(); list != nil {
		m.rowOffset = scroll.Align(m.rowCursor, m.rowOffset, tableRows(l), list.Len())
		return
	}
	m.rowOffset = 0
}
