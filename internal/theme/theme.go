package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type MethodColors struct {
	GET     lipgloss.Color
	POST    lipgloss.Color
	PUT     lipgloss.Color
	PATCH   lipgloss.Color
	DELETE  lipgloss.Color
	HEAD    lipgloss.Color
	OPTIONS lipgloss.Color
	Default lipgloss.Color
}

func (m MethodColors) For(method string) lipgloss.Color {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case "GET":
		return m.GET
	case "POST":
		return m.POST
	case "PUT":
		return m.PUT
	case "PATCH":
		return m.PATCH
	case "DELETE":
		return m.DELETE
	case "HEAD":
		return m.HEAD
	case "OPTIONS":
		return m.OPTIONS
	}
	return m.Default
}

type Theme struct {
	Mode           Mode
	AppFrame       lipgloss.Style
	SidebarBorder  lipgloss.Style
	EditorBorder   lipgloss.Style
	ResponseBorder lipgloss.Style
	DrawerBorder   lipgloss.Style
	FocusBorder    lipgloss.Color
	PaneTitle      lipgloss.Style
	ListItem       lipgloss.Style
	ListItemActive lipgloss.Style
	MethodBadge    lipgloss.Style
	Tabs           lipgloss.Style
	TabActive      lipgloss.Style
	TabInactive    lipgloss.Style
	RowKey         lipgloss.Style
	RowValue       lipgloss.Style
	RowCursor      lipgloss.Style
	Placeholder    lipgloss.Style
	StatusBar      lipgloss.Style
	StatusBarKey   lipgloss.Style
	Success        lipgloss.Style
	Error          lipgloss.Style
	Muted          lipgloss.Style
	DebugText      lipgloss.Style
	MethodColors   MethodColors
	// ChromaStyle names the chroma style used for body highlighting.
	ChromaStyle string
}

// MethodColor is the badge colour for method under this theme.
func (t Theme) MethodColor(method string) lipgloss.Color {
	return t.MethodColors.For(method)
}

// For returns the palette for mode, falling back to dark.
func For(mode Mode) Theme {
	if mode == Light {
		return LightTheme()
	}
	return DarkTheme()
}

func DarkTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#dcd7ff"))

	return Theme{
		Mode: Dark,
		AppFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#403B59")),
		SidebarBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#A78BFA")),
		EditorBorder: base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(accent),
		ResponseBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FB3B3")),
		DrawerBorder: base.BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#3A3547")),
		FocusBorder: lipgloss.Color("#FFD46A"),
		PaneTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6A1BB")).
			Bold(true),
		ListItem: lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1FF")),
		ListItemActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0F111A")).
			Background(lipgloss.Color("#FFD46A")).
			Bold(true),
		MethodBadge: lipgloss.NewStyle().Bold(true).Width(7),
		Tabs:        lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FDFBFF")).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5E5A72")).
			Padding(0, 1),
		RowKey:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD46A")),
		RowValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("#EAEAEA")),
		RowCursor:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color("#5E5A72")).Italic(true),
		StatusBar:    lipgloss.NewStyle().Foreground(lipgloss.Color("#A6A1BB")).Padding(0, 1),
		StatusBarKey: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8B39")).Bold(true),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6EF17E")).Bold(true),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6E6E")).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6A86")),
		DebugText:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C7C4E0")),
		MethodColors: MethodColors{
			GET:     lipgloss.Color("#34d399"),
			POST:    lipgloss.Color("#60a5fa"),
			PUT:     lipgloss.Color("#f59e0b"),
			PATCH:   lipgloss.Color("#14b8a6"),
			DELETE:  lipgloss.Color("#f87171"),
			HEAD:    lipgloss.Color("#a1a1aa"),
			OPTIONS: lipgloss.Color("#c084fc"),
			Default: lipgloss.Color("#9ca3af"),
		},
		ChromaStyle: "monokai",
	}
}

func LightTheme() Theme {
	accent := lipgloss.Color("#5B3CC4")
	base := lipgloss.NewStyle().Foreground(lipgloss.Color("#1F1B2E"))

	return Theme{
		Mode: Light,
		AppFrame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#C9C4DD")),
		SidebarBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8B6FE0")),
		EditorBorder: base.BorderStyle(lipgloss.RoundedBorder()).BorderForeground(accent),
		ResponseBorder: base.BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2F8585")),
		DrawerBorder: base.BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#D6D2E6")),
		FocusBorder: lipgloss.Color("#D97706"),
		PaneTitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4B4663")).
			Bold(true),
		ListItem: lipgloss.NewStyle().Foreground(lipgloss.Color("#1F1B2E")),
		ListItemActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Bold(true),
		MethodBadge: lipgloss.NewStyle().Bold(true).Width(7),
		Tabs:        lipgloss.NewStyle().Foreground(lipgloss.Color("#4B4663")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8A85A0")).
			Padding(0, 1),
		RowKey:       lipgloss.NewStyle().Foreground(lipgloss.Color("#B45309")),
		RowValue:     lipgloss.NewStyle().Foreground(lipgloss.Color("#1F1B2E")),
		RowCursor:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color("#A19DB5")).Italic(true),
		StatusBar:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4B4663")).Padding(0, 1),
		StatusBarKey: lipgloss.NewStyle().Foreground(lipgloss.Color("#C2410C")).Bold(true),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("#15803D")).Bold(true),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#8A85A0")),
		DebugText:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3F3A56")),
		MethodColors: MethodColors{
			GET:     lipgloss.Color("#059669"),
			POST:    lipgloss.Color("#2563eb"),
			PUT:     lipgloss.Color("#d97706"),
			PATCH:   lipgloss.Color("#0d9488"),
			DELETE:  lipgloss.Color("#dc2626"),
			HEAD:    lipgloss.Color("#52525b"),
			OPTIONS: lipgloss.Color("#9333ea"),
			Default: lipgloss.Color("#6b7280"),
		},
		ChromaStyle: "github",
	}
}
