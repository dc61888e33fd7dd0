package bindings

// ActionID uniquely identifies a shortcut action.
type ActionID string

const (
	ActionQuit         ActionID = "quit"
	ActionSave         ActionID = "save"
	ActionSend         ActionID = "send"
	ActionNewRequest   ActionID = "new_request"
	ActionDelete       ActionID = "delete_request"
	ActionToggleTheme  ActionID = "toggle_theme"
	ActionFocusNext    ActionID = "focus_next"
	ActionFocusPrev    ActionID = "focus_prev"
	ActionNextTab      ActionID = "next_tab"
	ActionPrevTab      ActionID = "prev_tab"
	ActionAddRow       ActionID = "add_row"
	ActionDeleteRow    ActionID = "delete_row"
	ActionPasteCurl    ActionID = "paste_curl"
	ActionCopyResponse ActionID = "copy_response"
	ActionCycle        ActionID = "cycle"
	ActionToggleDrawer ActionID = "toggle_drawer"
	ActionGrowDrawer   ActionID = "grow_drawer"
	ActionShrinkDrawer ActionID = "shrink_drawer"
)

type definition struct {
	id       ActionID
	defaults []string
}

var definitions = []definition{
	{id: ActionQuit, defaults: []string{"ctrl+c"}},
	{id: ActionSave, defaults: []string{"ctrl+s"}},
	{id: ActionSend, defaults: []string{"ctrl+r"}},
	{id: ActionNewRequest, defaults: []string{"ctrl+n"}},
	{id: ActionDelete, defaults: []string{"ctrl+x"}},
	{id: ActionToggleTheme, defaults: []string{"ctrl+t"}},
	{id: ActionFocusNext, defaults: []string{"tab"}},
	{id: ActionFocusPrev, defaults: []string{"shift+tab"}},
	{id: ActionNextTab, defaults: []string{"ctrl+right"}},
	{id: ActionPrevTab, defaults: []string{"ctrl+left"}},
	{id: ActionAddRow, defaults: []string{"ctrl+a"}},
	{id: ActionDeleteRow, defaults: []string{"ctrl+k"}},
	{id: ActionPasteCurl, defaults: []string{"ctrl+p"}},
	{id: ActionCopyResponse, defaults: []string{"ctrl+y"}},
	{id: ActionCycle, defaults: []string{"ctrl+o"}},
	{id: ActionToggleDrawer, defaults: []string{"ctrl+d"}},
	{id: ActionGrowDrawer, defaults: []string{"ctrl+up", "+"}},
	{id: ActionShrinkDrawer, defaults: []string{"ctrl+down", "-"}},
}

var definitionLookup = func() map[ActionID]definition {
	out := make(map[ActionID]definition, len(definitions))
	for _, def := range definitions {
		out[def.id] = def
	}
	return out
}()
