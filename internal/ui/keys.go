package ui

// Action is what a key does outside the editor.
type Action string

const (
	ActionNone     Action = ""
	ActionUp       Action = "up"
	ActionDown     Action = "down"
	ActionPageUp   Action = "page_up"
	ActionPageDown Action = "page_down"
	ActionTop      Action = "top"
	ActionBottom   Action = "bottom"
	ActionSwitch   Action = "switch"
	ActionEdit     Action = "edit"
	ActionQuit     Action = "quit"
)

// KeyBindings maps key names, as reported by tea.KeyMsg.String, to actions.
var KeyBindings = map[string]Action{
	"up":     ActionUp,
	"k":      ActionUp,
	"down":   ActionDown,
	"j":      ActionDown,
	"pgup":   ActionPageUp,
	"pgdown": ActionPageDown,
	"g":      ActionTop,
	"home":   ActionTop,
	"G":      ActionBottom,
	"end":    ActionBottom,
	"tab":    ActionSwitch,
	"e":      ActionEdit,
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
}

// ActionFor returns the action bound to key.
func ActionFor(key string) Action {
	return KeyBindings[key]
}

// HelpLine is the key summary shown in the status bar.
const HelpLine = "↑/k ↓/j move • g/G top/bottom • tab switch pane • e edit • q quit"

// EditorHelpLine is shown while the editor is open.
const EditorHelpLine = "editing: every change re-renders • esc close editor • ctrl+c quit"
