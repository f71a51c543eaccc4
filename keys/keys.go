package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyEnter

	KeyBack  // Back from a source list to the category list.
	KeyClose // Close the picker, or quit when it is closed.
	KeySubmit
	KeyCopy
	KeyHelp
	KeyQuit
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
// Letters are absent on purpose: every printable key belongs to the editor.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":        KeyUp,
	"ctrl+p":    KeyUp,
	"down":      KeyDown,
	"ctrl+n":    KeyDown,
	"enter":     KeyEnter,
	"shift+tab": KeyBack,
	"esc":       KeyClose,
	"ctrl+s":    KeySubmit,
	"ctrl+y":    KeyCopy,
	"f1":        KeyHelp,
	"ctrl+c":    KeyQuit,
}

// GlobalkeyBindings is a global, immutable map of KeyName tot keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑/^p", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓/^n", "down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "select"),
	),
	KeyBack: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "back"),
	),
	KeyClose: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	KeySubmit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("^s", "submit"),
	),
	KeyCopy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("^y", "copy"),
	),
	KeyHelp: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "help"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("^c", "quit"),
	),
}

// Lookup resolves a key string such as "ctrl+n" to its name.
func Lookup(s string) (KeyName, bool) {
	name, ok := GlobalKeyStringsMap[s]
	return name, ok
}
