package ui

import (
	"strings"
	"unicode"

	"mention-picker/mention"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultTrigger opens the mention picker.
const DefaultTrigger = '@'

// chip is an inserted mention and the text that stands for it in the editor.
type chip struct {
	text  string
	attrs mention.Attributes
}

// Editor is the prompt being written. Mentions are typed at the end of the
// text: a trigger preceded by the start of the text or whitespace, followed by
// the query.
type Editor struct {
	textarea textarea.Model
	trigger  rune
	chips    []chip
}

// NewEditor creates a focused, empty editor.
func NewEditor(trigger rune) *Editor {
	if trigger == 0 {
		trigger = DefaultTrigger
	}
	ta := textarea.New()
	ta.Placeholder = "Write a prompt, type " + string(trigger) + " to mention a file or symbol"
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()

	return &Editor{textarea: ta, trigger: trigger}
}

// Init returns the cursor blink command.
func (e *Editor) Init() tea.Cmd {
	return textarea.Blink
}

func (e *Editor) SetSize(width, height int) {
	e.textarea.SetWidth(width)
	e.textarea.SetHeight(height)
}

func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)
	return cmd
}

func (e *Editor) View() string {
	return e.textarea.View()
}

// Value is the raw editor text, chips shown as their labels.
func (e *Editor) Value() string {
	return e.textarea.Value()
}

// SetValue replaces the text. Chips whose text is gone are dropped on export.
func (e *Editor) SetValue(s string) {
	e.textarea.SetValue(s)
}

// Trigger returns the rune that opens the picker.
func (e *Editor) Trigger() rune {
	return e.trigger
}

// ActiveTrigger reports whether the text ends in an open mention and returns
// the query typed after the trigger.
func (e *Editor) ActiveTrigger() (string, bool) {
	_, query, ok := e.activeTrigger()
	return query, ok
}

func (e *Editor) activeTrigger() (int, string, bool) {
	value := e.Value()
	i := strings.LastIndex(value, string(e.trigger))
	if i < 0 {
		return 0, "", false
	}
	if i > 0 {
		before := []rune(value[:i])
		if !unicode.IsSpace(before[len(before)-1]) {
			return 0, "", false
		}
	}
	query := value[i+len(string(e.trigger)):]
	if strings.IndexFunc(query, unicode.IsSpace) >= 0 {
		return 0, "", false
	}
	return i, query, true
}

// Insert replaces the open mention with a chip for attrs. It reports false
// when no mention is open.
func (e *Editor) Insert(attrs mention.Attributes) bool {
	i, _, ok := e.activeTrigger()
	if !ok {
		return false
	}
	text := string(e.trigger) + attrs.DisplayLabel()
	e.textarea.SetValue(e.Value()[:i] + text + " ")
	e.chips = append(e.chips, chip{text: text, attrs: attrs})
	return true
}

// Mentions returns the attributes of the chips still present in the text, in
// order.
func (e *Editor) Mentions() []mention.Attributes {
	var out []mention.Attributes
	e.walk(func(c chip, start int) {
		out = append(out, c.attrs)
	})
	return out
}

// PlainText is the text with every chip replaced by its placeholder.
func (e *Editor) PlainText() string {
	value := e.Value()
	var b strings.Builder
	pos := 0
	e.walk(func(c chip, start int) {
		b.WriteString(value[pos:start])
		b.WriteString(mention.RenderText(c.attrs))
		pos = start + len(c.text)
	})
	b.WriteString(value[pos:])
	return b.String()
}

// walk visits the surviving chips with their byte offset. Chips are inserted
// left to right, so each is searched for after the previous one.
func (e *Editor) walk(visit func(c chip, start int)) {
	value := e.Value()
	pos := 0
	for _, c := range e.chips {
		j := strings.Index(value[pos:], c.text)
		if j < 0 {
			continue
		}
		start := pos + j
		visit(c, start)
		pos = start + len(c.text)
	}
}

// Reset clears the text and the chips.
func (e *Editor) Reset() {
	e.textarea.Reset()
	e.chips = nil
}
