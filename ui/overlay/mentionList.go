package overlay

import (
	"strings"

	"mention-picker/picker"
	"mention-picker/suggest"
	"mention-picker/workspace"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	DefaultVisibleRows = 8
	defaultWidth       = 60
	ellipsis           = "…"
)

const (
	emptyQueryMessage = "Type to search..."
	noResultsMessage  = "No results found"
)

// MentionListOverlay renders the mention dropdown of one picker and forwards
// keyboard and pointer input to it.
type MentionListOverlay struct {
	picker  *picker.Controller
	spinner spinner.Model
	// ticking is set while a spinner tick is scheduled.
	ticking bool

	width       int
	visibleRows int
	// offset is the index of the first visible item.
	offset int
	// top is the screen row of the overlay's first line, for mouse hits.
	top int

	boxStyle      lipgloss.Style
	rowStyle      lipgloss.Style
	selectedStyle lipgloss.Style
	iconStyle     lipgloss.Style
	descStyle     lipgloss.Style
	headerStyle   lipgloss.Style
	loadingStyle  lipgloss.Style
	emptyStyle    lipgloss.Style
}

// NewMentionListOverlay creates the dropdown for c showing at most
// visibleRows items at a time.
func NewMentionListOverlay(c *picker.Controller, visibleRows int) *MentionListOverlay {
	if visibleRows <= 0 {
		visibleRows = DefaultVisibleRows
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &MentionListOverlay{
		picker:      c,
		spinner:     sp,
		width:       defaultWidth,
		visibleRows: visibleRows,
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87")),
		rowStyle: lipgloss.NewStyle(),
		selectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("#3C3C3C")).
			Foreground(lipgloss.Color("#FFFFFF")),
		iconStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")),
		descStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#AFAFFF")),
		loadingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")),
		emptyStyle: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#808080")),
	}
}

// Picker returns the controller behind the overlay.
func (m *MentionListOverlay) Picker() *picker.Controller {
	return m.picker
}

// SetWidth sets the outer width, border included.
func (m *MentionListOverlay) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	m.width = width
}

// SetTop records the screen row the overlay is drawn at.
func (m *MentionListOverlay) SetTop(y int) {
	m.top = y
}

// Init starts the picker's first fetch and the spinner.
func (m *MentionListOverlay) Init() tea.Cmd {
	cmd := m.picker.Init()
	return tea.Batch(cmd, m.spin())
}

// spin schedules a spinner tick when a fetch is running and none is pending.
func (m *MentionListOverlay) spin() tea.Cmd {
	if m.ticking || !m.busy() {
		return nil
	}
	m.ticking = true
	return m.spinner.Tick
}

// Update handles spinner ticks and the mouse, and passes everything else to
// the picker.
func (m *MentionListOverlay) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy() {
			m.ticking = false
			return nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	default:
		cmd = m.picker.Update(msg)
	}
	m.scrollToSelection()
	return tea.Batch(cmd, m.spin())
}

// busy reports whether the spinner may be on screen now or soon.
func (m *MentionListOverlay) busy() bool {
	return !m.picker.Closed() && (m.picker.Loading() || m.picker.LoadingVisible())
}

// SetQuery forwards the typed query to the picker.
func (m *MentionListOverlay) SetQuery(query string) tea.Cmd {
	cmd := m.picker.SetQuery(query)
	return tea.Batch(cmd, m.spin())
}

// HandleKey gives the key to the picker; see picker.Controller.HandleKey.
func (m *MentionListOverlay) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	handled, cmd := m.picker.HandleKey(msg)
	m.scrollToSelection()
	return handled, tea.Batch(cmd, m.spin())
}

// Back returns the picker to its category list.
func (m *MentionListOverlay) Back() tea.Cmd {
	cmd := m.picker.Back()
	m.scrollToSelection()
	return tea.Batch(cmd, m.spin())
}

func (m *MentionListOverlay) handleMouse(msg tea.MouseMsg) tea.Cmd {
	index, ok := m.ItemAt(msg.Y - m.top)
	if !ok {
		return nil
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.picker.SetSelectedIndex(index)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.picker.SelectIndex(index)
	}
	return nil
}

// scrollToSelection keeps the selected row inside the visible window.
func (m *MentionListOverlay) scrollToSelection() {
	n := len(m.picker.Items())
	index := m.picker.Index()
	if index < m.offset {
		m.offset = index
	}
	if index >= m.offset+m.visibleRows {
		m.offset = index - m.visibleRows + 1
	}
	if maxOffset := n - m.visibleRows; m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// headerLines is the number of lines drawn above the first row, border
// included.
func (m *MentionListOverlay) headerLines() int {
	lines := 1
	if m.picker.LoadingVisible() {
		lines++
	}
	if m.picker.CanGoBack() {
		lines++
	}
	return lines
}

// ItemAt maps a line of the rendered overlay to an item index.
func (m *MentionListOverlay) ItemAt(line int) (int, bool) {
	row := line - m.headerLines()
	if row < 0 || row >= m.visibleRows {
		return 0, false
	}
	index := m.offset + row
	if index >= len(m.picker.Items()) {
		return 0, false
	}
	return index, true
}

// View renders the overlay
func (m *MentionListOverlay) View() string {
	inner := m.width - 2
	var lines []string

	if m.picker.LoadingVisible() {
		lines = append(lines, m.loadingStyle.Render(m.spinner.View()+" Loading..."))
	}
	if m.picker.CanGoBack() {
		lines = append(lines, m.headerStyle.Render(suggest.IconBack+" "+m.picker.Mode().Label()))
	}

	items := m.picker.Items()
	switch {
	case len(items) > 0:
		end := m.offset + m.visibleRows
		if end > len(items) {
			end = len(items)
		}
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.renderRow(items[i], i == m.picker.Index(), inner))
		}
	case m.picker.Loading():
	case m.picker.Query() != "":
		lines = append(lines, m.emptyStyle.Render(noResultsMessage))
	default:
		lines = append(lines, m.emptyStyle.Render(emptyQueryMessage))
	}

	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return m.boxStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

// Height is the number of lines View produces.
func (m *MentionListOverlay) Height() int {
	return lipgloss.Height(m.View())
}

func (m *MentionListOverlay) renderRow(item suggest.Item, selected bool, width int) string {
	icon := item.Icon
	if icon == "" {
		icon = " "
	}

	var trailing string
	switch {
	case item.IsCategory():
		trailing = suggest.IconChevron
	case item.Description != "":
		trailing = item.Description
	case item.Category == suggest.CategoryFile && item.FileItem != nil:
		trailing = workspace.DirectoryDisplay(item.FileItem.Filepath)
	}

	// icon, space, name, two spaces, trailing
	avail := width - runewidth.StringWidth(icon) - 1
	name := item.Name
	if trailing != "" {
		nameWidth := avail * 3 / 5
		if w := runewidth.StringWidth(name); w < nameWidth {
			nameWidth = w
		}
		name = runewidth.Truncate(name, nameWidth, ellipsis)
		descWidth := avail - runewidth.StringWidth(name) - 2
		if descWidth > 0 {
			trailing = truncate.StringWithTail(trailing, uint(descWidth), ellipsis)
		} else {
			trailing = ""
		}
	} else {
		name = runewidth.Truncate(name, avail, ellipsis)
	}

	row := m.iconStyle.Render(icon) + " " + name
	if trailing != "" {
		row += "  " + m.descStyle.Render(trailing)
	}
	if pad := width - ansi.PrintableRuneWidth(row); pad > 0 {
		row += strings.Repeat(" ", pad)
	}

	if selected {
		return m.selectedStyle.Render(row)
	}
	return m.rowStyle.Render(row)
}
