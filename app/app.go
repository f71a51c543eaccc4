package app

import (
	"context"
	"fmt"
	"time"

	"mention-picker/config"
	"mention-picker/keys"
	"mention-picker/log"
	"mention-picker/picker"
	"mention-picker/ui"
	"mention-picker/ui/overlay"
	"mention-picker/workspace"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultEditorHeight = 6
	statusTimeout       = 3 * time.Second
)

// Run is the main entrypoint into the application. It returns the prompt with
// its mentions rendered as placeholders, or "" when the user quit without
// submitting.
func Run(ctx context.Context, cfg *config.Config, w *workspace.Workspace) (string, error) {
	p := tea.NewProgram(
		newHome(ctx, cfg, w),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // Hover and click in the dropdown
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if h, ok := final.(*home); ok && h.submitted {
		return h.output, nil
	}
	return "", nil
}

type state int

const (
	stateEditing state = iota
	// statePicking is the state when the mention dropdown is open.
	statePicking
	// stateHelp is the state when the help screen is displayed.
	stateHelp
)

type home struct {
	ctx context.Context

	appConfig *config.Config
	workspace *workspace.Workspace

	state state

	editor *ui.Editor
	// mentions is the open dropdown, nil while no mention is being typed.
	mentions *overlay.MentionListOverlay
	// dismissed is set when the dropdown was closed with esc. It stays closed
	// until the open mention is finished.
	dismissed bool

	status    string
	statusErr bool

	width        int
	height       int
	editorHeight int

	submitted bool
	output    string
}

func newHome(ctx context.Context, cfg *config.Config, w *workspace.Workspace) *home {
	return &home{
		ctx:          ctx,
		appConfig:    cfg,
		workspace:    w,
		state:        stateEditing,
		editor:       ui.NewEditor(cfg.TriggerRune()),
		editorHeight: defaultEditorHeight,
	}
}

func (m *home) Init() tea.Cmd {
	return m.editor.Init()
}

// updateHandleWindowSizeEvent sets the sizes of the components.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height

	m.editorHeight = defaultEditorHeight
	if third := msg.Height / 3; third > m.editorHeight {
		m.editorHeight = third
	}
	m.editor.SetSize(msg.Width, m.editorHeight)
	if m.mentions != nil {
		m.mentions.SetWidth(m.dropdownWidth())
	}
}

func (m *home) dropdownWidth() int {
	if m.width == 0 || m.width > 72 {
		return 72
	}
	return m.width
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)
	case tea.MouseMsg:
		if m.mentions == nil || m.state != statePicking {
			return m, nil
		}
		m.mentions.SetTop(m.dropdownTop())
		return m, m.mentions.Update(msg)
	case picker.MentionSelectedMsg:
		if !m.editor.Insert(msg.Attributes) {
			log.WarningLog.Printf("mention %s selected with no open trigger", msg.Attributes.ID)
		}
		m.closePicker()
		m.dismissed = false
		return m, nil
	case hideStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil
	}

	var cmds []tea.Cmd
	if m.mentions != nil {
		cmds = append(cmds, m.mentions.Update(msg))
	}
	cmds = append(cmds, m.editor.Update(msg))
	return m, tea.Batch(cmds...)
}

func (m *home) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if m.state == stateHelp {
		m.state = stateEditing
		if m.mentions != nil {
			m.state = statePicking
		}
		return nil
	}

	name, ok := keys.Lookup(msg.String())
	if ok {
		switch name {
		case keys.KeyQuit:
			m.closePicker()
			return tea.Quit
		case keys.KeySubmit:
			m.closePicker()
			m.output = m.editor.PlainText()
			m.submitted = true
			return tea.Quit
		case keys.KeyCopy:
			return m.copyPrompt()
		case keys.KeyHelp:
			m.state = stateHelp
			return nil
		}
	}

	if m.mentions != nil {
		if ok {
			switch name {
			case keys.KeyClose:
				m.closePicker()
				m.dismissed = true
				return nil
			case keys.KeyBack:
				return m.mentions.Back()
			case keys.KeyUp, keys.KeyDown, keys.KeyEnter:
				// Swallowed while loading so they never reach the editor.
				_, cmd := m.mentions.HandleKey(msg)
				return cmd
			}
		}
	} else if ok && name == keys.KeyClose {
		return tea.Quit
	}

	cmd := m.editor.Update(msg)
	return tea.Batch(cmd, m.syncPicker())
}

// syncPicker opens, updates or closes the dropdown to follow the mention
// being typed at the end of the editor.
func (m *home) syncPicker() tea.Cmd {
	query, ok := m.editor.ActiveTrigger()
	if !ok {
		m.dismissed = false
		m.closePicker()
		return nil
	}
	if m.dismissed {
		return nil
	}
	if m.mentions == nil {
		return m.openPicker(query)
	}
	return m.mentions.SetQuery(query)
}

func (m *home) openPicker(query string) tea.Cmd {
	cfg := m.appConfig
	c, err := picker.NewForWorkspace(m.workspace, cfg.Sources.Files, cfg.Sources.Symbols, cfg.Sources.Changes, picker.Options{
		Query:        query,
		QueryDelay:   cfg.QueryDelay(),
		LoadingDelay: cfg.LoadingDelay(),
	})
	if err != nil {
		m.dismissed = true
		return m.handleError(fmt.Errorf("cannot open mention picker: %w", err))
	}

	m.mentions = overlay.NewMentionListOverlay(c, cfg.VisibleRows)
	m.mentions.SetWidth(m.dropdownWidth())
	m.mentions.SetTop(m.dropdownTop())
	m.state = statePicking
	return m.mentions.Init()
}

func (m *home) closePicker() {
	if m.mentions != nil {
		m.mentions.Picker().Close()
		m.mentions = nil
	}
	if m.state == statePicking {
		m.state = stateEditing
	}
}

func (m *home) copyPrompt() tea.Cmd {
	text := m.editor.PlainText()
	if err := clipboard.WriteAll(text); err != nil {
		return m.handleError(fmt.Errorf("failed to copy prompt: %w", err))
	}
	n := len(m.editor.Mentions())
	return m.setStatus(fmt.Sprintf("Copied prompt with %d mention(s)", n))
}

// dropdownTop is the screen row of the dropdown: below the title and the
// editor.
func (m *home) dropdownTop() int {
	return 1 + m.editorHeight
}

// hideStatusMsg implements tea.Msg and clears the status line.
type hideStatusMsg struct{}

func (m *home) setStatus(text string) tea.Cmd {
	m.status = text
	m.statusErr = false
	return m.hideStatusLater()
}

// handleError logs err and shows it on the status line for a few seconds.
func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.status = err.Error()
	m.statusErr = true
	return m.hideStatusLater()
}

func (m *home) hideStatusLater() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(statusTimeout):
		}
		return hideStatusMsg{}
	}
}

func (m *home) View() string {
	if m.state == stateHelp {
		return lipgloss.NewStyle().Padding(1, 2).Render(helpContent(m.editor.Trigger()))
	}

	title := titleStyle.Render("mention-picker") + " " + statusStyle.Render(m.workspace.Root())
	parts := []string{title, m.editor.View()}
	if m.mentions != nil {
		parts = append(parts, m.mentions.View())
	}

	switch {
	case m.status != "" && m.statusErr:
		parts = append(parts, errorStyle.Render(m.status))
	case m.status != "":
		parts = append(parts, statusStyle.Render(m.status))
	default:
		parts = append(parts, shortHelp(keys.KeySubmit, keys.KeyCopy, keys.KeyHelp, keys.KeyQuit))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
