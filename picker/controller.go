// Package picker is the suggestion controller behind the mention dropdown.
//
// A Controller is owned by a Bubble Tea update loop. Listings run as commands
// and come back as messages; every fetch carries a generation number and only
// the result of the most recently started fetch is applied, whatever order the
// results arrive in.
package picker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"mention-picker/keys"
	"mention-picker/log"
	"mention-picker/mention"
	"mention-picker/suggest"
	"mention-picker/ui/debounce"
	"mention-picker/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	DefaultQueryDelay   = 150 * time.Millisecond
	DefaultLoadingDelay = 100 * time.Millisecond
)

var ErrNoSources = errors.New("picker needs a file or symbol source")

// Options tunes a Controller. Zero delays take the defaults; negative delays
// disable debouncing.
type Options struct {
	// Query is the text typed after the trigger when the picker opens.
	Query        string
	QueryDelay   time.Duration
	LoadingDelay time.Duration
}

// MentionSelectedMsg is emitted when a file, symbol or command is chosen.
type MentionSelectedMsg struct {
	Attributes mention.Attributes
}

type fetchResultMsg struct {
	owner int64
	gen   uint64
	items []suggest.Item
	err   error
}

var controllerIDs atomic.Int64

// Controller tracks the query, mode, items and selection of one open picker.
type Controller struct {
	id      int64
	sources Sources
	count   int

	mode  Mode
	items []suggest.Item
	index int

	query     string
	debounced *debounce.Value[string]
	// target is the query of the latest fetch.
	target    string
	firstShow bool

	loading      bool
	loadingShown *debounce.Value[bool]

	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	closed  bool
	lastErr error
}

// New returns a controller in its loading state. Call Init to start the first
// fetch.
func New(sources Sources, opts Options) (*Controller, error) {
	count := sources.count()
	if count == 0 {
		return nil, ErrNoSources
	}
	queryDelay := opts.QueryDelay
	if queryDelay == 0 {
		queryDelay = DefaultQueryDelay
	}
	loadingDelay := opts.LoadingDelay
	if loadingDelay == 0 {
		loadingDelay = DefaultLoadingDelay
	}

	id := controllerIDs.Add(1)
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:           id,
		sources:      sources,
		count:        count,
		mode:         ModeCategory,
		items:        []suggest.Item{},
		query:        opts.Query,
		debounced:    debounce.NewValue(int(id*2), queryDelay, opts.Query),
		firstShow:    true,
		loading:      true,
		loadingShown: debounce.NewValue(int(id*2+1), loadingDelay, false),
		ctx:          ctx,
		cancel:       cancel,
	}
	if count == 1 {
		c.mode = sources.soleMode()
	}
	return c, nil
}

// NewForWorkspace wires the enabled listings of w as sources.
func NewForWorkspace(w *workspace.Workspace, files, symbols, changes bool, opts Options) (*Controller, error) {
	var sources Sources
	if files {
		sources.Files = w
	}
	if symbols {
		sources.Symbols = w
	}
	if changes && w.HasGit() {
		sources.Changes = w
	}
	return New(sources, opts)
}

// Init starts the first fetch.
func (c *Controller) Init() tea.Cmd {
	return c.fetch()
}

// Update applies fetch results and debounce ticks. Messages for other
// controllers, stale results and anything after Close are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.closed {
		return nil
	}
	switch msg := msg.(type) {
	case fetchResultMsg:
		if msg.owner != c.id || msg.gen != c.gen {
			return nil
		}
		hide := c.setIdle()
		if msg.err != nil {
			c.lastErr = msg.err
			log.WarningLog.Printf("mention lookup for %q failed: %v", c.target, msg.err)
			return hide
		}
		c.lastErr = nil
		c.items = msg.items
		c.index = 0
		c.firstShow = false
		return hide
	case debounce.SettledMsg:
		if c.debounced.Owns(msg) {
			c.debounced.Settle(msg)
			return c.refetchSettled()
		}
		if c.loadingShown.Owns(msg) {
			c.loadingShown.Settle(msg)
		}
	}
	return nil
}

// SetQuery records the text typed after the trigger. Until the first list
// arrives every change fetches at once; afterwards fetches wait for the query
// to settle.
func (c *Controller) SetQuery(query string) tea.Cmd {
	if c.closed || query == c.query {
		return nil
	}
	c.query = query
	tick := c.debounced.Set(query)
	if c.firstShow {
		return tea.Batch(tick, c.fetch())
	}
	if tick == nil {
		return c.refetchSettled()
	}
	return tick
}

func (c *Controller) refetchSettled() tea.Cmd {
	if c.firstShow || c.debounced.Get() == c.target {
		return nil
	}
	return c.fetch()
}

// fetch supersedes any fetch in flight and starts a new one for the current
// mode and effective query.
func (c *Controller) fetch() tea.Cmd {
	c.gen++
	gen := c.gen

	query := c.debounced.Get()
	if c.firstShow {
		query = c.query
	}
	c.target = query
	view := SelectView(c.mode, query, c.count)

	ctx, sources, owner := c.ctx, c.sources, c.id
	load := func() tea.Msg {
		items, err := sources.load(ctx, view, query)
		return fetchResultMsg{owner: owner, gen: gen, items: items, err: err}
	}

	c.loading = true
	return tea.Batch(load, c.loadingShown.Set(true))
}

// setIdle ends loading. The indicator follows after the loading delay, so a
// fetch that quickly follows another does not make it flicker.
func (c *Controller) setIdle() tea.Cmd {
	c.loading = false
	return c.loadingShown.Set(false)
}

// HandleKey implements the dropdown's keyboard contract. It reports whether
// the key was consumed; keys are never consumed while loading.
func (c *Controller) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if c.closed || c.loading {
		return false, nil
	}
	name, ok := keys.Lookup(msg.String())
	if !ok {
		return false, nil
	}
	switch name {
	case keys.KeyUp:
		if c.index > 0 {
			c.index--
		}
		return true, nil
	case keys.KeyDown:
		if c.index < len(c.items)-1 {
			c.index++
		}
		return true, nil
	case keys.KeyEnter:
		item, ok := c.Selected()
		cmd := c.Select(c.index)
		if ok && item.IsCategory() {
			c.index = 0
		}
		return true, cmd
	}
	return false, nil
}

// Select confirms the item at i. A root category switches modes; any other
// item produces a MentionSelectedMsg.
func (c *Controller) Select(i int) tea.Cmd {
	if c.closed || i < 0 || i >= len(c.items) {
		return nil
	}
	item := c.items[i]
	if item.IsCategory() {
		if c.count < 2 {
			return nil
		}
		c.mode = item.Target
		c.index = 0
		return c.fetch()
	}

	attrs, ok := attributesFor(item)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return MentionSelectedMsg{Attributes: attrs}
	}
}

// SetSelectedIndex moves the selection to i, as a pointer hover does. Indexes
// outside the list are ignored.
func (c *Controller) SetSelectedIndex(i int) {
	if i >= 0 && i < len(c.items) {
		c.index = i
	}
}

// SelectIndex moves the selection to i and confirms it, as a click does.
func (c *Controller) SelectIndex(i int) tea.Cmd {
	if c.closed || c.loading || i < 0 || i >= len(c.items) {
		return nil
	}
	c.index = i
	return c.Select(i)
}

// CanGoBack reports whether Back would return to the category list.
func (c *Controller) CanGoBack() bool {
	return !c.closed && c.count > 1 && c.mode != ModeCategory
}

// Back returns to the category list.
func (c *Controller) Back() tea.Cmd {
	if !c.CanGoBack() {
		return nil
	}
	c.mode = ModeCategory
	c.index = 0
	return c.fetch()
}

// Close tears the controller down. Results still in flight are dropped and
// the listings they came from see a cancelled context.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	c.loadingShown.Reset(false)
	c.cancel()
}

func (c *Controller) Items() []suggest.Item { return c.items }
func (c *Controller) Index() int            { return c.index }
func (c *Controller) Mode() Mode            { return c.mode }
func (c *Controller) Query() string         { return c.query }
func (c *Controller) Loading() bool         { return c.loading }
func (c *Controller) Closed() bool          { return c.closed }

// LastError is the error of the latest failed fetch, cleared by the next
// successful one.
func (c *Controller) LastError() error { return c.lastErr }

// LoadingVisible reports whether the spinner should show. It follows Loading
// after the loading delay, both when a fetch starts and when it ends.
func (c *Controller) LoadingVisible() bool {
	return c.loadingShown.Get()
}

// SourceCount is the number of file and symbol sources.
func (c *Controller) SourceCount() int { return c.count }

// Selected returns the highlighted item.
func (c *Controller) Selected() (suggest.Item, bool) {
	if c.index < 0 || c.index >= len(c.items) {
		return suggest.Item{}, false
	}
	return c.items[c.index], true
}
