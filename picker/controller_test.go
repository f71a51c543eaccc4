package picker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mention-picker/mention"
	"mention-picker/suggest"
	"mention-picker/workspace"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var immediate = Options{QueryDelay: -1, LoadingDelay: -1}

func withQuery(opts Options, query string) Options {
	opts.Query = query
	return opts
}

// fakeFiles lists the paths containing query, ignoring case.
func fakeFiles(paths ...string) workspace.FileListerFunc {
	return func(ctx context.Context, query string) ([]workspace.FileEntry, error) {
		var out []workspace.FileEntry
		for _, p := range paths {
			if strings.Contains(strings.ToLower(p), strings.ToLower(query)) {
				out = append(out, workspace.FileEntry{Filepath: p})
			}
		}
		return out, nil
	}
}

func fakeSymbols(entries ...workspace.SymbolEntry) workspace.SymbolListerFunc {
	return func(ctx context.Context, query string) ([]workspace.SymbolEntry, error) {
		return entries, nil
	}
}

func fakeChanges(paths ...string) workspace.ChangeListerFunc {
	return func(ctx context.Context, query string) ([]workspace.ChangeEntry, error) {
		out := make([]workspace.ChangeEntry, 0, len(paths))
		for _, p := range paths {
			out = append(out, workspace.ChangeEntry{Filepath: p, Worktree: "modified"})
		}
		return out, nil
	}
}

// exec runs cmd and returns the leaf messages it produced.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, exec(sub)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func drive(t *testing.T, c *Controller, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seen []tea.Msg
	require.NoError(t, Run(ctx, c, cmd, func(msg tea.Msg) {
		seen = append(seen, msg)
	}))
	return seen
}

func open(t *testing.T, sources Sources, opts Options) *Controller {
	t.Helper()
	c, err := New(sources, opts)
	require.NoError(t, err)
	drive(t, c, c.Init())
	require.False(t, c.Loading())
	return c
}

func names(items []suggest.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func selections(msgs []tea.Msg) []MentionSelectedMsg {
	var out []MentionSelectedMsg
	for _, msg := range msgs {
		if sel, ok := msg.(MentionSelectedMsg); ok {
			out = append(out, sel)
		}
	}
	return out
}

func indexOf(t *testing.T, c *Controller, name string) int {
	t.Helper()
	for i, item := range c.Items() {
		if item.Name == name {
			return i
		}
	}
	t.Fatalf("no item named %q in %v", name, names(c.Items()))
	return -1
}

func TestSelectView(t *testing.T) {
	tests := []struct {
		mode  Mode
		query string
		count int
		want  ViewKind
	}{
		{ModeCategory, "", 2, ViewCategoryRoot},
		{ModeCategory, "  ", 2, ViewCategoryFiltered},
		{ModeCategory, "ctrl", 2, ViewCategoryFiltered},
		{ModeFile, "", 2, ViewFiles},
		{ModeFile, "ctrl", 1, ViewFiles},
		{ModeSymbol, "", 2, ViewSymbols},
		{ModeSymbol, "New", 1, ViewSymbols},
		{ModeCategory, "", 1, ViewFiles},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, SelectView(tt.mode, tt.query, tt.count))
		})
	}
}

func TestNewRequiresASource(t *testing.T) {
	_, err := New(Sources{Changes: fakeChanges()}, immediate)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestLaterFetchWinsRegardlessOfCompletionOrder(t *testing.T) {
	for _, firstResolvesFirst := range []bool{false, true} {
		gates := map[string]chan struct{}{
			"a":  make(chan struct{}),
			"ab": make(chan struct{}),
		}
		files := workspace.FileListerFunc(func(ctx context.Context, query string) ([]workspace.FileEntry, error) {
			<-gates[query]
			return []workspace.FileEntry{{Filepath: query + ".go"}}, nil
		})

		c, err := New(Sources{Files: files}, withQuery(immediate, "a"))
		require.NoError(t, err)

		first := c.Init()
		second := c.SetQuery("ab")

		firstDone := make(chan []tea.Msg, 1)
		secondDone := make(chan []tea.Msg, 1)
		go func() { firstDone <- exec(first) }()
		go func() { secondDone <- exec(second) }()

		if firstResolvesFirst {
			close(gates["a"])
			for _, msg := range <-firstDone {
				c.Update(msg)
			}
			assert.True(t, c.Loading(), "stale result must not end loading")
			assert.Empty(t, c.Items())

			close(gates["ab"])
			for _, msg := range <-secondDone {
				c.Update(msg)
			}
		} else {
			close(gates["ab"])
			for _, msg := range <-secondDone {
				c.Update(msg)
			}
			close(gates["a"])
			for _, msg := range <-firstDone {
				c.Update(msg)
			}
		}

		assert.Equal(t, []string{"ab.go"}, names(c.Items()))
		assert.False(t, c.Loading())
	}
}

func TestSingleSourceNeverShowsCategories(t *testing.T) {
	c := open(t, Sources{Files: fakeFiles("README.md", "cmd/main.go")}, immediate)
	assert.Equal(t, ModeFile, c.Mode())
	assert.Equal(t, []string{"README.md", "main.go"}, names(c.Items()))
	for _, item := range c.Items() {
		assert.False(t, item.IsCategory())
	}
	assert.False(t, c.CanGoBack())
	assert.Nil(t, c.Back())

	symbols := open(t, Sources{Symbols: fakeSymbols(workspace.SymbolEntry{ID: "s", Name: "Run", Kind: "func", Filepath: "run.go"})}, immediate)
	assert.Equal(t, ModeSymbol, symbols.Mode())
	assert.Equal(t, []string{"Run"}, names(symbols.Items()))
}

func TestRootListOrder(t *testing.T) {
	sources := Sources{
		Files:   fakeFiles("README.md", "cmd/main.go"),
		Symbols: fakeSymbols(),
		Changes: fakeChanges("cmd/main.go", "go.mod"),
	}
	c := open(t, sources, immediate)

	assert.Equal(t, ModeCategory, c.Mode())
	assert.Equal(t, []string{"Files", "Symbols", "changes", "README.md", "main.go"}, names(c.Items()))

	items := c.Items()
	assert.Equal(t, "2 changed files", items[2].Description)
	assert.Equal(t, "", items[3].Description)
	assert.Equal(t, "cmd", items[4].Description)

	sources.Changes = nil
	c = open(t, sources, immediate)
	assert.Equal(t, []string{"Files", "Symbols", "README.md", "main.go"}, names(c.Items()))
}

func TestChangesDescriptionFallsBack(t *testing.T) {
	failing := workspace.ChangeListerFunc(func(ctx context.Context, query string) ([]workspace.ChangeEntry, error) {
		return nil, errors.New("git exploded")
	})
	c := open(t, Sources{Files: fakeFiles(), Symbols: fakeSymbols(), Changes: failing}, immediate)

	require.Equal(t, []string{"Files", "Symbols", "changes"}, names(c.Items()))
	assert.Equal(t, suggest.ChangesCommand().Description, c.Items()[2].Description)
}

func TestFilteredRootList(t *testing.T) {
	sources := Sources{
		Files:   fakeFiles("changelog.md", "cmd/check.go", "README.md"),
		Symbols: fakeSymbols(),
		Changes: fakeChanges(),
	}

	c := open(t, sources, withQuery(immediate, "CH"))
	assert.Equal(t, []string{"changes", "changelog.md", "check.go"}, names(c.Items()))
	assert.Equal(t, suggest.CategoryCommand, c.Items()[0].Category)

	c = open(t, sources, withQuery(immediate, "read"))
	assert.Equal(t, []string{"README.md"}, names(c.Items()))
	for _, item := range c.Items() {
		assert.False(t, item.IsCategory())
	}
}

func TestSymbolsAreDeduplicated(t *testing.T) {
	sources := Sources{
		Files: fakeFiles("main.go"),
		Symbols: fakeSymbols(
			workspace.SymbolEntry{ID: "main.go#New:3", Name: "New", Kind: "func", Filepath: "main.go"},
			workspace.SymbolEntry{ID: "main.go#Run:9", Name: "Run", Kind: "func", Filepath: "main.go"},
			workspace.SymbolEntry{ID: "main.go#New:3", Name: "New", Kind: "func", Filepath: "main.go"},
		),
	}
	c := open(t, sources, immediate)

	drive(t, c, c.Select(indexOf(t, c, "Symbols")))
	assert.Equal(t, ModeSymbol, c.Mode())
	assert.Equal(t, []string{"New", "Run"}, names(c.Items()))
	assert.Equal(t, "func", c.Items()[0].Description)
}

func TestKeysClampAndReportHandled(t *testing.T) {
	c := open(t, Sources{Files: fakeFiles("a.go", "b.go", "c.go")}, immediate)

	handled, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyUp})
	assert.True(t, handled)
	assert.Equal(t, 0, c.Index())

	for i := 0; i < 5; i++ {
		handled, _ = c.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
		assert.True(t, handled)
	}
	assert.Equal(t, 2, c.Index())

	handled, _ = c.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.True(t, handled)
	assert.Equal(t, 1, c.Index())

	handled, cmd := c.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, handled)
	assert.Nil(t, cmd)

	handled, cmd = c.HandleKey(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, c.Index())
}

func TestKeysRejectedWhileLoading(t *testing.T) {
	c, err := New(Sources{Files: fakeFiles("a.go")}, immediate)
	require.NoError(t, err)
	c.Init()

	handled, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	assert.False(t, handled)
	handled, _ = c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, handled)
}

func TestSelectingCategorySwitchesModeWithoutEmitting(t *testing.T) {
	c := open(t, Sources{Files: fakeFiles("README.md", "cmd/main.go"), Symbols: fakeSymbols()}, immediate)

	c.SetSelectedIndex(indexOf(t, c, "Files"))
	handled, cmd := c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, handled)
	assert.Equal(t, 0, c.Index())

	msgs := drive(t, c, cmd)
	assert.Empty(t, selections(msgs))
	assert.Equal(t, ModeFile, c.Mode())
	assert.Equal(t, []string{"README.md", "main.go"}, names(c.Items()))
	assert.True(t, c.CanGoBack())

	drive(t, c, c.Back())
	assert.Equal(t, ModeCategory, c.Mode())
	assert.Equal(t, "Files", c.Items()[0].Name)
}

func TestSelectingItemsEmitsOnce(t *testing.T) {
	sources := Sources{
		Files:   fakeFiles("cmd/main.go"),
		Symbols: fakeSymbols(workspace.SymbolEntry{ID: "s1", Name: "Controller.Close", Kind: "method", Filepath: "picker/controller.go", Range: mention.LineRange{Start: 7, End: 12}}),
		Changes: fakeChanges(),
	}
	c := open(t, sources, immediate)

	sel := selections(drive(t, c, c.Select(indexOf(t, c, "main.go"))))
	require.Len(t, sel, 1)
	assert.Equal(t, mention.CategoryFile, sel[0].Attributes.Category)
	assert.Equal(t, "main.go", sel[0].Attributes.Label)
	assert.Equal(t, "cmd/main.go", sel[0].Attributes.ID)
	assert.Equal(t, ModeCategory, c.Mode())

	sel = selections(drive(t, c, c.Select(indexOf(t, c, "changes"))))
	require.Len(t, sel, 1)
	assert.Equal(t, mention.NewCommand("changes"), sel[0].Attributes)

	drive(t, c, c.Select(indexOf(t, c, "Symbols")))
	handled, cmd := c.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, handled)
	sel = selections(drive(t, c, cmd))
	require.Len(t, sel, 1)
	attrs := sel[0].Attributes
	assert.Equal(t, mention.CategorySymbol, attrs.Category)
	assert.Equal(t, "Controller.Close", attrs.Label)
	assert.Equal(t, &mention.LineRange{Start: 7, End: 12}, attrs.FileItem.Range)
	assert.Equal(t, ModeSymbol, c.Mode())
}

func TestFileLabel(t *testing.T) {
	assert.Equal(t, "list.go", fileLabel("ui/./overlay/list.go"))
	assert.Equal(t, "main.go", fileLabel("file:///src/main.go"))
	// Unsupported schemes fall back to the raw base name.
	assert.Equal(t, "x.go", fileLabel("https://example.com/x.go"))
}

func TestSourceErrorKeepsItems(t *testing.T) {
	files := workspace.FileListerFunc(func(ctx context.Context, query string) ([]workspace.FileEntry, error) {
		if query == "boom" {
			return nil, errors.New("listing failed")
		}
		return []workspace.FileEntry{{Filepath: "a.go"}}, nil
	})
	c := open(t, Sources{Files: files}, immediate)
	c.SetSelectedIndex(0)

	drive(t, c, c.SetQuery("boom"))
	assert.False(t, c.Loading())
	assert.False(t, c.LoadingVisible())
	assert.Equal(t, []string{"a.go"}, names(c.Items()))
	assert.Error(t, c.LastError())

	drive(t, c, c.SetQuery("a"))
	assert.NoError(t, c.LastError())
}

func TestQueryIsDebouncedAfterFirstShow(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	files := workspace.FileListerFunc(func(ctx context.Context, query string) ([]workspace.FileEntry, error) {
		mu.Lock()
		queries = append(queries, query)
		mu.Unlock()
		return []workspace.FileEntry{{Filepath: query + ".go"}}, nil
	})

	c := open(t, Sources{Files: files}, Options{QueryDelay: 10 * time.Millisecond, LoadingDelay: -1})
	assert.Equal(t, []string{""}, queries)

	first := c.SetQuery("a")
	second := c.SetQuery("ab")
	assert.Equal(t, "ab", c.Query())
	drive(t, c, tea.Batch(first, second))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "ab"}, queries)
	assert.Equal(t, []string{"ab.go"}, names(c.Items()))
}

func TestLoadingIndicatorWaitsForDelay(t *testing.T) {
	gate := make(chan struct{})
	files := workspace.FileListerFunc(func(ctx context.Context, query string) ([]workspace.FileEntry, error) {
		<-gate
		return []workspace.FileEntry{{Filepath: "a.go"}}, nil
	})
	c, err := New(Sources{Files: files}, Options{QueryDelay: -1, LoadingDelay: 5 * time.Millisecond})
	require.NoError(t, err)

	batch, ok := c.Init()().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
	load, tick := batch[0], batch[1]

	assert.True(t, c.Loading())
	assert.False(t, c.LoadingVisible())

	c.Update(tick())
	assert.True(t, c.LoadingVisible())

	close(gate)
	hide := c.Update(load())
	require.NotNil(t, hide)
	assert.False(t, c.Loading())
	assert.True(t, c.LoadingVisible(), "the indicator lingers for the delay")

	c.Update(hide())
	assert.False(t, c.LoadingVisible())
}

func TestQuickRefetchKeepsIndicator(t *testing.T) {
	c, err := New(Sources{Files: fakeFiles("a.go", "b.go")}, Options{QueryDelay: -1, LoadingDelay: 5 * time.Millisecond})
	require.NoError(t, err)

	batch := c.Init()().(tea.BatchMsg)
	c.Update(batch[1]())
	require.True(t, c.LoadingVisible())

	hide := c.Update(batch[0]())
	require.NotNil(t, hide)

	// A new fetch starts before the hide tick lands; that tick is stale.
	c.SetQuery("b")
	c.Update(hide())
	assert.True(t, c.Loading())
	assert.True(t, c.LoadingVisible())
}

func TestCloseDropsPendingResults(t *testing.T) {
	var sawCancel bool
	gate := make(chan struct{})
	files := workspace.FileListerFunc(func(ctx context.Context, query string) ([]workspace.FileEntry, error) {
		<-gate
		sawCancel = ctx.Err() != nil
		return []workspace.FileEntry{{Filepath: "a.go"}}, nil
	})
	c, err := New(Sources{Files: files}, immediate)
	require.NoError(t, err)

	done := make(chan []tea.Msg, 1)
	cmd := c.Init()
	go func() { done <- exec(cmd) }()

	c.Close()
	close(gate)
	for _, msg := range <-done {
		assert.Nil(t, c.Update(msg))
	}

	assert.True(t, sawCancel)
	assert.Empty(t, c.Items())
	assert.True(t, c.Closed())
	assert.Nil(t, c.SetQuery("x"))
	assert.Nil(t, c.Select(0))
	handled, _ := c.HandleKey(tea.KeyMsg{Type: tea.KeyDown})
	assert.False(t, handled)
}

func TestPointerSelection(t *testing.T) {
	c := open(t, Sources{Files: fakeFiles("a.go", "b.go")}, immediate)

	c.SetSelectedIndex(1)
	assert.Equal(t, 1, c.Index())
	c.SetSelectedIndex(7)
	assert.Equal(t, 1, c.Index())

	assert.Nil(t, c.SelectIndex(-1))
	sel := selections(drive(t, c, c.SelectIndex(0)))
	require.Len(t, sel, 1)
	assert.Equal(t, "a.go", sel[0].Attributes.Label)
	assert.Equal(t, 0, c.Index())
}

func TestControllersIgnoreEachOther(t *testing.T) {
	a, err := New(Sources{Files: fakeFiles("a.go")}, immediate)
	require.NoError(t, err)
	b := open(t, Sources{Files: fakeFiles("b.go")}, immediate)

	for _, msg := range exec(a.Init()) {
		b.Update(msg)
	}
	assert.Equal(t, []string{"b.go"}, names(b.Items()))
}
