package picker

import (
	"context"
	"fmt"
	"time"

	"mention-picker/log"
	"mention-picker/suggest"
	"mention-picker/workspace"
)

var skippedEntries = log.NewEvery(30 * time.Second)

// Sources are the providers the picker lists from. At least one of Files and
// Symbols must be set; Changes is optional and enables the changes command.
type Sources struct {
	Files   workspace.FileLister
	Symbols workspace.SymbolLister
	Changes workspace.ChangeLister
}

// count is the number of navigable sources.
func (s Sources) count() int {
	n := 0
	if s.Files != nil {
		n++
	}
	if s.Symbols != nil {
		n++
	}
	return n
}

// soleMode is the permanent mode of a single-source picker.
func (s Sources) soleMode() Mode {
	if s.Files == nil && s.Symbols != nil {
		return ModeSymbol
	}
	return ModeFile
}

// load builds the list for one view. It runs off the update loop and must not
// touch controller state.
func (s Sources) load(ctx context.Context, view ViewKind, query string) ([]suggest.Item, error) {
	var items []suggest.Item
	switch view {
	case ViewFiles:
		files, err := s.files(ctx, query)
		if err != nil {
			return nil, err
		}
		items = files
	case ViewSymbols:
		symbols, err := s.symbols(ctx, query)
		if err != nil {
			return nil, err
		}
		items = symbols
	case ViewCategoryRoot, ViewCategoryFiltered:
		if view == ViewCategoryRoot {
			items = append(items, suggest.Categories(s.Files != nil, s.Symbols != nil)...)
		}
		if cmd, ok := s.command(ctx, query); ok {
			items = append(items, cmd)
		}
		files, err := s.files(ctx, query)
		if err != nil {
			return nil, err
		}
		items = append(items, files...)
	default:
		return nil, fmt.Errorf("unknown view %v", view)
	}
	if items == nil {
		items = []suggest.Item{}
	}
	return suggest.DescribeAll(items), nil
}

func (s Sources) files(ctx context.Context, query string) ([]suggest.Item, error) {
	if s.Files == nil {
		return nil, nil
	}
	entries, err := s.Files.ListFiles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	items := make([]suggest.Item, 0, len(entries))
	for _, entry := range entries {
		item, err := suggest.FromFile(entry)
		if err != nil {
			if skippedEntries.ShouldLog() {
				log.WarningLog.Printf("skipping file entry: %v", err)
			}
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s Sources) symbols(ctx context.Context, query string) ([]suggest.Item, error) {
	if s.Symbols == nil {
		return nil, nil
	}
	entries, err := s.Symbols.ListSymbols(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	items := make([]suggest.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, suggest.FromSymbol(entry))
	}
	return suggest.UniqueByID(items), nil
}

// command returns the changes command when a change source is configured and
// its name starts with query. The description counts the changed files when
// they can be listed.
func (s Sources) command(ctx context.Context, query string) (suggest.Item, bool) {
	changes := suggest.ChangesCommand()
	if s.Changes == nil || !suggest.MatchesCommand(changes, query) {
		return suggest.Item{}, false
	}
	if entries, err := s.Changes.ListChanges(ctx, ""); err == nil {
		switch len(entries) {
		case 0:
			changes.Description = "No uncommitted changes"
		case 1:
			changes.Description = "1 changed file"
		default:
			changes.Description = fmt.Sprintf("%d changed files", len(entries))
		}
	}
	return suggest.FromCommand(changes), true
}
