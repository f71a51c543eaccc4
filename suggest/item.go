// Package suggest turns workspace records into the items shown by the mention
// picker.
package suggest

import (
	"errors"
	"path"
	"strings"

	"mention-picker/mention"
	"mention-picker/ui/fuzzy"
	"mention-picker/workspace"
)

// Category tags which payload of an Item is meaningful.
type Category string

const (
	CategoryFile    Category = "file"
	CategorySymbol  Category = "symbol"
	CategoryCommand Category = "command"
	// CategoryRoot marks the pseudo items of the root list.
	CategoryRoot Category = "category"
)

// Mode is the source the picker is currently listing.
type Mode string

const (
	ModeCategory Mode = "category"
	ModeFile     Mode = "file"
	ModeSymbol   Mode = "symbol"
)

// Label returns the human name of a mode.
func (m Mode) Label() string {
	switch m {
	case ModeFile:
		return "Files"
	case ModeSymbol:
		return "Symbols"
	default:
		return "Context"
	}
}

const (
	IconFile    = "▤"
	IconSymbol  = "ƒ"
	IconCommand = "±"
	// IconChevron trails root category rows.
	IconChevron = "›"
	IconBack    = "‹"
)

var ErrEmptyFilepath = errors.New("file entry has an empty filepath")

// Item is one row of the picker.
type Item struct {
	ID          string
	Name        string
	Icon        string
	Description string
	Category    Category

	// FileItem is set for file and symbol items.
	FileItem *mention.FileItem
	// Command is set for command items.
	Command string
	// IsRootCategory and Target are set for root category items.
	IsRootCategory bool
	Target         Mode
}

// IsCategory reports whether selecting the item switches modes.
func (i Item) IsCategory() bool {
	return i.Category == CategoryRoot && i.IsRootCategory
}

// Command is a synthetic context entry such as "changes".
type Command struct {
	Name        string
	Description string
}

// ChangesCommand is the command that mentions the uncommitted changes.
func ChangesCommand() Command {
	return Command{Name: "changes", Description: "Uncommitted changes"}
}

// FromFile adapts a file listing entry.
func FromFile(entry workspace.FileEntry) (Item, error) {
	if strings.TrimSpace(entry.Filepath) == "" {
		return Item{}, ErrEmptyFilepath
	}
	return Item{
		ID:       entry.Filepath,
		Name:     path.Base(entry.Filepath),
		Icon:     IconFile,
		Category: CategoryFile,
		FileItem: &mention.FileItem{Filepath: entry.Filepath},
	}, nil
}

// FromSymbol adapts a symbol listing entry. The symbol kind becomes the
// description.
func FromSymbol(entry workspace.SymbolEntry) Item {
	r := entry.Range
	return Item{
		ID:          entry.ID,
		Name:        entry.Name,
		Icon:        IconSymbol,
		Description: entry.Kind,
		Category:    CategorySymbol,
		FileItem: &mention.FileItem{
			Filepath: entry.Filepath,
			Range:    &r,
			Label:    entry.Name,
		},
	}
}

// FromCommand adapts a command.
func FromCommand(cmd Command) Item {
	return Item{
		ID:          "command:" + cmd.Name,
		Name:        cmd.Name,
		Icon:        IconCommand,
		Description: cmd.Description,
		Category:    CategoryCommand,
		Command:     cmd.Name,
	}
}

// MatchesCommand reports whether query is a case-insensitive prefix of the
// command name.
func MatchesCommand(cmd Command, query string) bool {
	return fuzzy.HasPrefixFold(cmd.Name, query)
}

// Categories returns the root list entries for the configured sources.
func Categories(hasFiles, hasSymbols bool) []Item {
	var items []Item
	if hasFiles {
		items = append(items, categoryItem(ModeFile, IconFile))
	}
	if hasSymbols {
		items = append(items, categoryItem(ModeSymbol, IconSymbol))
	}
	return items
}

func categoryItem(target Mode, icon string) Item {
	return Item{
		ID:             "category:" + string(target),
		Name:           target.Label(),
		Icon:           icon,
		Category:       CategoryRoot,
		IsRootCategory: true,
		Target:         target,
	}
}

// UniqueByID drops repeated ids. An id keeps the position of its first
// occurrence and the payload of its last.
func UniqueByID(items []Item) []Item {
	index := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ID]; ok {
			out[i] = item
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}

// Describe fills in the directory description of a file item. Items of other
// categories, items that already have one, and paths that cannot be parsed are
// returned unchanged.
func Describe(item Item) Item {
	if item.Category != CategoryFile || item.Description != "" || item.FileItem == nil {
		return item
	}
	p, err := workspace.ConvertFromFilepath(item.FileItem.Filepath)
	if err != nil {
		return item
	}
	item.Description = workspace.FormatFileDescription(p)
	return item
}

// DescribeAll applies Describe to every item.
func DescribeAll(items []Item) []Item {
	for i := range items {
		items[i] = Describe(items[i])
	}
	return items
}
