// Package mention defines the attributes carried by an inserted mention chip and
// how a chip is exported to plain text.
package mention

import (
	"fmt"
	"path"
)

// Category selects which payload of Attributes is meaningful.
type Category string

const (
	CategoryFile    Category = "file"
	CategorySymbol  Category = "symbol"
	CategoryCommand Category = "command"
)

// LineRange is an inclusive, 1-based line span inside a file.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FileItem points at a file, or at a symbol inside one.
type FileItem struct {
	Filepath string     `json:"filepath"`
	Range    *LineRange `json:"range,omitempty"`
	// Label is the symbol name for symbol mentions.
	Label string `json:"label,omitempty"`
}

// Attributes is what a chip persists. Exactly one of FileItem and Command is
// meaningful, chosen by Category.
type Attributes struct {
	ID       string    `json:"id,omitempty"`
	FileItem *FileItem `json:"fileItem,omitempty"`
	Category Category  `json:"category"`
	Command  *string   `json:"command,omitempty"`
	Label    string    `json:"label"`
}

// NewFile returns the attributes of a file mention.
func NewFile(item FileItem, label string) Attributes {
	return Attributes{
		ID:       item.Filepath,
		FileItem: &item,
		Category: CategoryFile,
		Label:    label,
	}
}

// NewSymbol returns the attributes of a symbol mention.
func NewSymbol(item FileItem, label string) Attributes {
	return Attributes{
		ID:       item.Filepath,
		FileItem: &item,
		Category: CategorySymbol,
		Label:    label,
	}
}

// NewCommand returns the attributes of a context command mention.
func NewCommand(name string) Attributes {
	return Attributes{
		Category: CategoryCommand,
		Command:  &name,
		Label:    name,
	}
}

// EffectiveCategory applies the schema default.
func (a Attributes) EffectiveCategory() Category {
	if a.Category == "" {
		return CategoryFile
	}
	return a.Category
}

// CommandName returns the command, or "" when none is set.
func (a Attributes) CommandName() string {
	if a.Command == nil {
		return ""
	}
	return *a.Command
}

// Validate reports whether the payload required by the category is present.
func (a Attributes) Validate() error {
	switch a.EffectiveCategory() {
	case CategoryCommand:
		return nil
	case CategoryFile, CategorySymbol:
		if a.FileItem == nil || a.FileItem.Filepath == "" {
			return fmt.Errorf("%s mention has no filepath", a.EffectiveCategory())
		}
		return nil
	default:
		return fmt.Errorf("unknown mention category %q", a.Category)
	}
}

// DisplayLabel is the chip text. It falls back to the file's base name when no
// label was recorded.
func (a Attributes) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	if a.EffectiveCategory() == CategoryCommand {
		return a.CommandName()
	}
	if a.FileItem != nil {
		return path.Base(a.FileItem.Filepath)
	}
	return ""
}
