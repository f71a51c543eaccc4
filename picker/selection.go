package picker

import (
	"path"

	"mention-picker/mention"
	"mention-picker/suggest"
	"mention-picker/workspace"
)

// attributesFor builds the chip attributes of a confirmed item. Root
// categories and items without a payload have none.
func attributesFor(item suggest.Item) (mention.Attributes, bool) {
	switch item.Category {
	case suggest.CategoryCommand:
		if item.Command == "" {
			return mention.Attributes{}, false
		}
		return mention.NewCommand(item.Command), true
	case suggest.CategoryFile:
		if item.FileItem == nil {
			return mention.Attributes{}, false
		}
		return mention.NewFile(*item.FileItem, fileLabel(item.FileItem.Filepath)), true
	case suggest.CategorySymbol:
		if item.FileItem == nil {
			return mention.Attributes{}, false
		}
		return mention.NewSymbol(*item.FileItem, item.Name), true
	default:
		return mention.Attributes{}, false
	}
}

// fileLabel is the base name of the normalized path, or of the raw path when
// it cannot be normalized.
func fileLabel(raw string) string {
	if name := workspace.DisplayFileName(raw); name != "" {
		return name
	}
	return path.Base(raw)
}
