package picker

import "mention-picker/suggest"

type Mode = suggest.Mode

const (
	ModeCategory = suggest.ModeCategory
	ModeFile     = suggest.ModeFile
	ModeSymbol   = suggest.ModeSymbol
)

// ViewKind is the shape of the list a fetch builds.
type ViewKind int

const (
	// ViewCategoryRoot lists the categories, the command and the default files.
	ViewCategoryRoot ViewKind = iota
	// ViewCategoryFiltered lists the matching command and file matches.
	ViewCategoryFiltered
	ViewFiles
	ViewSymbols
)

func (v ViewKind) String() string {
	switch v {
	case ViewCategoryRoot:
		return "category-root"
	case ViewCategoryFiltered:
		return "category-filtered"
	case ViewFiles:
		return "files"
	case ViewSymbols:
		return "symbols"
	default:
		return "unknown"
	}
}

// SelectView decides which list to build. sourceCount is the number of
// configured file and symbol sources; the category views need at least two,
// otherwise the file view is used.
func SelectView(mode Mode, query string, sourceCount int) ViewKind {
	switch mode {
	case ModeFile:
		return ViewFiles
	case ModeSymbol:
		return ViewSymbols
	}
	if sourceCount < 2 {
		return ViewFiles
	}
	if query == "" {
		return ViewCategoryRoot
	}
	return ViewCategoryFiltered
}
