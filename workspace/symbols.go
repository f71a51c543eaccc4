package workspace

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"time"

	"mention-picker/log"
	"mention-picker/mention"
	"mention-picker/ui/fuzzy"
)

var parseErrors = log.NewEvery(30 * time.Second)

type symbolSearchItem struct {
	index int
	name  string
}

func (s symbolSearchItem) GetSearchText() string { return s.name }
func (s symbolSearchItem) GetID() string         { return fmt.Sprint(s.index) }

// ListSymbols returns top-level Go declarations whose name matches query. An
// empty query yields no symbols.
func (w *Workspace) ListSymbols(ctx context.Context, query string) ([]SymbolEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SymbolEntry{}, nil
	}

	symbols, err := w.symbolIndex(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]fuzzy.SearchItem, len(symbols))
	for i, s := range symbols {
		items[i] = symbolSearchItem{index: i, name: s.Name}
	}
	results := fuzzy.Search(query, items, w.opts.MaxResults)

	entries := make([]SymbolEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, symbols[r.Item.(symbolSearchItem).index])
	}
	return entries, nil
}

func (w *Workspace) symbolIndex(ctx context.Context) ([]SymbolEntry, error) {
	w.mu.RLock()
	symbols, ready, gen := w.symbols, w.symbolsReady, w.gen
	w.mu.RUnlock()
	if ready {
		return symbols, nil
	}

	files, err := w.fileIndex(ctx)
	if err != nil {
		return nil, err
	}

	symbols = []SymbolEntry{}
	fset := token.NewFileSet()
	for _, rel := range files {
		if !strings.HasSuffix(rel, ".go") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, parseErr := parser.ParseFile(fset, filepath.Join(w.root, filepath.FromSlash(rel)), nil, parser.SkipObjectResolution)
		if parseErr != nil && parseErrors.ShouldLog() {
			log.WarningLog.Printf("failed to parse %s: %v", rel, parseErr)
		}
		if f == nil {
			continue
		}
		symbols = append(symbols, declarations(fset, rel, f)...)
	}

	w.mu.Lock()
	if w.gen == gen {
		w.symbols = symbols
		w.symbolsReady = true
	}
	w.mu.Unlock()

	return symbols, nil
}

// declarations collects the top-level funcs, methods, types, consts and vars
// of one file.
func declarations(fset *token.FileSet, rel string, f *ast.File) []SymbolEntry {
	var out []SymbolEntry
	add := func(name, kind string, node ast.Node) {
		if name == "" || name == "_" {
			return
		}
		start := fset.Position(node.Pos()).Line
		end := fset.Position(node.End()).Line
		out = append(out, SymbolEntry{
			ID:       fmt.Sprintf("%s#%s:%d", rel, name, start),
			Name:     name,
			Kind:     kind,
			Filepath: rel,
			Range:    mention.LineRange{Start: start, End: end},
		})
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv != nil && len(d.Recv.List) > 0 {
				add(receiverName(d.Recv.List[0].Type)+"."+d.Name.Name, "method", d)
			} else {
				add(d.Name.Name, "func", d)
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					add(s.Name.Name, "type", s)
				case *ast.ValueSpec:
					kind := "var"
					if d.Tok == token.CONST {
						kind = "const"
					}
					for _, n := range s.Names {
						add(n.Name, kind, s)
					}
				}
			}
		}
	}
	return out
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return "?"
	}
}
