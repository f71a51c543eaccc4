// Package workspace provides the file, symbol, and change listings that feed the
// mention picker, plus the path helpers used to describe them.
package workspace

import (
	"context"
	"errors"

	"mention-picker/mention"
)

var (
	// ErrNotRepository is returned by change listing outside a git work tree.
	ErrNotRepository = errors.New("not a git repository")
	// ErrEmptyPath is returned by the path helpers for an empty filepath.
	ErrEmptyPath = errors.New("empty filepath")
)

// FileEntry is one file in the workspace, by slash-separated relative path.
type FileEntry struct {
	Filepath string
}

// SymbolEntry is one top-level declaration.
type SymbolEntry struct {
	ID       string
	Name     string
	Kind     string
	Filepath string
	Range    mention.LineRange
}

// ChangeEntry is a file with uncommitted changes.
type ChangeEntry struct {
	Filepath string
	Staging  string
	Worktree string
}

// FileLister lists files matching a query.
type FileLister interface {
	ListFiles(ctx context.Context, query string) ([]FileEntry, error)
}

// SymbolLister lists symbols matching a query.
type SymbolLister interface {
	ListSymbols(ctx context.Context, query string) ([]SymbolEntry, error)
}

// ChangeLister lists uncommitted changes, optionally filtered by query.
type ChangeLister interface {
	ListChanges(ctx context.Context, query string) ([]ChangeEntry, error)
}

// FileListerFunc adapts a function to FileLister.
type FileListerFunc func(ctx context.Context, query string) ([]FileEntry, error)

func (f FileListerFunc) ListFiles(ctx context.Context, query string) ([]FileEntry, error) {
	return f(ctx, query)
}

// SymbolListerFunc adapts a function to SymbolLister.
type SymbolListerFunc func(ctx context.Context, query string) ([]SymbolEntry, error)

func (f SymbolListerFunc) ListSymbols(ctx context.Context, query string) ([]SymbolEntry, error) {
	return f(ctx, query)
}

// ChangeListerFunc adapts a function to ChangeLister.
type ChangeListerFunc func(ctx context.Context, query string) ([]ChangeEntry, error)

func (f ChangeListerFunc) ListChanges(ctx context.Context, query string) ([]ChangeEntry, error) {
	return f(ctx, query)
}
