package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mention-picker/log"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
)

// DefaultExclude lists the globs skipped when indexing a workspace.
var DefaultExclude = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	"**/*.min.js",
}

// Options controls indexing and result sizes.
type Options struct {
	// Exclude holds doublestar globs relative to the root. A pattern ending in
	// "/**" also prunes the directory itself.
	Exclude []string
	// MaxResults caps every listing. Zero or less means no limit.
	MaxResults int
}

// Workspace lists files, Go symbols and git changes under a root directory.
// It is safe for concurrent use; listings are served from an index that is
// rebuilt lazily after Invalidate.
type Workspace struct {
	root string
	opts Options

	// repo is nil when root is not inside a git work tree.
	repo     *git.Repository
	repoRoot string

	mu sync.RWMutex

	// gen is bumped by Invalidate so an index built across it is not stored.
	gen     uint64
	files   []string
	symbols []SymbolEntry

	// symbolsReady distinguishes "not indexed" from "no symbols".
	symbolsReady bool

	// gitMu serializes every use of repo; go-git's object storage is not safe
	// for concurrent use. It also guards the cached status below.
	gitMu     sync.Mutex
	status    git.Status
	statusGen uint64
	statusAt  time.Time
}

// Open prepares a workspace rooted at dir. Nothing is indexed until the first
// listing.
func Open(dir string, opts Options) (*Workspace, error) {
	root, err := ExpandPath(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace %s: %w", dir, err)
	}
	if !IsDirectory(root) {
		return nil, fmt.Errorf("workspace %s is not a directory", root)
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExclude
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	w := &Workspace{root: root, opts: opts}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	switch {
	case err == nil:
		wt, wtErr := repo.Worktree()
		if wtErr != nil {
			log.WarningLog.Printf("git worktree unavailable for %s: %v", root, wtErr)
			break
		}
		w.repo = repo
		w.repoRoot = wt.Filesystem.Root()
	case errors.Is(err, git.ErrRepositoryNotExists):
		log.InfoLog.Printf("workspace %s is not a git repository, change listing disabled", root)
	default:
		log.WarningLog.Printf("failed to open git repository at %s: %v", root, err)
	}

	return w, nil
}

// Root returns the absolute workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// HasGit reports whether change listing is available.
func (w *Workspace) HasGit() bool {
	return w.repo != nil
}

// Invalidate drops the cached indexes; the next listing rebuilds them.
func (w *Workspace) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.gen++
	w.files = nil
	w.symbols = nil
	w.symbolsReady = false
}

func (w *Workspace) limit(n int) int {
	if w.opts.MaxResults > 0 && n > w.opts.MaxResults {
		return w.opts.MaxResults
	}
	return n
}

// excluded reports whether rel (slash-separated) is filtered out.
func (w *Workspace) excluded(rel string, isDir bool) bool {
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if isDir && strings.HasSuffix(pattern, "/**") {
			if ok, _ := doublestar.Match(strings.TrimSuffix(pattern, "/**"), rel); ok {
				return true
			}
		}
	}
	return false
}

// fileIndex returns the sorted relative paths of every indexed file.
func (w *Workspace) fileIndex(ctx context.Context) ([]string, error) {
	w.mu.RLock()
	files, gen := w.files, w.gen
	w.mu.RUnlock()
	if files != nil {
		return files, nil
	}

	files = []string{}
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			if d != nil && d.IsDir() && p != w.root {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == w.root {
			return nil
		}

		rel, relErr := filepath.Rel(w.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || w.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || w.excluded(rel, false) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", w.root, err)
	}
	sort.Strings(files)

	w.mu.Lock()
	if w.gen == gen {
		w.files = files
	}
	w.mu.Unlock()

	return files, nil
}
