package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mention-picker/ui/fuzzy"

	"github.com/go-git/go-git/v5"
)

// ListChanges returns files whose staging or worktree status is not unmodified,
// limited to files under the workspace root. A non-empty query fuzzy-filters
// the paths.
func (w *Workspace) ListChanges(ctx context.Context, query string) ([]ChangeEntry, error) {
	if w.repo == nil {
		return nil, ErrNotRepository
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status, err := w.gitStatus()
	if err != nil {
		return nil, err
	}

	changes := make([]ChangeEntry, 0, len(status))
	for repoPath, fileStatus := range status {
		if fileStatus.Staging == git.Unmodified && fileStatus.Worktree == git.Unmodified {
			continue
		}
		rel, ok := w.relativeToRoot(repoPath)
		if !ok || w.excluded(rel, false) {
			continue
		}
		changes = append(changes, ChangeEntry{
			Filepath: rel,
			Staging:  statusName(fileStatus.Staging),
			Worktree: statusName(fileStatus.Worktree),
		})
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Filepath < changes[j].Filepath
	})

	query = strings.TrimSpace(query)
	if query == "" {
		return changes, nil
	}

	byPath := make(map[string]ChangeEntry, len(changes))
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		byPath[c.Filepath] = c
		paths = append(paths, c.Filepath)
	}
	results := fuzzy.Search(query, fuzzy.NewBasicStringItems(paths), w.opts.MaxResults)
	filtered := make([]ChangeEntry, 0, len(results))
	for _, r := range results {
		filtered = append(filtered, byPath[r.Item.GetID()])
	}
	return filtered, nil
}

// statusTTL bounds how long a status is reused. Staging changes touch only
// .git, which the watcher does not see, so the generation alone is not enough.
const statusTTL = time.Second

// gitStatus returns the worktree status, computing it at most once per index
// generation and statusTTL. Concurrent callers wait for a single computation.
func (w *Workspace) gitStatus() (git.Status, error) {
	w.mu.RLock()
	gen := w.gen
	w.mu.RUnlock()

	w.gitMu.Lock()
	defer w.gitMu.Unlock()

	if w.status != nil && w.statusGen == gen && time.Since(w.statusAt) < statusTTL {
		return w.status, nil
	}

	wt, err := w.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get git status: %w", err)
	}
	w.status, w.statusGen, w.statusAt = status, gen, time.Now()
	return status, nil
}

// relativeToRoot converts a repository-relative path to one relative to the
// workspace root. It reports false for paths outside the root.
func (w *Workspace) relativeToRoot(repoPath string) (string, bool) {
	abs := filepath.Join(w.repoRoot, filepath.FromSlash(repoPath))
	rel, err := filepath.Rel(w.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func statusName(code git.StatusCode) string {
	switch code {
	case git.Unmodified:
		return "unmodified"
	case git.Untracked:
		return "untracked"
	case git.Modified:
		return "modified"
	case git.Added:
		return "added"
	case git.Deleted:
		return "deleted"
	case git.Renamed:
		return "renamed"
	case git.Copied:
		return "copied"
	case git.UpdatedButUnmerged:
		return "unmerged"
	default:
		return string(code)
	}
}
