package workspace

import (
	"context"
	"strings"

	"mention-picker/ui/fuzzy"
)

// ListFiles returns files matching query. With an empty query, files with
// uncommitted changes come first, then everything else in path order.
func (w *Workspace) ListFiles(ctx context.Context, query string) ([]FileEntry, error) {
	files, err := w.fileIndex(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		ordered := w.changedFirst(ctx, files)
		entries := make([]FileEntry, 0, w.limit(len(ordered)))
		for _, f := range ordered[:w.limit(len(ordered))] {
			entries = append(entries, FileEntry{Filepath: f})
		}
		return entries, nil
	}

	results := fuzzy.Search(query, fuzzy.NewBasicStringItems(files), w.opts.MaxResults)
	entries := make([]FileEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, FileEntry{Filepath: r.Item.GetID()})
	}
	return entries, nil
}

// changedFirst moves files with uncommitted changes to the front, keeping the
// relative order of both groups. Git failures leave the order untouched.
func (w *Workspace) changedFirst(ctx context.Context, files []string) []string {
	if w.repo == nil {
		return files
	}
	changes, err := w.ListChanges(ctx, "")
	if err != nil || len(changes) == 0 {
		return files
	}

	changed := make(map[string]bool, len(changes))
	for _, c := range changes {
		changed[c.Filepath] = true
	}

	ordered := make([]string, 0, len(files))
	rest := make([]string, 0, len(files))
	for _, f := range files {
		if changed[f] {
			ordered = append(ordered, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(ordered, rest...)
}
