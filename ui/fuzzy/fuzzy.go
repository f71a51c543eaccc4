package fuzzy

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// SearchItem represents an item that can be searched using fuzzy search
type SearchItem interface {
	// GetSearchText returns the text used for fuzzy matching
	GetSearchText() string

	// GetID returns a unique identifier for the item
	GetID() string
}

// SearchResult represents a result from a fuzzy search
type SearchResult struct {
	// Item is the original search item
	Item SearchItem

	// Score represents how well the item matched the query (higher is better)
	Score int

	// Matches contains the indices of matching characters for highlighting
	Matches []int
}

type source []SearchItem

func (s source) String(i int) string { return s[i].GetSearchText() }
func (s source) Len() int            { return len(s) }

// Search ranks items against query, best match first. An empty query keeps
// every item in its original order. A maxResults of zero or less means no limit.
func Search(query string, items []SearchItem, maxResults int) []SearchResult {
	query = strings.TrimSpace(query)

	var results []SearchResult
	if query == "" {
		results = make([]SearchResult, 0, len(items))
		for _, item := range items {
			results = append(results, SearchResult{Item: item, Matches: []int{}})
		}
	} else {
		matches := fuzzy.FindFrom(query, source(items))
		results = make([]SearchResult, 0, len(matches))
		for _, m := range matches {
			results = append(results, SearchResult{
				Item:    items[m.Index],
				Score:   m.Score,
				Matches: m.MatchedIndexes,
			})
		}
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// HasPrefixFold reports whether text starts with prefix, ignoring case.
func HasPrefixFold(text, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(text), strings.ToLower(prefix))
}

// BasicStringItem is a simple implementation of SearchItem for string-only items
type BasicStringItem struct {
	ID   string
	Text string
}

func (i BasicStringItem) GetSearchText() string {
	return i.Text
}

func (i BasicStringItem) GetID() string {
	return i.ID
}

// NewBasicStringItems creates a slice of BasicStringItem from a slice of strings
func NewBasicStringItems(items []string) []SearchItem {
	result := make([]SearchItem, len(items))
	for i, item := range items {
		result[i] = BasicStringItem{
			ID:   item,
			Text: item,
		}
	}
	return result
}
