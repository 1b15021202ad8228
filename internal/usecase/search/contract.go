package search

import "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"

// Page is one ranked page of catalog items.
// Total counts every match before Limit was applied.
type Page struct {
	Items   []catalog.Item
	Total   int
	Limit   int
	Version string
}

// Suggestion is a typeahead candidate.
type Suggestion struct {
	ID    string
	Title string
}

// Suggestion limits.
const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)
