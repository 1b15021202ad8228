package chi

import (
	"bytes"
	"encoding/json"
	"fmt"

	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
	searchuc "github.com/kailas-cloud/catalogsearch/internal/usecase/search"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeInvalidSnapshot   ErrorCode = "invalid_snapshot"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeSnapshotNotLoaded ErrorCode = "snapshot_not_loaded"
	ErrorCodeRateLimited       ErrorCode = "rate_limited"
	ErrorCodeSourceUnavailable ErrorCode = "source_unavailable"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ItemID accepts both JSON numbers and strings; it always encodes as a string.
type ItemID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or a number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// Item is the wire form of a catalog item.
type Item struct {
	ID       ItemID            `json:"id"`
	Title    string            `json:"title"`
	Genre    string            `json:"genre,omitempty"`
	Synopsis string            `json:"synopsis,omitempty"`
	Artwork  string            `json:"artwork,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// SearchResponse is returned by the search and list endpoints.
type SearchResponse struct {
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Version string `json:"version"`
}

// Suggestion is one typeahead candidate.
type Suggestion struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SuggestResponse is returned by the suggest endpoint.
type SuggestResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ReplaceRequest is the body of PUT /catalog.
type ReplaceRequest struct {
	Items []Item `json:"items"`
}

// SnapshotResponse describes a freshly published snapshot.
type SnapshotResponse struct {
	Version string `json:"version"`
	Items   int    `json:"items"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func itemToDTO(it *domcat.Item) Item {
	return Item{
		ID:       ItemID(it.ID()),
		Title:    it.Title(),
		Genre:    it.Genre(),
		Synopsis: it.Synopsis(),
		Artwork:  it.Artwork(),
		Extra:    it.Extra(),
	}
}

func itemFromDTO(it Item) domcat.Item {
	return domcat.Reconstruct(string(it.ID), it.Title, it.Genre, it.Synopsis, it.Artwork, it.Extra)
}

func pageToDTO(p searchuc.Page) SearchResponse {
	items := make([]Item, len(p.Items))
	for i := range p.Items {
		items[i] = itemToDTO(&p.Items[i])
	}
	return SearchResponse{Items: items, Total: p.Total, Limit: p.Limit, Version: p.Version}
}

func suggestionsToDTO(ss []searchuc.Suggestion) SuggestResponse {
	out := make([]Suggestion, len(ss))
	for i, s := range ss {
		out[i] = Suggestion{ID: s.ID, Title: s.Title}
	}
	return SuggestResponse{Suggestions: out}
}
