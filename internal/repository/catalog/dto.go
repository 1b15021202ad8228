package catalog

import (
	"strings"

	domcat "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"
)

// Hash field names of a stored catalog item.
const (
	fieldTitle    = "title"
	fieldGenre    = "genre"
	fieldSynopsis = "synopsis"
	fieldArtwork  = "artwork"
	extraPrefix   = "extra:"
)

// buildHashFields converts an item into a flat map for HSET.
// title is always written so an untitled item still has a hash.
func buildHashFields(it *domcat.Item) map[string]string {
	extra := it.Extra()
	m := make(map[string]string, 4+len(extra))
	m[fieldTitle] = it.Title()
	if v := it.Genre(); v != "" {
		m[fieldGenre] = v
	}
	if v := it.Synopsis(); v != "" {
		m[fieldSynopsis] = v
	}
	if v := it.Artwork(); v != "" {
		m[fieldArtwork] = v
	}
	for k, v := range extra {
		m[extraPrefix+k] = v
	}
	return m
}

// parseHashFields converts a stored hash back into an item. Unknown fields are ignored.
func parseHashFields(id string, m map[string]string) domcat.Item {
	var extra map[string]string
	for k, v := range m {
		name, ok := strings.CutPrefix(k, extraPrefix)
		if !ok || name == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[name] = v
	}
	return domcat.Reconstruct(id, m[fieldTitle], m[fieldGenre], m[fieldSynopsis], m[fieldArtwork], extra)
}
