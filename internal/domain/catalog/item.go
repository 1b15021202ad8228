package catalog

import (
	"fmt"
	"strings"
)

// MaxIDLength is the maximum catalog item identifier length.
const MaxIDLength = 256

// Item is a catalog entry (immutable value object).
// Only title and genre take part in matching; the rest is carried through.
type Item struct {
	id       string
	title    string
	genre    string
	synopsis string
	artwork  string
	extra    map[string]string
}

// NewItem validates and creates an Item.
// ID: non-empty after trimming, max 256 chars. Title: non-empty after trimming.
func NewItem(id, title, genre, synopsis, artwork string, extra map[string]string) (Item, error) {
	if strings.TrimSpace(id) == "" {
		return Item{}, fmt.Errorf("item ID is required")
	}
	if len(id) > MaxIDLength {
		return Item{}, fmt.Errorf("item ID too long (max %d)", MaxIDLength)
	}
	if strings.TrimSpace(title) == "" {
		return Item{}, fmt.Errorf("item %q: title is required", id)
	}

	return Item{
		id:       id,
		title:    title,
		genre:    genre,
		synopsis: synopsis,
		artwork:  artwork,
		extra:    cloneStringMap(extra),
	}, nil
}

// Reconstruct creates an Item without validation (storage and feed hydration).
func Reconstruct(id, title, genre, synopsis, artwork string, extra map[string]string) Item {
	return Item{id: id, title: title, genre: genre, synopsis: synopsis, artwork: artwork, extra: extra}
}

// ID returns the item identifier.
func (i *Item) ID() string { return i.id }

// Title returns the display title.
func (i *Item) Title() string { return i.title }

// Genre returns the genre label, empty when absent.
func (i *Item) Genre() string { return i.genre }

// Synopsis returns the synopsis text.
func (i *Item) Synopsis() string { return i.synopsis }

// Artwork returns the artwork reference.
func (i *Item) Artwork() string { return i.artwork }

// Extra returns a copy of the remaining descriptive fields.
func (i *Item) Extra() map[string]string { return cloneStringMap(i.extra) }

// HasTitle reports whether the item carries a usable title.
func (i *Item) HasTitle() bool { return strings.TrimSpace(i.title) != "" }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
