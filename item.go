package catalogsearch

import "github.com/kailas-cloud/catalogsearch/internal/domain/catalog"

// Item is one catalog entry. Only Title and Genre take part in matching;
// an empty field simply never matches.
type Item struct {
	ID       string
	Title    string
	Genre    string
	Synopsis string
	Artwork  string
	Extra    map[string]string
}

func (it Item) toDomain() catalog.Item {
	return catalog.Reconstruct(it.ID, it.Title, it.Genre, it.Synopsis, it.Artwork, it.Extra)
}
