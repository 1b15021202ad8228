// Package catalogsearch ranks a movie storefront catalog against free-text
// queries, tolerating typos and partial words.
//
// Each item is scored on its title and its genre; the item keeps its best
// field score. Scores run from 0 (exact) to 1 (no resemblance) and anything
// above the threshold (DefaultThreshold unless overridden) is dropped. Results
// come back best first, with ties in catalog order. A blank query returns the
// whole catalog untouched.
//
// # Plain items
//
//	idx := catalogsearch.BuildIndex([]catalogsearch.Item{
//	    {ID: "1", Title: "Act of Love", Genre: "Romance"},
//	    {ID: "4", Title: "River", Genre: "Documentary"},
//	})
//	hits := idx.Search("rivr")
//
// # Your own structs
//
//	type Movie struct {
//	    SKU   int    `catalog:"id"`
//	    Name  string `catalog:"title"`
//	    Genre string `catalog:"genre"`
//	}
//
//	idx, _ := catalogsearch.NewTypedIndex(movies, catalogsearch.WithThreshold(0.4))
//	hits := idx.Search("act of lov") // []Movie
//
// An Index never changes after it is built and is safe for concurrent use.
package catalogsearch
