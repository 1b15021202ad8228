package catalogsearch

import (
	"fmt"
	"reflect"
)

// TypedIndex searches a slice of caller-defined structs tagged with
// `catalog:"id"`, `catalog:"title"` and optionally `catalog:"genre"`,
// `catalog:"synopsis"` and `catalog:"artwork"`. Search returns the
// original values.
type TypedIndex[T any] struct {
	values []T
	index  *Index
}

// NewTypedIndex creates a typed index over values. T must be a struct, or a
// pointer to one, with catalog tags. Schema errors are reported here.
func NewTypedIndex[T any](values []T, opts ...Option) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new typed index: %w", err)
	}

	own := make([]T, len(values))
	copy(own, values)
	items := make([]Item, len(own))
	for i := range own {
		items[i] = meta.toItem(reflect.ValueOf(own[i]))
	}
	return &TypedIndex[T]{values: own, index: BuildIndex(items, opts...)}, nil
}

// Len returns the number of indexed values.
func (x *TypedIndex[T]) Len() int { return len(x.values) }

// Search returns the values matching query, best first.
func (x *TypedIndex[T]) Search(query string) []T {
	positions := x.index.positions(query)
	out := make([]T, len(positions))
	for i, pos := range positions {
		out[i] = x.values[pos]
	}
	return out
}
