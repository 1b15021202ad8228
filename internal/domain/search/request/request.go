package request

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/catalogsearch/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in runes.
	MaxQueryLength = 512
	DefaultLimit   = 20
	MaxLimit       = 200
)

// Request is a validated catalog search query.
type Request struct {
	query     string
	limit     int
	threshold float64
}

// Limits bounds the page size of a request.
type Limits struct {
	Default int
	Max     int
}

// DefaultLimits returns DefaultLimit and MaxLimit.
func DefaultLimits() Limits {
	return Limits{Default: DefaultLimit, Max: MaxLimit}
}

// New validates and normalizes search parameters with DefaultLimits.
func New(query string, limit int, threshold float64) (Request, error) {
	return DefaultLimits().New(query, limit, threshold)
}

// New validates and normalizes search parameters.
// An empty or blank query is valid and means "whole catalog".
// limit=0 selects l.Default, larger values are clamped to l.Max.
// threshold=0 keeps the ranker's configured threshold; otherwise it must be in (0, 1].
func (l Limits) New(query string, limit int, threshold float64) (Request, error) {
	if !utf8.ValidString(query) {
		return Request{}, fmt.Errorf("%w: query is not valid UTF-8", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidArgument, MaxQueryLength)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must be >= 0", domain.ErrInvalidArgument)
	}
	if limit == 0 {
		limit = l.Default
	}
	if l.Max > 0 && limit > l.Max {
		limit = l.Max
	}
	if threshold < 0 || threshold > 1 {
		return Request{}, fmt.Errorf("%w: threshold must be between 0 and 1", domain.ErrInvalidArgument)
	}

	return Request{query: query, limit: limit, threshold: threshold}, nil
}

// Query returns the raw query text.
func (r *Request) Query() string { return r.query }

// Limit returns the maximum number of items to return.
func (r *Request) Limit() int { return r.limit }

// Threshold returns the per-request threshold override, 0 if none.
func (r *Request) Threshold() float64 { return r.threshold }

// HasThreshold reports whether the request overrides the ranker threshold.
func (r *Request) HasThreshold() bool { return r.threshold > 0 }
