package catalogsearch

import (
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/fuzzy"
	"github.com/kailas-cloud/catalogsearch/internal/domain/search/index"
)

// DefaultThreshold is the largest distance a match may have unless overridden.
const DefaultThreshold = fuzzy.DefaultThreshold

// Option configures an Index.
type Option interface {
	apply(*indexConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*indexConfig)

func (f optionFunc) apply(c *indexConfig) { f(c) }

type indexConfig struct {
	threshold float64
	fuzzy     fuzzy.Options
}

func newIndexConfig(opts []Option) indexConfig {
	cfg := indexConfig{threshold: DefaultThreshold, fuzzy: fuzzy.DefaultOptions()}
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return cfg
}

// ranker never fails: every option has already rejected out-of-range values.
func (c indexConfig) ranker() index.Ranker {
	r, err := index.NewRanker(c.threshold, c.fuzzy)
	if err != nil {
		return index.DefaultRanker()
	}
	return r
}

// WithThreshold sets the largest accepted distance.
// Values outside (0, 1] are ignored.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *indexConfig) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	})
}

// WithLocation sets the character offset where matches are expected to start.
// Negative values are ignored.
func WithLocation(loc int) Option {
	return optionFunc(func(c *indexConfig) {
		if loc >= 0 {
			c.fuzzy.Location = loc
		}
	})
}

// WithDistance sets how far from the expected location a match may drift
// before it is fully penalized. 0 only accepts matches at the location.
// Negative values are ignored.
func WithDistance(d int) Option {
	return optionFunc(func(c *indexConfig) {
		if d >= 0 {
			c.fuzzy.Distance = d
		}
	})
}

// WithIgnoreLocation scores matches the same wherever they occur.
func WithIgnoreLocation() Option {
	return optionFunc(func(c *indexConfig) {
		c.fuzzy.IgnoreLocation = true
	})
}
