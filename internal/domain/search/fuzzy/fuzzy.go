// Package fuzzy implements the approximate string distance used to rank catalog items.
//
// The distance is an approximate substring match: the fewest edits
// (insertions, deletions, substitutions) needed to turn the query into some
// substring of the text, divided by the query length, plus a proximity
// penalty for matches that start far from the expected location:
//
//	score(j)  = errors(j)/len(query) + |start(j) - Location| / Distance
//	distance  = min(1, min over j of score(j))
//
// where j is the end position of the candidate substring and start(j) is
// max(0, j-len(query)). 0 means a perfect match at the expected location and 1
// means no match. Comparison works on runes after lower-casing and collapsing
// whitespace.
//
// The threshold deciding what counts as a match is not part of the distance;
// callers compare against DefaultThreshold or their own value.
package fuzzy

import (
	"strings"
	"unicode"
)

const (
	// DefaultThreshold is the maximum distance for a field to count as a match.
	DefaultThreshold = 0.3
	// DefaultLocation is the text position where a match is expected to start.
	DefaultLocation = 0
	// DefaultDistance is how many runes away from Location a match may start
	// before the proximity penalty alone reaches 1.
	DefaultDistance = 100
	// MaxPatternLength caps the number of query runes taken into account.
	MaxPatternLength = 64
)

// Options tunes the proximity part of the distance.
type Options struct {
	Location       int
	Distance       int
	IgnoreLocation bool
}

// DefaultOptions returns the options the catalog ranker uses out of the box.
func DefaultOptions() Options {
	return Options{Location: DefaultLocation, Distance: DefaultDistance}
}

// Pattern is a normalized, reusable query.
type Pattern struct {
	text  string
	runes []rune
	opts  Options
}

// Compile normalizes query and prepares it for repeated matching.
func Compile(query string, opts Options) Pattern {
	text := Normalize(query)
	runes := []rune(text)
	if len(runes) > MaxPatternLength {
		runes = runes[:MaxPatternLength]
		text = string(runes)
	}
	return Pattern{text: text, runes: runes, opts: opts}
}

// Empty reports whether the pattern has nothing to match.
func (p *Pattern) Empty() bool { return len(p.runes) == 0 }

// String returns the normalized query.
func (p *Pattern) String() string { return p.text }

// Distance scores text, which must already be normalized with Normalize.
func (p *Pattern) Distance(text string) float64 {
	m := len(p.runes)
	if m == 0 {
		return 0
	}
	if text == "" {
		return 1
	}
	if text == p.text {
		return 0
	}

	t := []rune(text)

	// Column-wise Sellers DP: prev[i]/cur[i] hold the cheapest alignment of
	// the first i query runes ending at text position j-1 / j.
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := range prev {
		prev[i] = i
	}

	best := 1.0
	for j := 1; j <= len(t); j++ {
		cur[0] = 0
		tc := t[j-1]
		for i := 1; i <= m; i++ {
			cost := 1
			if p.runes[i-1] == tc {
				cost = 0
			}
			cur[i] = min(prev[i-1]+cost, prev[i]+1, cur[i-1]+1)
		}

		score := float64(cur[m])/float64(m) + p.proximity(j-m)
		if score < best {
			best = score
			if best == 0 {
				break
			}
		}
		prev, cur = cur, prev
	}

	return min(best, 1)
}

func (p *Pattern) proximity(start int) float64 {
	if p.opts.IgnoreLocation {
		return 0
	}
	if start < 0 {
		start = 0
	}
	off := start - p.opts.Location
	if off < 0 {
		off = -off
	}
	if p.opts.Distance <= 0 {
		if off == 0 {
			return 0
		}
		return 1
	}
	return float64(off) / float64(p.opts.Distance)
}

// Distance is a convenience for one-off comparisons of raw strings.
func Distance(query, text string, opts Options) float64 {
	p := Compile(query, opts)
	return p.Distance(Normalize(text))
}

// Normalize lower-cases s, trims it and collapses runs of whitespace to one space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
