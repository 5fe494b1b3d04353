// Package rank scores free-text queries against candidate fields.
//
// Every searchable list view composes the same pipeline: apply exact
// structural filters first, then score each record's fields against the
// query, drop records whose best score is negative and sort the rest by
// descending score.
package rank

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ScoreNoMatch is the sentinel returned when a candidate does not match
// the query at all. Callers exclude such candidates from results.
const ScoreNoMatch = -1

// Score bands. Containment always beats any edit-distance match, and a
// smaller edit distance always beats a larger one.
const (
	scoreExact    = 1000
	scorePrefix   = 900
	scoreContains = 800
	fuzzyBase     = 400
)

// Score computes the relevance of candidate text for a query.
//
// The empty query matches everything with a neutral score of 0. Empty or
// missing candidates are treated as the empty string; Score is pure,
// deterministic and never panics.
func Score(query, candidate string) int {
	q := normalize(query)
	if q == "" {
		return 0
	}
	c := normalize(candidate)
	if c == "" {
		return ScoreNoMatch
	}

	if c == q {
		return scoreExact
	}
	if strings.HasPrefix(c, q) {
		return scorePrefix
	}
	if strings.Contains(c, q) {
		return scoreContains
	}

	// Fuzzy band: smallest Levenshtein distance between the query and any
	// token of the candidate (or the whole candidate). Distances beyond
	// half the query length are no-matches.
	maxDist := len([]rune(q)) / 2
	if maxDist == 0 {
		return ScoreNoMatch
	}
	dist := bestDistance(q, c)
	if dist > maxDist {
		return ScoreNoMatch
	}
	// Monotone in distance, always in (0, fuzzyBase], below the
	// containment band.
	return fuzzyBase * (maxDist - dist + 1) / (maxDist + 1)
}

// BestFieldScore scores a query against several fields of one record and
// returns the maximum. This is the composition rule every list view uses.
func BestFieldScore(query string, fields ...string) int {
	if len(fields) == 0 {
		return Score(query, "")
	}
	best := ScoreNoMatch
	for _, f := range fields {
		if s := Score(query, f); s > best {
			best = s
		}
	}
	return best
}

// Rank filters and orders items by relevance: items whose best field
// score is negative are dropped, the rest are sorted by descending score
// with ties broken by the caller's default sort key.
func Rank[T any](query string, items []T, fields func(T) []string, sortKey func(T) string) []T {
	type scored struct {
		item  T
		score int
		key   string
	}

	var kept []scored
	for _, it := range items {
		s := BestFieldScore(query, fields(it)...)
		if s < 0 {
			continue
		}
		kept = append(kept, scored{item: it, score: s, key: sortKey(it)})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].key < kept[j].key
	})

	out := make([]T, 0, len(kept))
	for _, s := range kept {
		out = append(out, s.item)
	}
	return out
}

// normalize lower-cases and NFC-normalizes text so that composed and
// decomposed Unicode forms compare equal.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// bestDistance returns the smallest Levenshtein distance between the
// query and either the whole candidate or any whitespace-separated token.
func bestDistance(query, candidate string) int {
	best := levenshtein(query, candidate)
	for _, tok := range strings.Fields(candidate) {
		if d := levenshtein(query, tok); d < best {
			best = d
		}
	}
	return best
}

// levenshtein computes the edit distance between two strings by rune,
// using the classic two-row dynamic program.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
