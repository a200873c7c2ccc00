package completion

import (
	"slices"
	"unicode"

	"github.com/sahilm/fuzzy"
)

const (
	exactScore  = 300
	prefixScore = 200

	// maxSecondaryScore bounds every strategy after prefix so that a prefix
	// match always outranks a non-prefix match of the same query.
	maxSecondaryScore = prefixScore - 1
)

// Match is the outcome of a successful strategy.
type Match struct {
	Score   int
	Indices []int
}

// Strategy is one step of the ranking cascade.
type Strategy struct {
	Name  string
	Match func(text, query string) (Match, bool)
}

// Strategies is the cascade in priority order; the first success wins.
var Strategies = []Strategy{
	{Name: "exact", Match: MatchExact},
	{Name: "prefix", Match: MatchPrefix},
	{Name: "substring", Match: MatchSubstring},
	{Name: "abbreviation", Match: MatchAbbreviation},
	{Name: "fuzzy", Match: MatchFuzzy},
	{Name: "subsequence", Match: MatchSubsequence},
}

// Rank runs text through the cascade. An empty query never matches.
func Rank(text, query string) (Match, bool) {
	if query == "" {
		return Match{}, false
	}
	for _, strategy := range Strategies {
		if m, ok := strategy.Match(text, query); ok {
			return m, true
		}
	}
	return Match{}, false
}

// MatchExact matches when text equals query, ignoring case.
func MatchExact(text, query string) (Match, bool) {
	t, q := fold(text), fold(query)
	if len(q) == 0 || !slices.Equal(t, q) {
		return Match{}, false
	}
	return Match{Score: exactScore, Indices: span(0, len(t))}, true
}

// MatchPrefix matches when text starts with query, ignoring case. Shorter
// texts score higher.
func MatchPrefix(text, query string) (Match, bool) {
	t, q := fold(text), fold(query)
	if len(q) == 0 || len(q) > len(t) || !slices.Equal(t[:len(q)], q) {
		return Match{}, false
	}
	return Match{
		Score:   prefixScore + max(0, 100-len(t)),
		Indices: span(0, len(q)),
	}, true
}

// MatchSubstring matches when query occurs anywhere in text. Earlier
// occurrences score higher.
func MatchSubstring(text, query string) (Match, bool) {
	t, q := fold(text), fold(query)
	pos := indexRunes(t, q)
	if len(q) == 0 || pos < 0 {
		return Match{}, false
	}
	return Match{
		Score:   capSecondary(150 + max(0, 50-pos)),
		Indices: span(pos, pos+len(q)),
	}, true
}

// MatchAbbreviation matches query against word starts: the first rune,
// runes following a separator, and upper-case runes.
func MatchAbbreviation(text, query string) (Match, bool) {
	q := fold(query)
	if len(q) == 0 {
		return Match{}, false
	}

	indices := make([]int, 0, len(q))
	qi := 0
	prevWasSeparator := true
	for i, r := range []rune(text) {
		if qi == len(q) {
			break
		}
		if (prevWasSeparator || unicode.IsUpper(r)) && unicode.ToLower(r) == q[qi] {
			indices = append(indices, i)
			qi++
		}
		prevWasSeparator = isSeparator(r)
	}

	if qi != len(q) {
		return Match{}, false
	}
	return Match{Score: capSecondary(120 + 10*len(q)), Indices: indices}, true
}

// MatchFuzzy delegates to sahilm/fuzzy, converting its byte offsets to
// rune offsets.
func MatchFuzzy(text, query string) (Match, bool) {
	if query == "" {
		return Match{}, false
	}
	matches := fuzzy.Find(query, []string{text})
	if len(matches) == 0 {
		return Match{}, false
	}

	runeAt := make(map[int]int, len(text))
	n := 0
	for b := range text {
		runeAt[b] = n
		n++
	}

	indices := make([]int, 0, len(matches[0].MatchedIndexes))
	last := -1
	for _, b := range matches[0].MatchedIndexes {
		r, ok := runeAt[b]
		if !ok || r <= last {
			continue
		}
		indices = append(indices, r)
		last = r
	}
	return Match{Score: capSecondary(matches[0].Score), Indices: indices}, true
}

// MatchSubsequence matches when the query runes appear in order in text.
// Adjacent hits and early first hits score higher.
func MatchSubsequence(text, query string) (Match, bool) {
	t, q := fold(text), fold(query)
	if len(q) == 0 {
		return Match{}, false
	}

	indices := make([]int, 0, len(q))
	qi := 0
	for i, r := range t {
		if qi == len(q) {
			break
		}
		if r == q[qi] {
			indices = append(indices, i)
			qi++
		}
	}
	if qi != len(q) {
		return Match{}, false
	}

	score := 50 + max(0, 20-indices[0])
	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1]+1 {
			score += 10
		}
	}
	return Match{Score: capSecondary(score), Indices: indices}, true
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || r == ' ' || r == '/'
}

func capSecondary(score int) int {
	return min(score, maxSecondaryScore)
}

// fold lower-cases rune by rune so offsets stay aligned with the original.
func fold(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func span(from, to int) []int {
	indices := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		indices = append(indices, i)
	}
	return indices
}
