package classify

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// Matcher decides whether text contains any of a set of terms. Matching is
// two-tier: exact word-boundary phrase search first, then fuzzy matching on
// individual words to catch typos and abbreviations ("Wiliamsburg",
// "astorai") that exact search would miss.
type Matcher struct {
	threshold int
}

// NewMatcher creates a matcher with the given fuzzy similarity threshold on a
// 0-100 scale.
func NewMatcher(threshold int) *Matcher {
	return &Matcher{threshold: threshold}
}

var (
	boundaryCache   = make(map[string]*regexp.Regexp)
	boundaryCacheMu sync.RWMutex

	punctRE = regexp.MustCompile(`[^\w\s]`)
)

// boundaryPattern returns a cached word-boundary regexp for a lowercased term.
func boundaryPattern(term string) *regexp.Regexp {
	boundaryCacheMu.RLock()
	re, ok := boundaryCache[term]
	boundaryCacheMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
	boundaryCacheMu.Lock()
	boundaryCache[term] = re
	boundaryCacheMu.Unlock()
	return re
}

// MatchAny reports whether text matches any of the given terms and returns
// the configured term that matched. Terms are tried longest first so that
// multi-word phrases win over fragments that could be substrings of them.
func (m *Matcher) MatchAny(text string, terms []string) (bool, string) {
	if len(terms) == 0 {
		return false, ""
	}

	textLower := strings.ToLower(text)

	sorted := make([]string, len(terms))
	for i, t := range terms {
		sorted[i] = strings.ToLower(t)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	// Exact tier: word-boundary substring search, first hit wins.
	for _, term := range sorted {
		if boundaryPattern(term).MatchString(textLower) {
			return true, term
		}
	}

	// Fuzzy tier: single-word terms against punctuation-stripped tokens.
	words := strings.Fields(textLower)
	for _, term := range sorted {
		if strings.Contains(term, " ") {
			continue
		}
		for _, word := range words {
			clean := punctRE.ReplaceAllString(word, "")
			// The length guards keep unrelated short words from matching.
			if len(clean) < 3 || abs(len(clean)-len(term)) > 2 {
				continue
			}
			if similarity(clean, term) >= m.threshold {
				return true, term
			}
		}
	}

	return false, ""
}

// similarity is a normalized edit-similarity ratio on a 0-100 scale.
func similarity(a, b string) int {
	if a == b {
		return 100
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
