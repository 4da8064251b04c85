package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchAnyExactTier(t *testing.T) {
	m := NewMatcher(80)

	tests := []struct {
		name      string
		text      string
		wantTerm  string
		terms     []string
		wantMatch bool
	}{
		{
			name:      "case insensitive phrase match",
			text:      "Sunny 1BR in EAST VILLAGE near Tompkins",
			terms:     []string{"east village"},
			wantMatch: true,
			wantTerm:  "east village",
		},
		{
			name:      "longest term preferred over substring term",
			text:      "right in the east village",
			terms:     []string{"village", "east village"},
			wantMatch: true,
			wantTerm:  "east village",
		},
		{
			name:      "word boundary prevents partial word hit",
			text:      "bless this apartment",
			terms:     []string{"les"},
			wantMatch: false,
		},
		{
			name:      "punctuation counts as a boundary",
			text:      "Astoria! Close to the N train",
			terms:     []string{"astoria"},
			wantMatch: true,
			wantTerm:  "astoria",
		},
		{
			name:      "no terms configured",
			text:      "anything at all",
			terms:     nil,
			wantMatch: false,
		},
		{
			name:      "terms are lowercased before matching",
			text:      "near greenpoint",
			terms:     []string{"Greenpoint"},
			wantMatch: true,
			wantTerm:  "greenpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, term := m.MatchAny(tt.text, tt.terms)
			assert.Equal(t, tt.wantMatch, matched)
			assert.Equal(t, tt.wantTerm, term)
		})
	}
}

func TestMatchAnyFuzzyTier(t *testing.T) {
	m := NewMatcher(80)

	tests := []struct {
		name      string
		text      string
		wantTerm  string
		terms     []string
		wantMatch bool
	}{
		{
			name:      "single dropped letter",
			text:      "1BR in willamsburg avail now",
			terms:     []string{"williamsburg"},
			wantMatch: true,
			wantTerm:  "williamsburg",
		},
		{
			name:      "typo with trailing punctuation",
			text:      "close to greenpoit, quiet block",
			terms:     []string{"greenpoint"},
			wantMatch: true,
			wantTerm:  "greenpoint",
		},
		{
			name:      "short tokens are never fuzzy matched",
			text:      "bk apartment",
			terms:     []string{"bke"},
			wantMatch: false,
		},
		{
			name:      "length difference guard rejects distant tokens",
			text:      "wburg apartment",
			terms:     []string{"williamsburg"},
			wantMatch: false,
		},
		{
			name:      "multi-word terms are skipped by the fuzzy tier",
			text:      "eastvillage studio",
			terms:     []string{"east village"},
			wantMatch: false,
		},
		{
			name:      "unrelated words below threshold",
			text:      "sunny charming studio",
			terms:     []string{"astoria"},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, term := m.MatchAny(tt.text, tt.terms)
			assert.Equal(t, tt.wantMatch, matched)
			assert.Equal(t, tt.wantTerm, term)
		})
	}
}

func TestMatchAnyThreshold(t *testing.T) {
	// "willamsburg" vs "williamsburg" is one edit over twelve characters,
	// a similarity of 92. A threshold above that must reject it.
	strict := NewMatcher(95)
	matched, _ := strict.MatchAny("willamsburg studio", []string{"williamsburg"})
	assert.False(t, matched)

	lenient := NewMatcher(80)
	matched, _ = lenient.MatchAny("willamsburg studio", []string{"williamsburg"})
	assert.True(t, matched)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, similarity("astoria", "astoria"))
	assert.Equal(t, 100, similarity("", ""))
	assert.Equal(t, 92, similarity("willamsburg", "williamsburg"))
	assert.Equal(t, 0, similarity("abc", "xyz"))
}
