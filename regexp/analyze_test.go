package regexp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugeproblem/codesearch/index"
)

// trigramsOf returns the distinct 3-byte trigrams of s, as 3-char
// strings, matching the String() rendering of index.Query.
func trigramsOf(s string) map[string]bool {
	out := map[string]bool{}
	for i := 0; i+3 <= len(s); i++ {
		out[s[i:i+3]] = true
	}
	return out
}

func TestAnalyzeLiteralYieldsAndOfItsTrigrams(t *testing.T) {
	q, err := AnalyzeRegexp("hello")
	require.NoError(t, err)
	require.Equal(t, index.QAnd, q.Op)
	got := map[string]bool{}
	for _, tg := range q.Trigram {
		got[tg] = true
	}
	assert.Equal(t, trigramsOf("hello"), got)
}

func TestAnalyzeConcatOfLiteralsAnds(t *testing.T) {
	q, err := AnalyzeRegexp("foo.*bar")
	require.NoError(t, err)
	// foo.*bar must require both "foo" and "bar" trigrams, possibly
	// nested under further And/Or structure, but never allow a file
	// containing neither to pass the posting-list stage.
	all := collectTrigrams(q)
	assert.Contains(t, all, "foo")
	assert.Contains(t, all, "bar")
}

func TestAnalyzeShortPatternIsUnconstrained(t *testing.T) {
	q, err := AnalyzeRegexp("ab")
	require.NoError(t, err)
	assert.Equal(t, index.QueryAll, q)
}

func TestAnalyzeCaseInsensitiveLiteralExpandsCaseVariants(t *testing.T) {
	// A folded literal expands into the cross product of each rune's
	// case variants (see foldedExact), so the posting-list stage still
	// narrows candidates instead of degrading to a full scan.
	q, err := AnalyzeRegexp("(?i)cat")
	require.NoError(t, err)
	require.NotEqual(t, index.QueryAll, q)

	all := collectTrigrams(q)
	for _, variant := range []string{"cat", "caT", "cAt", "cAT", "Cat", "CaT", "CAt", "CAT"} {
		assert.Contains(t, all, variant)
	}
}

func TestAnalyzeCaseInsensitiveLiteralFallsBackWhenTooManyVariants(t *testing.T) {
	// A long literal whose case-variant cross product would exceed
	// maxFoldExpand falls back to an unconstrained match rather than
	// building a combinatorial explosion of trigram alternatives.
	q, err := AnalyzeRegexp("(?i)abcdefghijklmnopqrst")
	require.NoError(t, err)
	assert.Equal(t, index.QueryAll, q)
}

func collectTrigrams(q *index.Query) map[string]bool {
	out := map[string]bool{}
	var walk func(q *index.Query)
	walk = func(q *index.Query) {
		if q == nil {
			return
		}
		for _, tg := range q.Trigram {
			out[tg] = true
		}
		for _, sub := range q.Sub {
			walk(sub)
		}
	}
	walk(q)
	return out
}
