package lexicon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// tokens tokenizes content with stemmed lemmas and returns a span over all of it.
func tokens(content string) text.Span {
	return text.NewTokenizer(true).Tokenize("test", content).All()
}

func newTrie(t *testing.T, caseSensitive bool, entries ...Entry) *Trie {
	t.Helper()
	lex := NewTrie(caseSensitive)
	require.NoError(t, lex.AddAll(entries...))
	return lex
}

func matchedStrings(ms []Match) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.MatchedString)
	}
	return out
}

func surfaces(ms []Match) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Span.String())
	}
	return out
}
