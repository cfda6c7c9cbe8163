package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

func TestAnnotatorAttachesMatches(t *testing.T) {
	lex := newTrie(t, false,
		Entry{Lemma: "new york", Probability: 0.9, Tag: "CITY"},
		Entry{Lemma: "paris", Probability: 0.8, Tag: "CITY"},
	)
	doc := text.NewTokenizer(true).Tokenize("d", "I moved from Paris. Now I live in New York!")

	n := NewAnnotator(lex, "").Annotate(doc)
	require.Equal(t, 2, n)

	anns := doc.Annotations(DefaultAnnotationType)
	require.Len(t, anns, 2)
	assert.Equal(t, "Paris", anns[0].Span.String())
	assert.Equal(t, 0.8, anns[0].Attrs[AttrConfidence])
	assert.Equal(t, "paris", anns[0].Attrs[AttrMatchedString])
	assert.Equal(t, "CITY", anns[0].Attrs[AttrTag])
	assert.Equal(t, "New York", anns[1].Span.String())
}

func TestAnnotatorNilLexicon(t *testing.T) {
	doc := text.NewTokenizer(false).Tokenize("d", "nothing to see")

	assert.Equal(t, 0, NewAnnotator(nil, "X").Annotate(doc))
	assert.Empty(t, doc.Annotations(""))
}
