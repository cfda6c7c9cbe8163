package text

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanText(t *testing.T) {
	doc := NewTokenizer(false).Tokenize("d", "the  New York   City marathon")

	span := doc.Span(1, 4)
	assert.Equal(t, "New York   City", span.String())
	assert.Equal(t, "new york city", span.Lemma())
	assert.Equal(t, 3, span.Len())
	assert.Equal(t, len("New York City"), span.CharLen(), "whitespace runs count once")

	sub := span.Sub(1, 3)
	assert.Equal(t, "York   City", sub.String())
	assert.Equal(t, 2, sub.Start())
	assert.Equal(t, 4, sub.End())
}

func TestSpanCharLen(t *testing.T) {
	doc := NewTokenizer(false).Tokenize("d", "café\n\n au  lait, s'il vous plaît")

	assert.Equal(t, len([]rune("café au")), doc.Span(0, 2).CharLen())
	assert.Equal(t, len([]rune("café au lait,")), doc.Span(0, 4).CharLen())
	assert.Zero(t, Span{}.CharLen())
}

func TestSpanSubClamps(t *testing.T) {
	doc := NewTokenizer(false).Tokenize("d", "a b c")

	assert.Equal(t, "a b c", doc.Span(-1, 10).String())
	assert.True(t, doc.Span(2, 1).IsEmpty())
	assert.Equal(t, "", Span{}.String())
	assert.Equal(t, "", Span{}.Lemma())
}

func TestIsUpper(t *testing.T) {
	assert.True(t, IsUpper("PARIS"))
	assert.True(t, IsUpper("U.S.A"))
	assert.False(t, IsUpper("Paris"))
	assert.False(t, IsUpper("123"))
	assert.False(t, IsUpper("東京"))
}

func TestAttachConcurrent(t *testing.T) {
	doc := NewTokenizer(false).Tokenize("d", "one two three four")

	var wg sync.WaitGroup
	for i := 0; i < doc.Len(); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc.Attach("WORD", doc.Span(i, i+1), map[string]any{"i": i})
		}(i)
	}
	wg.Wait()
	doc.Attach("PAIR", doc.Span(0, 2), nil)

	all := doc.Annotations("")
	require.Len(t, all, 5)
	assert.Equal(t, "PAIR", all[0].Type, "longer span sorts first at equal start")
	assert.NotEmpty(t, all[0].ID)
	assert.NotNil(t, all[0].Attrs)

	words := doc.Annotations("WORD")
	require.Len(t, words, 4)
	for i, a := range words {
		assert.Equal(t, i, a.Span.Start())
	}
}
