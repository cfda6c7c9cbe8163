package lexicon

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
)

func TestRoundTrip(t *testing.T) {
	lex := newTrie(t, false, Entry{Lemma: "Old Car", Probability: 0.8, Tag: "VEHICLE", TokenLength: 2})

	got := lex.Match(tokens("old car"))
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Lemma: "old car", Probability: 0.8, Tag: "VEHICLE", TokenLength: 2}, got[0])
	assert.True(t, lex.IsProbabilistic())
	assert.True(t, lex.Contains("OLD CAR"))
}

func TestAddValidation(t *testing.T) {
	lex := NewTrie(false)

	tests := []struct {
		name  string
		entry Entry
	}{
		{"blank lemma", Entry{Lemma: "   "}},
		{"empty lemma", Entry{}},
		{"negative token length", Entry{Lemma: "car", TokenLength: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lex.Add(tt.entry)
			require.ErrorIs(t, err, internalerr.ErrInvalidInput)
		})
	}
	assert.Equal(t, 0, lex.Size())
	assert.Equal(t, 0, lex.MaxLemmaLength())
}

func TestProbabilityCoercion(t *testing.T) {
	lex := newTrie(t, false,
		Entry{Lemma: "unranked", Probability: Unranked},
		Entry{Lemma: "too big", Probability: 2.5, Tag: "X", TokenLength: 2},
		Entry{Lemma: "zero"},
	)
	assert.False(t, lex.IsProbabilistic())

	for _, w := range []string{"unranked", "too big", "zero"} {
		got := lex.Get(w)
		require.Len(t, got, 1, w)
		assert.Equal(t, 1.0, got[0].Probability, w)
	}
	assert.Equal(t, "X", lex.Get("too big")[0].Tag)

	require.NoError(t, lex.Add(Entry{Lemma: "ranked", Probability: 0.3}))
	assert.True(t, lex.IsProbabilistic())

	require.NoError(t, lex.Add(Entry{Lemma: "later", Probability: Unranked}))
	assert.True(t, lex.IsProbabilistic(), "probabilistic flag never reverts")
}

func TestDerivedMetadata(t *testing.T) {
	lex := newTrie(t, false,
		Entry{Lemma: "new  york   city"},
		Entry{Lemma: "café", TokenLength: 4},
	)

	assert.Equal(t, 3, lex.Get("new york city")[0].TokenLength)
	assert.Equal(t, 4, lex.MaxTokenLength())
	assert.Equal(t, utf8.RuneCountInString("new york city"), lex.MaxLemmaLength())
}

func TestHomonymOrdering(t *testing.T) {
	lex := newTrie(t, false,
		Entry{Lemma: "bank", Probability: 0.3, Tag: "FINANCE"},
		Entry{Lemma: "bank", Probability: 0.7, Tag: "RIVER"},
	)

	got := lex.Match(tokens("Bank"))
	require.Len(t, got, 2)
	assert.Equal(t, "RIVER", got[0].Tag)
	assert.Equal(t, "FINANCE", got[1].Tag)
	assert.Equal(t, 1, lex.Size())
}

func TestCompare(t *testing.T) {
	entries := []Entry{
		{Lemma: "ny", Probability: 0.5},
		{Lemma: "new york", Probability: 0.5},
		{Lemma: "york", Probability: 0.9},
	}
	slices.SortStableFunc(entries, Compare)
	assert.Equal(t, []string{"york", "new york", "ny"},
		[]string{entries[0].Lemma, entries[1].Lemma, entries[2].Lemma})
}

func TestCaseInsensitiveMatch(t *testing.T) {
	lex := newTrie(t, false, Entry{Lemma: "paris", Tag: "CITY"})

	assert.True(t, lex.Test(tokens("Paris")))
	assert.True(t, lex.Test(tokens("PARIS")))
	assert.False(t, lex.IsCaseSensitive())
}

func TestCaseSensitiveMatch(t *testing.T) {
	lex := newTrie(t, true, Entry{Lemma: "Paris", Tag: "CITY"})

	assert.True(t, lex.Test(tokens("Paris")))
	assert.False(t, lex.Test(tokens("PARIS")))
	assert.False(t, lex.Test(tokens("paris")))
	assert.True(t, lex.IsCaseSensitive())
}

func TestUppercaseSkipsLemmaRetry(t *testing.T) {
	lex := newTrie(t, true, Entry{Lemma: "run"})

	assert.True(t, lex.Test(tokens("Running")), "lemma retry finds the stem")
	assert.False(t, lex.Test(tokens("RUNNING")), "all-uppercase surface fails fast")
}

func TestConstraintFiltersEntries(t *testing.T) {
	lex := newTrie(t, false,
		Entry{Lemma: "apple", Tag: "ORG", Constraint: MustConstraint("title")},
		Entry{Lemma: "apple", Probability: Unranked, Tag: "FRUIT", Constraint: MustConstraint("lower")},
	)

	got := lex.Match(tokens("Apple"))
	require.Len(t, got, 1)
	assert.Equal(t, "ORG", got[0].Tag)

	got = lex.Match(tokens("apple"))
	require.Len(t, got, 1)
	assert.Equal(t, "FRUIT", got[0].Tag)

	assert.Len(t, lex.Get("apple"), 2, "Get does not apply constraints")
}

func TestIsPrefixMatch(t *testing.T) {
	lex := newTrie(t, false, Entry{Lemma: "new york"}, Entry{Lemma: "new york city"})

	tests := []struct {
		input string
		want  bool
	}{
		{"new", true},
		{"New Y", true},
		{"new york", true},
		{"new york city", true},
		{"new york city hall", false},
		{"york", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lex.IsPrefixMatch(tt.input), tt.input)
	}
}

func TestKeysSorted(t *testing.T) {
	lex := newTrie(t, false,
		Entry{Lemma: "zebra"},
		Entry{Lemma: "apple pie"},
		Entry{Lemma: "apple"},
		Entry{Lemma: "Äpfel"},
	)

	assert.Equal(t, []string{"apple", "apple pie", "zebra", "äpfel"}, slices.Collect(lex.Keys()))
	assert.Equal(t, 4, lex.Size())

	var first []string
	for k := range lex.Keys() {
		first = append(first, k)
		break
	}
	assert.Equal(t, []string{"apple"}, first)
}

func TestConcurrentPopulation(t *testing.T) {
	defer goleak.VerifyNone(t)

	const workers, perWorker = 16, 50
	lex := NewTrie(false)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				words := make([]string, 0, 1+i%4)
				for j := 0; j <= i%4; j++ {
					words = append(words, fmt.Sprintf("w%dt%d", w, i))
				}
				lemma := fmt.Sprint(words)
				assert.NoError(t, lex.Add(Entry{Lemma: lemma[1 : len(lemma)-1]}))
			}
		}(w)
	}
	wg.Wait()

	want := make(map[string]bool)
	maxLemma := 0
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			words := make([]string, 0, 1+i%4)
			for j := 0; j <= i%4; j++ {
				words = append(words, fmt.Sprintf("w%dt%d", w, i))
			}
			lemma := fmt.Sprint(words)
			lemma = lemma[1 : len(lemma)-1]
			want[lemma] = true
			maxLemma = max(maxLemma, len(lemma))
		}
	}

	got := slices.Collect(lex.Keys())
	assert.Len(t, got, workers*perWorker)
	for _, k := range got {
		assert.True(t, want[k], k)
	}
	assert.Equal(t, workers*perWorker, lex.Size())
	assert.Equal(t, 4, lex.MaxTokenLength())
	assert.Equal(t, maxLemma, lex.MaxLemmaLength())
}

func TestEmptyLexicon(t *testing.T) {
	lex := Empty()

	require.ErrorIs(t, lex.Add(Entry{Lemma: "x"}), internalerr.ErrReadOnly)
	assert.Equal(t, Empty(), OrEmpty(nil))
	assert.Empty(t, Find(lex, tokens("anything at all")))
	assert.Empty(t, slices.Collect(lex.Keys()))
	assert.False(t, lex.IsPrefixMatch("a"))
}
