package lexicon

import (
	"cmp"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// Unranked marks an entry without a meaningful probability.
const Unranked = -1.0

// Entry is one lexical item. Entries are values: a lexicon stores copies and
// never hands out references to its own.
type Entry struct {
	Lemma       string     // normalized key the entry is indexed under
	Probability float64    // in (0, 1] for ranked entries, coerced to 1 otherwise
	Tag         string     // optional label, e.g. "LOCATION"
	Constraint  Constraint // optional; nil always passes
	TokenLength int        // number of tokens; derived from the lemma when 0
}

// IsEmpty reports whether e is the "no match" entry.
func (e Entry) IsEmpty() bool { return e.Lemma == "" }

// Test reports whether the entry's constraint accepts span.
func (e Entry) Test(span text.Span) bool {
	return e.Constraint == nil || e.Constraint.Test(span)
}

func (e Entry) String() string {
	return fmt.Sprintf("%s(%g,%s,%d)", e.Lemma, e.Probability, e.Tag, e.TokenLength)
}

// Compare orders entries by descending probability, then by descending lemma
// length. It returns a negative number when a ranks before b.
func Compare(a, b Entry) int {
	if c := cmp.Compare(b.Probability, a.Probability); c != 0 {
		return c
	}
	return cmp.Compare(utf8.RuneCountInString(b.Lemma), utf8.RuneCountInString(a.Lemma))
}

// validate rejects entries that cannot be indexed.
func validate(e Entry) error {
	if strings.TrimSpace(e.Lemma) == "" {
		return fmt.Errorf("lexicon entry: blank lemma: %w", internalerr.ErrInvalidInput)
	}
	if e.TokenLength < 0 {
		return fmt.Errorf("lexicon entry %q: negative token length %d: %w", e.Lemma, e.TokenLength, internalerr.ErrInvalidInput)
	}
	return nil
}

// Match is a lexicon hit over a span of text.
type Match struct {
	Span          text.Span
	Score         float64
	MatchedString string
	Tag           string
}

// NewMatch builds a match from the entry that produced it.
func NewMatch(span text.Span, e Entry) Match {
	return Match{
		Span:          span,
		Score:         e.Probability,
		MatchedString: e.Lemma,
		Tag:           e.Tag,
	}
}

// Annotation attribute names set by the annotators.
const (
	AttrConfidence    = "confidence"
	AttrMatchedString = "matched_string"
	AttrTag           = "tag"
)

// DefaultAnnotationType is used when no annotation type is configured.
const DefaultAnnotationType = "LEXICON_MATCH"

// Attributes returns the annotation attributes for m.
func (m Match) Attributes() map[string]any {
	attrs := map[string]any{
		AttrConfidence:    m.Score,
		AttrMatchedString: m.MatchedString,
	}
	if m.Tag != "" {
		attrs[AttrTag] = m.Tag
	}
	return attrs
}
