package lexicon

import (
	"github.com/cognicore/lexspan/pkg/lexspan/metrics"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// Annotator attaches one annotation per exact lexicon match, sentence by
// sentence.
type Annotator struct {
	lex            Lexicon
	annotationType string
}

// NewAnnotator creates an exact-match annotator. A nil lexicon matches
// nothing; an empty type falls back to DefaultAnnotationType.
func NewAnnotator(lex Lexicon, annotationType string) *Annotator {
	if annotationType == "" {
		annotationType = DefaultAnnotationType
	}
	return &Annotator{lex: OrEmpty(lex), annotationType: annotationType}
}

// Annotate matches every sentence of doc and returns the number of
// annotations attached.
func (a *Annotator) Annotate(doc *text.Document) int {
	attached := 0
	for _, sentence := range doc.Sentences() {
		metrics.SentenceTokens.Observe(float64(sentence.Len()))
		for _, m := range Find(a.lex, sentence) {
			doc.Attach(a.annotationType, m.Span, m.Attributes())
			attached++
		}
	}
	return attached
}
