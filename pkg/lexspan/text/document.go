package text

import (
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Document is tokenized text plus the annotations attached to it.
//
// Tokens and sentences are fixed at construction. Attach may be called from
// several goroutines; everything else is read-only.
type Document struct {
	ID      string
	Content string

	tokens    []Token
	sentences []Span

	mu          sync.Mutex
	annotations []Annotation
}

// Annotation is a typed span with attributes.
type Annotation struct {
	ID    string
	Type  string
	Span  Span
	Attrs map[string]any
}

// NewDocument wraps already tokenized content. sentenceEnds holds the
// exclusive end token index of each sentence; when empty the whole document
// is a single sentence.
func NewDocument(id, content string, tokens []Token, sentenceEnds []int) *Document {
	d := &Document{ID: id, Content: content, tokens: tokens}

	start := 0
	for _, end := range sentenceEnds {
		if end <= start || end > len(tokens) {
			continue
		}
		d.sentences = append(d.sentences, Span{doc: d, start: start, end: end})
		start = end
	}
	if start < len(tokens) {
		d.sentences = append(d.sentences, Span{doc: d, start: start, end: len(tokens)})
	}
	return d
}

// Len returns the number of tokens.
func (d *Document) Len() int { return len(d.tokens) }

// Tokens returns the document tokens. The slice must not be modified.
func (d *Document) Tokens() []Token { return d.tokens }

// Span returns the span over the absolute token range [start, end).
func (d *Document) Span(start, end int) Span {
	return d.All().Sub(start, end)
}

// All returns a span over every token of the document.
func (d *Document) All() Span {
	return Span{doc: d, start: 0, end: len(d.tokens)}
}

// Sentences returns the sentence spans in document order.
func (d *Document) Sentences() []Span {
	return d.sentences
}

// Attach creates an annotation of the given type over span and records it on
// the document.
func (d *Document) Attach(typ string, span Span, attrs map[string]any) Annotation {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	a := Annotation{
		ID:    ulid.Make().String(),
		Type:  typ,
		Span:  span,
		Attrs: attrs,
	}

	d.mu.Lock()
	d.annotations = append(d.annotations, a)
	d.mu.Unlock()
	return a
}

// Annotations returns the attached annotations ordered by span start, then by
// longer span first. An empty type returns every annotation.
func (d *Document) Annotations(typ string) []Annotation {
	d.mu.Lock()
	out := make([]Annotation, 0, len(d.annotations))
	for _, a := range d.annotations {
		if typ == "" || a.Type == typ {
			out = append(out, a)
		}
	}
	d.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Span.start != out[j].Span.start {
			return out[i].Span.start < out[j].Span.start
		}
		return out[i].Span.end > out[j].Span.end
	})
	return out
}
