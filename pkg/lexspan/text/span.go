package text

import (
	"strings"
	"unicode"
)

// Span is a contiguous, read-only range of tokens [start, end) in a Document.
// The zero Span is empty and belongs to no document.
type Span struct {
	doc   *Document
	start int
	end   int
}

// Document returns the document the span belongs to.
func (s Span) Document() *Document { return s.doc }

// Start returns the absolute index of the first token.
func (s Span) Start() int { return s.start }

// End returns the absolute index one past the last token.
func (s Span) End() int { return s.end }

// Len returns the number of tokens covered by the span.
func (s Span) Len() int { return s.end - s.start }

// IsEmpty reports whether the span covers no tokens.
func (s Span) IsEmpty() bool { return s.doc == nil || s.end <= s.start }

// Token returns the i-th token of the span (relative index).
func (s Span) Token(i int) Token { return s.doc.tokens[s.start+i] }

// Tokens returns the tokens covered by the span. The slice aliases document
// storage and must not be modified.
func (s Span) Tokens() []Token {
	if s.IsEmpty() {
		return nil
	}
	return s.doc.tokens[s.start:s.end]
}

// Sub returns the span over the relative token range [start, end), clamped
// to s.
func (s Span) Sub(start, end int) Span {
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	if end < start {
		end = start
	}
	return Span{doc: s.doc, start: s.start + start, end: s.start + end}
}

// String returns the surface text of the span, including the original
// whitespace between tokens.
func (s Span) String() string {
	if s.IsEmpty() {
		return ""
	}
	first := s.doc.tokens[s.start]
	last := s.doc.tokens[s.end-1]
	return s.doc.Content[first.Start:last.End]
}

// Lemma returns the token lemmas joined by a single space.
func (s Span) Lemma() string {
	switch s.Len() {
	case 0:
		return ""
	case 1:
		return s.Token(0).Form()
	}
	var b strings.Builder
	for i, tok := range s.Tokens() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Form())
	}
	return b.String()
}

// CharLen returns the length in runes of the surface text with each run of
// whitespace counted as one space, the form lexicon keys are stored in.
func (s Span) CharLen() int {
	n, gap := 0, false
	for _, r := range s.String() {
		if unicode.IsSpace(r) {
			gap = true
			continue
		}
		if gap && n > 0 {
			n++
		}
		gap = false
		n++
	}
	return n
}

// IsUpper reports whether the surface text has at least one uppercase letter
// and no lowercase letters.
func (s Span) IsUpper() bool {
	return IsUpper(s.String())
}

// IsUpper reports whether str has at least one uppercase letter and no
// lowercase letters.
func IsUpper(str string) bool {
	hasUpper := false
	for _, r := range str {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	return hasUpper
}
