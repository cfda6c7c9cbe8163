package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/surgebase/porter2"
)

// Tokenizer turns raw content into a tokenized Document.
type Tokenizer interface {
	Tokenize(id, content string) *Document
}

// RuleTokenizer is a rule-based tokenizer: runs of letters and digits (with
// inner hyphens and apostrophes) form words, every other non-space rune is a
// punctuation token. Sentences end after '.', '!' or '?' tokens.
type RuleTokenizer struct {
	stem bool
}

// NewTokenizer creates a rule-based tokenizer. When stem is true, word lemmas
// are lowercased Porter2 stems; otherwise lemmas are the lowercased surface.
func NewTokenizer(stem bool) *RuleTokenizer {
	return &RuleTokenizer{stem: stem}
}

// Tokenize splits content into tokens and sentences.
func (t *RuleTokenizer) Tokenize(id, content string) *Document {
	var (
		tokens []Token
		ends   []int
	)

	wordStart := -1
	flush := func(end int) {
		if wordStart < 0 {
			return
		}
		word := content[wordStart:end]
		// Trailing joiners belong to the following punctuation, not the word.
		trimmed := strings.TrimRight(word, "-'")
		tokens = append(tokens, t.word(trimmed, wordStart))
		for pos := wordStart + len(trimmed); pos < end; {
			r, size := utf8.DecodeRuneInString(content[pos:])
			tokens = append(tokens, punct(string(r), pos, pos+size))
			pos += size
		}
		wordStart = -1
	}

	for pos, r := range content {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r):
			if wordStart < 0 {
				wordStart = pos
			}
		case (r == '-' || r == '\'') && wordStart >= 0:
			// joiner inside a word, e.g. "gpt-4", "o'neil"
		default:
			flush(pos)
			if unicode.IsSpace(r) {
				continue
			}
			size := utf8.RuneLen(r)
			tokens = append(tokens, punct(string(r), pos, pos+size))
			if r == '.' || r == '!' || r == '?' {
				ends = append(ends, len(tokens))
			}
		}
	}
	flush(len(content))

	return NewDocument(id, content, tokens, ends)
}

func (t *RuleTokenizer) word(surface string, start int) Token {
	lemma := strings.ToLower(surface)
	if t.stem && isAlpha(lemma) {
		lemma = porter2.Stem(lemma)
	}
	return Token{
		Text:  surface,
		Lemma: lemma,
		Start: start,
		End:   start + len(surface),
	}
}

func punct(s string, start, end int) Token {
	return Token{Text: s, Lemma: s, Start: start, End: end, Punct: true}
}

// isAlpha returns true if the word contains only letters.
// Mixed tokens like "gpt-4" or "python3" are left unstemmed.
func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
