package lexicon

import (
	"iter"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

type empty struct{}

var emptyLexicon Lexicon = empty{}

// Empty returns the lexicon that contains and matches nothing. Higher layers
// fall back to it when a configured lexicon cannot be resolved.
func Empty() Lexicon { return emptyLexicon }

// OrEmpty returns lex, or Empty when lex is nil.
func OrEmpty(lex Lexicon) Lexicon {
	if lex == nil {
		return emptyLexicon
	}
	return lex
}

func (empty) Add(Entry) error           { return internalerr.ErrReadOnly }
func (empty) AddAll(...Entry) error     { return internalerr.ErrReadOnly }
func (empty) Contains(string) bool      { return false }
func (empty) Get(string) []Entry        { return nil }
func (empty) Match(text.Span) []Entry   { return nil }
func (empty) Test(text.Span) bool       { return false }
func (empty) IsPrefixMatch(string) bool { return false }
func (empty) Keys() iter.Seq[string]    { return func(func(string) bool) {} }
func (empty) Size() int                 { return 0 }
func (empty) MaxTokenLength() int       { return 0 }
func (empty) MaxLemmaLength() int       { return 0 }
func (empty) IsCaseSensitive() bool     { return false }
func (empty) IsProbabilistic() bool     { return false }
