// Package lexicon stores lexicon entries and finds them in tokenized text.
//
// Two storage variants share one contract: Trie keeps entries in memory,
// Disk writes them through to a kv.Store. Both are populated first and then
// shared read-only; every read method is safe for concurrent use.
//
// Matching picks one of two strategies per lexicon:
//   - longest-match-first scanning for unranked lexicons
//   - Viterbi segmentation maximizing summed probability once any entry
//     carries a probability in (0, 1]
package lexicon

import (
	"iter"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// Lexicon is a keyed multimap from normalized lemma to entries.
type Lexicon interface {
	// Add validates and indexes one entry.
	Add(e Entry) error
	// AddAll indexes entries in order, stopping at the first invalid one.
	AddAll(entries ...Entry) error

	// Contains reports whether word is a key.
	Contains(word string) bool
	// Get returns the entries stored under word, best first.
	Get(word string) []Entry
	// Match returns the entries applying to span, best first.
	Match(span text.Span) []Entry
	// Test reports whether any entry applies to span.
	Test(span text.Span) bool
	// IsPrefixMatch reports whether s is a key or a prefix of one.
	IsPrefixMatch(s string) bool

	// Keys iterates keys in ascending order.
	Keys() iter.Seq[string]
	Size() int

	MaxTokenLength() int
	MaxLemmaLength() int
	IsCaseSensitive() bool
	IsProbabilistic() bool
}

// storage is what a variant provides to base. Calls are made with base.mu
// held: exclusively for insert, shared otherwise. lookup returns a slice the
// caller owns.
type storage interface {
	lookup(key string) []Entry
	insert(key string, e Entry) error
	hasPrefix(key string) bool
	keys() []string
	size() int
}

// base implements the Lexicon contract over a storage variant.
type base struct {
	st            storage
	caseSensitive bool

	// refresh, when set, picks up state committed through other handles
	// before a read. It takes mu itself.
	refresh func()

	mu             sync.RWMutex
	probabilistic  bool
	maxTokenLength int
	maxLemmaLength int
}

func (b *base) normalize(s string) string {
	return Normalize(s, b.caseSensitive)
}

func (b *base) sync() {
	if b.refresh != nil {
		b.refresh()
	}
}

// Add validates and indexes one entry.
func (b *base) Add(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.add(e)
}

// AddAll indexes entries in order, stopping at the first invalid one.
func (b *base) AddAll(entries ...Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range entries {
		if err := b.add(e); err != nil {
			return err
		}
	}
	return nil
}

func (b *base) add(e Entry) error {
	if err := validate(e); err != nil {
		return err
	}

	key := b.normalize(e.Lemma)
	e.Lemma = key
	if e.TokenLength == 0 {
		e.TokenLength = len(strings.Fields(key))
	}
	if e.Probability > 0 && e.Probability <= 1 {
		b.probabilistic = true
	} else {
		e.Probability = 1.0
	}

	if err := b.st.insert(key, e); err != nil {
		return err
	}

	b.maxTokenLength = max(b.maxTokenLength, e.TokenLength)
	b.maxLemmaLength = max(b.maxLemmaLength, utf8.RuneCountInString(key))
	return nil
}

// Contains reports whether word is a key.
func (b *base) Contains(word string) bool {
	b.sync()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.st.lookup(b.normalize(word))) > 0
}

// Get returns the entries stored under word, best first.
func (b *base) Get(word string) []Entry {
	b.sync()
	b.mu.RLock()
	entries := b.st.lookup(b.normalize(word))
	b.mu.RUnlock()

	slices.SortStableFunc(entries, Compare)
	return entries
}

// Match returns the entries applying to span, best first.
//
// The surface form is tried first. A case-sensitive lexicon gives up on an
// all-uppercase surface instead of retrying the lemma, so acronyms don't
// match ordinary words.
func (b *base) Match(span text.Span) []Entry {
	if span.IsEmpty() {
		return nil
	}

	b.sync()
	b.mu.RLock()
	entries := b.st.lookup(b.normalize(span.String()))
	if len(entries) == 0 {
		if b.caseSensitive && span.IsUpper() {
			b.mu.RUnlock()
			return nil
		}
		entries = b.st.lookup(b.normalize(span.Lemma()))
	}
	b.mu.RUnlock()

	out := entries[:0]
	for _, e := range entries {
		if e.Test(span) {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, Compare)
	return out
}

// Test reports whether any entry applies to span.
func (b *base) Test(span text.Span) bool {
	return len(b.Match(span)) > 0
}

// IsPrefixMatch reports whether s equals, or is a proper prefix of, the next
// key at or after it in key order.
func (b *base) IsPrefixMatch(s string) bool {
	key := b.normalize(s)
	if key == "" {
		return false
	}
	b.sync()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.hasPrefix(key)
}

// Keys iterates keys in ascending order over a snapshot taken at call time.
func (b *base) Keys() iter.Seq[string] {
	b.sync()
	b.mu.RLock()
	keys := b.st.keys()
	b.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Size returns the number of distinct keys.
func (b *base) Size() int {
	b.sync()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.size()
}

func (b *base) MaxTokenLength() int {
	b.sync()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxTokenLength
}

func (b *base) MaxLemmaLength() int {
	b.sync()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxLemmaLength
}

func (b *base) IsCaseSensitive() bool { return b.caseSensitive }

func (b *base) IsProbabilistic() bool {
	b.sync()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.probabilistic
}
