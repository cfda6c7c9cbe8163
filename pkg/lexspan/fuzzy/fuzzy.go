// Package fuzzy finds approximate multi-word lexicon matches: token sequences
// within a bounded token edit distance of a lexicon key.
//
// Scoring runs on the generic viterbi engine. A span scores through an exact
// lexicon match when there is one; otherwise multi-word keys sharing the
// span's first or last token are compared by token Levenshtein distance, and
// the closest candidate within the bound scores p/(0.1+d).
package fuzzy

import (
	"math"
	"strings"
	"unicode"

	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
	"github.com/cognicore/lexspan/pkg/lexspan/metrics"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
	"github.com/cognicore/lexspan/pkg/lexspan/viterbi"
)

// distanceOffset keeps the score finite at distance zero.
const distanceOffset = 0.1

// Options tunes an Annotator.
type Options struct {
	// AnnotationType labels attached annotations. Defaults to
	// lexicon.DefaultAnnotationType.
	AnnotationType string
}

// Annotator attaches approximate lexicon matches to documents. It is safe for
// concurrent use once built; the candidate indices never change.
type Annotator struct {
	lex            lexicon.Lexicon
	maxDistance    int
	annotationType string

	prefix map[string][][]string
	suffix map[string][][]string

	engine *viterbi.Engine[text.Span, lexicon.Entry]
}

// New indexes the multi-word keys of lex. Negative distances are treated as
// zero. Keys added to lex afterwards are matched exactly but never fuzzily.
func New(lex lexicon.Lexicon, maxDistance int, opts Options) *Annotator {
	if maxDistance < 0 {
		maxDistance = 0
	}
	if opts.AnnotationType == "" {
		opts.AnnotationType = lexicon.DefaultAnnotationType
	}
	lex = lexicon.OrEmpty(lex)

	a := &Annotator{
		lex:            lex,
		maxDistance:    maxDistance,
		annotationType: opts.AnnotationType,
		prefix:         make(map[string][][]string),
		suffix:         make(map[string][][]string),
	}
	for key := range lex.Keys() {
		words := strings.Fields(key)
		if len(words) < 2 {
			continue
		}
		a.prefix[words[0]] = append(a.prefix[words[0]], words)
		a.suffix[words[len(words)-1]] = append(a.suffix[words[len(words)-1]], words)
	}

	// An empty lexicon still needs a positive bound; zero means unbounded.
	size := max(lex.MaxTokenLength()+maxDistance, 1)
	a.engine = viterbi.New[text.Span, lexicon.Entry](size, a.ScoreSpan)
	return a
}

// MaxDistance reports the edit distance bound.
func (a *Annotator) MaxDistance() int { return a.maxDistance }

// MaxSpanSize reports the longest span, in tokens, the engine considers.
func (a *Annotator) MaxSpanSize() int { return a.engine.MaxSpanSize() }

// ScoreSpan returns the entry span approximates and its score. Spans with no
// acceptable candidate return an empty entry and zero.
func (a *Annotator) ScoreSpan(span text.Span) (lexicon.Entry, float64) {
	if entries := a.lex.Match(span); len(entries) > 0 {
		return entries[0], entries[0].Probability
	}
	n := span.Len()
	if n <= 2 {
		return lexicon.Entry{}, 0
	}

	var (
		best     []string
		bestDist = math.Inf(1)
	)
	for _, cand := range a.candidates(span) {
		if len(cand) > n {
			continue
		}
		if !a.covers(span, cand) {
			metrics.FuzzyCandidatesTotal.WithLabelValues(metrics.OutcomePrefiltered).Inc()
			continue
		}
		d := a.distance(span, cand)
		if d > float64(a.maxDistance) {
			metrics.FuzzyCandidatesTotal.WithLabelValues(metrics.OutcomeOverBudget).Inc()
			continue
		}
		metrics.FuzzyCandidatesTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
		if d < bestDist {
			best, bestDist = cand, d
		}
	}
	if best == nil {
		return lexicon.Entry{}, 0
	}

	joined := strings.Join(best, " ")
	var p float64
	var tag string
	if entries := a.lex.Get(joined); len(entries) > 0 {
		p, tag = entries[0].Probability, entries[0].Tag
	}
	score := p / (distanceOffset + bestDist)
	return lexicon.Entry{Lemma: joined, Probability: score, Tag: tag, TokenLength: n}, score
}

// Find returns the approximate matches of span, left to right.
func (a *Annotator) Find(span text.Span) []lexicon.Match {
	var out []lexicon.Match
	for _, step := range a.engine.Run(span.Len(), span.Sub) {
		if strings.TrimSpace(step.Entry.Lemma) != "" {
			out = append(out, lexicon.NewMatch(step.Span, step.Entry))
		}
	}
	metrics.SentencesTotal.WithLabelValues(metrics.MatcherFuzzy).Inc()
	metrics.MatchesTotal.WithLabelValues(metrics.MatcherFuzzy).Add(float64(len(out)))
	return out
}

// Annotate runs the matcher over every sentence of doc and returns the number
// of annotations attached.
func (a *Annotator) Annotate(doc *text.Document) int {
	attached := 0
	for _, sentence := range doc.Sentences() {
		metrics.SentenceTokens.Observe(float64(sentence.Len()))
		a.engine.Annotate(sentence.Len(), sentence.Sub, func(step viterbi.Step[text.Span, lexicon.Entry]) {
			if strings.TrimSpace(step.Entry.Lemma) == "" {
				return
			}
			m := lexicon.NewMatch(step.Span, step.Entry)
			doc.Attach(a.annotationType, m.Span, m.Attributes())
			attached++
		})
		metrics.SentencesTotal.WithLabelValues(metrics.MatcherFuzzy).Inc()
	}
	metrics.MatchesTotal.WithLabelValues(metrics.MatcherFuzzy).Add(float64(attached))
	return attached
}

// forms returns the keys a token may be indexed under: its normalized
// surface, then its normalized lemma when that differs.
func (a *Annotator) forms(tok text.Token) []string {
	cs := a.lex.IsCaseSensitive()
	surface := lexicon.Normalize(tok.Text, cs)
	if tok.Lemma == "" {
		return []string{surface}
	}
	lemma := lexicon.Normalize(tok.Lemma, cs)
	if lemma == surface {
		return []string{surface}
	}
	return []string{surface, lemma}
}

// candidates unions the indexed keys sharing span's first or last token.
func (a *Annotator) candidates(span text.Span) [][]string {
	seen := make(map[string]struct{})
	var out [][]string
	collect := func(index map[string][][]string, tok text.Token) {
		for _, form := range a.forms(tok) {
			for _, words := range index[form] {
				k := strings.Join(words, " ")
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, words)
			}
		}
	}
	collect(a.prefix, span.Token(0))
	collect(a.suffix, span.Token(span.Len()-1))
	return out
}

// covers reports whether span's tokens consume enough of cand's words to
// possibly lie within the distance bound. Each span token consumes one
// occurrence of its surface, or failing that its lemma. Every unconsumed
// candidate word costs at least one edit.
func (a *Annotator) covers(span text.Span, cand []string) bool {
	remaining := make(map[string]int, len(cand))
	for _, w := range cand {
		remaining[w]++
	}
	unconsumed := len(cand)
	for _, tok := range span.Tokens() {
		for _, form := range a.forms(tok) {
			if remaining[form] > 0 {
				remaining[form]--
				unconsumed--
				break
			}
		}
	}
	// Rejecting on any unconsumed word would also drop single substitutions
	// such as "old broke car" for "old red car".
	return unconsumed <= a.maxDistance
}

// distance computes the token Levenshtein distance between span and cand,
// returning +Inf as soon as a whole row exceeds the bound. Substituting a
// punctuation token costs the row width, so punctuation is only ever
// inserted or deleted.
func (a *Annotator) distance(span text.Span, cand []string) float64 {
	width := len(cand) + 1
	prev := make([]int, width)
	cur := make([]int, width)
	for j := range prev {
		prev[j] = j
	}

	for i, tok := range span.Tokens() {
		cur[0] = i + 1
		rowMin := cur[0]
		forms := a.forms(tok)
		for j := 1; j < width; j++ {
			cost := 0
			if !equalsAny(forms, cand[j-1]) {
				cost = 1
				if tok.Punct || isPunct(cand[j-1]) {
					cost = width
				}
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > a.maxDistance {
			return math.Inf(1)
		}
		prev, cur = cur, prev
	}
	return float64(prev[width-1])
}

func equalsAny(forms []string, word string) bool {
	for _, f := range forms {
		if f == word {
			return true
		}
	}
	return false
}

func isPunct(word string) bool {
	for _, r := range word {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return word != ""
}
