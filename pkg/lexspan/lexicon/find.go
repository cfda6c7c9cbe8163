package lexicon

import (
	"github.com/cognicore/lexspan/pkg/lexspan/metrics"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
	"github.com/cognicore/lexspan/pkg/lexspan/viterbi"
)

// Find locates lexicon matches in span: Viterbi segmentation for
// probabilistic lexicons, longest-match-first otherwise.
func Find(lex Lexicon, span text.Span) []Match {
	if lex.IsProbabilistic() {
		return FindViterbi(lex, span)
	}
	return FindLongestFirst(lex, span)
}

// best returns the top-ranked entry applying to span.
func best(lex Lexicon, span text.Span) (Entry, bool) {
	entries := lex.Match(span)
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[0], true
}

func isPrefix(lex Lexicon, span text.Span) bool {
	return lex.IsPrefixMatch(span.String()) || lex.IsPrefixMatch(span.Lemma())
}

// FindLongestFirst scans left to right. At each token it grows a window while
// the window is still a key prefix and within the longest lemma, keeping the
// best full match of the longest window that had one. Without a multi-token
// hit it falls back to the single token.
func FindLongestFirst(lex Lexicon, span text.Span) []Match {
	var out []Match
	n := span.Len()
	maxLen := lex.MaxLemmaLength()

	for i := 0; i < n; {
		single := span.Sub(i, i+1)

		var (
			found bool
			hit   Match
		)
		if isPrefix(lex, single) {
			for j := i + 1; j <= n; j++ {
				window := span.Sub(i, j)
				if window.CharLen() > maxLen || !isPrefix(lex, window) {
					break
				}
				if e, ok := best(lex, window); ok {
					hit, found = NewMatch(window, e), true
				}
			}
		}

		if found {
			out = append(out, hit)
			i += hit.Span.Len()
			continue
		}
		if e, ok := best(lex, single); ok {
			out = append(out, NewMatch(single, e))
		}
		i++
	}

	metrics.SentencesTotal.WithLabelValues(metrics.MatcherLongest).Inc()
	metrics.MatchesTotal.WithLabelValues(metrics.MatcherLongest).Add(float64(len(out)))
	return out
}

// FindViterbi returns the segmentation of span maximizing the summed
// probability of matched entries. Spans longer than the longest lemma are not
// considered; unmatched tokens contribute zero and are not returned. On equal
// scores the longer span wins.
func FindViterbi(lex Lexicon, span text.Span) []Match {
	maxLen := lex.MaxLemmaLength()
	engine := viterbi.New[text.Span, Entry](0, func(s text.Span) (Entry, float64) {
		if e, ok := best(lex, s); ok {
			return e, e.Probability
		}
		return Entry{}, 0
	}).WithInitial(0).WithLimit(func(s text.Span) bool {
		return s.CharLen() > maxLen
	})

	var out []Match
	for _, step := range engine.Run(span.Len(), span.Sub) {
		if step.Score > 0 {
			out = append(out, NewMatch(step.Span, step.Entry))
		}
	}

	metrics.SentencesTotal.WithLabelValues(metrics.MatcherViterbi).Inc()
	metrics.MatchesTotal.WithLabelValues(metrics.MatcherViterbi).Add(float64(len(out)))
	return out
}
