// Package viterbi is a generic dynamic-programming engine that partitions a
// sequence of n positions into contiguous spans maximizing a combined score.
//
// The engine knows nothing about tokens or lexicons. Callers supply a scoring
// function over spans and, for annotation, a function that materializes each
// step of the winning path:
//
//	best[0] = initial
//	for i in 1..n:
//	    for j in i-1 down to max(0, i-maxSpanSize):
//	        segment = combine(best[j], score(span[j,i)))
//	        if segment >= best[i]: best[i], back[i] = segment, span[j,i)
//
// Because j decreases, longer spans are evaluated after shorter ones and the
// >= comparison lets them win ties.
package viterbi

import "math"

// ScoreFunc scores one span. A zero score with a zero entry means "no match".
type ScoreFunc[S, E any] func(span S) (entry E, score float64)

// SpanFunc materializes the span covering positions [start, end).
type SpanFunc[S any] func(start, end int) S

// CombineFunc folds a span score into the best score of the prefix before it.
type CombineFunc func(prefix, score float64) float64

// Step is one backpointer on the winning path.
type Step[S, E any] struct {
	Span  S
	Start int
	End   int
	Entry E
	Score float64
}

// Len returns the number of positions covered by the step.
func (s Step[S, E]) Len() int { return s.End - s.Start }

// Sum is the default combine operator.
func Sum(prefix, score float64) float64 { return prefix + score }

// Engine runs the DP. Configure it with the With* setters before sharing it;
// Run and Annotate are safe for concurrent use afterwards.
type Engine[S, E any] struct {
	maxSpanSize int
	initial     float64
	score       ScoreFunc[S, E]
	combine     CombineFunc
	limit       func(span S) bool
}

// New creates an engine. maxSpanSize <= 0 lets spans grow to the whole input.
func New[S, E any](maxSpanSize int, score ScoreFunc[S, E]) *Engine[S, E] {
	return &Engine[S, E]{
		maxSpanSize: maxSpanSize,
		initial:     1.0,
		score:       score,
		combine:     Sum,
	}
}

// WithCombine replaces the combine operator.
func (e *Engine[S, E]) WithCombine(fn CombineFunc) *Engine[S, E] {
	e.combine = fn
	return e
}

// WithInitial sets best[0], the identity of the combine operator.
func (e *Engine[S, E]) WithInitial(v float64) *Engine[S, E] {
	e.initial = v
	return e
}

// WithLimit stops growing spans ending at a position once exceeded reports
// true. Single-position spans are always scored.
func (e *Engine[S, E]) WithLimit(exceeded func(span S) bool) *Engine[S, E] {
	e.limit = exceeded
	return e
}

// MaxSpanSize returns the configured span bound (<= 0 means unbounded).
func (e *Engine[S, E]) MaxSpanSize() int { return e.maxSpanSize }

// Run returns the winning path in left-to-right order, including steps whose
// entry is empty.
func (e *Engine[S, E]) Run(n int, span SpanFunc[S]) []Step[S, E] {
	back := e.solve(n, span)
	if back == nil {
		return nil
	}

	var steps []Step[S, E]
	for i := n; i > 0; i -= back[i].Len() {
		steps = append(steps, back[i])
	}
	for l, r := 0, len(steps)-1; l < r; l, r = l+1, r-1 {
		steps[l], steps[r] = steps[r], steps[l]
	}
	return steps
}

// Annotate walks the winning path from the end back to the start and hands
// every step to attach, which decides whether to materialize it.
func (e *Engine[S, E]) Annotate(n int, span SpanFunc[S], attach func(Step[S, E])) {
	back := e.solve(n, span)
	for i := n; i > 0; i -= back[i].Len() {
		attach(back[i])
	}
}

func (e *Engine[S, E]) solve(n int, span SpanFunc[S]) []Step[S, E] {
	if n <= 0 {
		return nil
	}

	best := make([]float64, n+1)
	back := make([]Step[S, E], n+1)
	best[0] = e.initial
	for i := 1; i <= n; i++ {
		best[i] = math.Inf(-1)
	}

	for i := 1; i <= n; i++ {
		lower := 0
		if e.maxSpanSize > 0 && i-e.maxSpanSize > 0 {
			lower = i - e.maxSpanSize
		}
		for j := i - 1; j >= lower; j-- {
			s := span(j, i)
			if j < i-1 && e.limit != nil && e.limit(s) {
				break
			}
			entry, score := e.score(s)
			segment := e.combine(best[j], score)
			if segment >= best[i] || back[i].End == 0 {
				best[i] = segment
				back[i] = Step[S, E]{Span: s, Start: j, End: i, Entry: entry, Score: score}
			}
		}
	}
	return back
}
