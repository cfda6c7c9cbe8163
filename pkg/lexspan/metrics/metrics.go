// Package metrics exposes Prometheus counters for lexicon matching.
//
// Counters register on the default registry; the CLI serves them with
// promhttp when a metrics address is configured.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Matcher label values.
const (
	MatcherLongest = "longest"
	MatcherViterbi = "viterbi"
	MatcherFuzzy   = "fuzzy"
)

// Fuzzy candidate outcomes.
const (
	OutcomePrefiltered = "prefiltered"
	OutcomeOverBudget  = "over_budget"
	OutcomeAccepted    = "accepted"
)

var (
	// MatchesTotal counts matches emitted, by matcher.
	MatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexspan_matches_total",
		Help: "Total lexicon matches emitted by matcher",
	}, []string{"matcher"})

	// SentencesTotal counts sentences scanned, by matcher.
	SentencesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexspan_sentences_total",
		Help: "Total sentences scanned by matcher",
	}, []string{"matcher"})

	// FuzzyCandidatesTotal counts fuzzy candidates by outcome.
	FuzzyCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexspan_fuzzy_candidates_total",
		Help: "Total fuzzy candidates evaluated by outcome",
	}, []string{"outcome"})

	// SentenceTokens tracks sentence lengths fed to the matchers.
	SentenceTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lexspan_sentence_tokens",
		Help:    "Number of tokens per scanned sentence",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 250},
	})

	// StoreErrorsTotal counts key-value store failures seen by the disk lexicon.
	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lexspan_store_errors_total",
		Help: "Total disk lexicon store errors by operation",
	}, []string{"operation"})
)
