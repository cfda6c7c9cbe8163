package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
lexicon:
  entries:
    - lemma: new york
      tag: CITY
matcher:
  annotation_type: PLACE
`))
	require.NoError(t, err)

	assert.Equal(t, BackendTrie, cfg.Lexicon.Backend)
	assert.Equal(t, MatcherExact, cfg.Matcher.Type)
	assert.Equal(t, "PLACE", cfg.Matcher.AnnotationType)
	assert.Equal(t, DefaultWorkers, cfg.Matcher.Workers)
	assert.Equal(t, "text", cfg.Log.Format)
	require.Len(t, cfg.Lexicon.Entries, 1)
	assert.Equal(t, "CITY", cfg.Lexicon.Entries[0].Tag)
}

func TestParseRefreshInterval(t *testing.T) {
	cfg, err := Parse([]byte("lexicon: {backend: memory, refresh_interval: 250ms}"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Lexicon.RefreshInterval)

	cfg, err = Parse([]byte("lexicon: {backend: memory}"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Lexicon.RefreshInterval)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "lexicon: {backend: redis}"},
		{"badger without path", "lexicon: {backend: badger}"},
		{"sqlite without path", "lexicon: {backend: sqlite}"},
		{"unknown matcher", "matcher: {type: phonetic}"},
		{"negative distance", "matcher: {type: fuzzy, max_distance: -1}"},
		{"no workers", "matcher: {workers: 0}"},
		{"blank lemma", "lexicon: {entries: [{tag: X}]}"},
		{"negative token length", "lexicon: {entries: [{lemma: a, token_length: -2}]}"},
		{"unknown constraint", "lexicon: {entries: [{lemma: a, constraint: shouty}]}"},
		{"bad regexp", "lexicon: {entries: [{lemma: a, constraint: 're:('}]}"},
		{"bad log format", "log: {format: xml}"},
		{"bad metrics addr", "metrics: {addr: nowhere}"},
		{"malformed yaml", "lexicon: ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexspan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lexicon:
  backend: sqlite
  path: /tmp/lex.db
  case_sensitive: true
matcher:
  type: fuzzy
  max_distance: 2
log:
  level: debug
  format: json
metrics:
  addr: localhost:9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Lexicon.Backend)
	assert.True(t, cfg.Lexicon.CaseSensitive)
	assert.Equal(t, MatcherFuzzy, cfg.Matcher.Type)
	assert.Equal(t, 2, cfg.Matcher.MaxDistance)
	assert.Equal(t, "localhost:9090", cfg.Metrics.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedEntriesResolveConstraints(t *testing.T) {
	cfg := LexiconConfig{Entries: []EntryConfig{
		{Lemma: "nasa", Constraint: "upper", Probability: 0.9},
		{Lemma: "apple"},
	}}

	entries, err := cfg.SeedEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Constraint)
	assert.Equal(t, "upper", entries[0].Constraint.String())
	assert.Nil(t, entries[1].Constraint)
	assert.Equal(t, 0.9, entries[0].Probability)
	assert.IsType(t, lexicon.Entry{}, entries[1])
}
