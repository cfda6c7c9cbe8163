package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
)

func TestReadDict(t *testing.T) {
	src := `# places
new york city|nyc|big apple|CITY

san francisco|CITY|0.7
machine learning|ml|TECH
`
	dict, err := ReadDict(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, dict, 3)

	assert.Equal(t, "new york city", dict[0].Canonical)
	assert.Equal(t, []string{"nyc", "big apple"}, dict[0].Variants)
	assert.Equal(t, "CITY", dict[0].Category)
	assert.Equal(t, lexicon.Unranked, dict[0].Probability)

	assert.Equal(t, "san francisco", dict[1].Canonical)
	assert.Empty(t, dict[1].Variants)
	assert.Equal(t, 0.7, dict[1].Probability)

	entries := dict[0].Entries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, "CITY", e.Tag)
	}
	assert.Equal(t, "big apple", entries[2].Lemma)
}

func TestReadDictMalformed(t *testing.T) {
	_, err := ReadDict(strings.NewReader("lonely\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadDictMissingFile(t *testing.T) {
	_, err := LoadDict("/nonexistent/dict.txt")
	assert.Error(t, err)
}

func TestLoadDictFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.txt")
	require.NoError(t, os.WriteFile(path, []byte("rock and roll|rock n roll|MUSIC\n"), 0o644))

	dict, err := LoadDict(path)
	require.NoError(t, err)
	require.Len(t, dict, 1)
	assert.Equal(t, []string{"rock n roll"}, dict[0].Variants)
}
