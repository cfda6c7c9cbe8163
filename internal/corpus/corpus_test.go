package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/lexspan/internal/logging"
)

func TestReadJSONL(t *testing.T) {
	src := `{"id": "a", "title": "Launch", "text": "NASA flies."}
not json

{"url": "https://example.com/b", "text": "<p>New <i>York</i></p>", "html": true}
{"text": "anonymous"}
`
	inputs, err := ReadJSONL(strings.NewReader(src), "feed.jsonl", logging.Discard())
	require.NoError(t, err)
	require.Len(t, inputs, 3)

	assert.Equal(t, "a", inputs[0].ID)
	assert.Equal(t, "Launch.\nNASA flies.", inputs[0].Content)

	assert.Equal(t, "https://example.com/b", inputs[1].ID)
	assert.Equal(t, "New York", inputs[1].Content)

	assert.Equal(t, "feed.jsonl:5", inputs[2].ID)
}

func TestLoadJSONL(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.jsonl")
	require.NoError(t, os.WriteFile(empty, []byte("garbage\n"), 0o644))
	_, err := LoadJSONL(empty, logging.Discard())
	assert.ErrorContains(t, err, "no valid records")

	_, err = LoadJSONL(filepath.Join(dir, "missing.jsonl"), logging.Discard())
	assert.Error(t, err)

	ok := filepath.Join(dir, "ok.jsonl")
	require.NoError(t, os.WriteFile(ok, []byte(`{"id":"x","text":"hello"}`), 0o644))
	inputs, err := LoadJSONL(ok, logging.Discard())
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "hello", inputs[0].Content)
}
