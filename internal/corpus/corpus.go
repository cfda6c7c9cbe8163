// Package corpus reads batches of documents for annotation.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cognicore/lexspan/internal/htmltext"
	"github.com/cognicore/lexspan/pkg/lexspan/pipeline"
)

// maxLine bounds a single JSONL record.
const maxLine = 16 << 20

// Record is one line of a JSONL corpus. Title and Text are joined into the
// annotated content; HTML bodies are reduced to text first.
type Record struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
	HTML  bool   `json:"html"`
}

// LoadJSONL reads a JSONL corpus file. Malformed lines are skipped with a
// warning; a file with no valid records is an error.
func LoadJSONL(path string, logger *slog.Logger) ([]pipeline.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	inputs, err := ReadJSONL(f, path, logger)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no valid records found in %s", path)
	}
	return inputs, nil
}

// ReadJSONL decodes records from r. name prefixes generated IDs and log lines.
func ReadJSONL(r io.Reader, name string, logger *slog.Logger) ([]pipeline.Input, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var inputs []pipeline.Input
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			logger.Warn("skipping malformed record", "file", name, "line", lineNo, "error", err)
			continue
		}
		inputs = append(inputs, rec.Input(fmt.Sprintf("%s:%d", name, lineNo)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return inputs, nil
}

// Input converts the record to pipeline input, using fallbackID when the
// record has neither an ID nor a URL.
func (r Record) Input(fallbackID string) pipeline.Input {
	id := r.ID
	if id == "" {
		id = r.URL
	}
	if id == "" {
		id = fallbackID
	}

	body := r.Text
	if r.HTML {
		body = htmltext.String(body)
	}
	content := body
	if r.Title != "" {
		content = r.Title + ".\n" + body
	}
	return pipeline.Input{ID: id, Content: content}
}
