package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
)

// DictEntry is one line of a dictionary file: a canonical form, its
// variants, and a category used as the entry tag.
type DictEntry struct {
	Canonical   string
	Variants    []string
	Category    string
	Probability float64
}

// LoadDict reads a dictionary file.
//
// Format, one entry per line:
//
//	canonical|variant1|variant2|category
//	canonical|variant1|category|0.8
//
// A trailing numeric field is the probability of every form on the line.
// Blank lines and lines starting with # are ignored.
func LoadDict(path string) ([]DictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDict(f)
}

// ReadDict parses dictionary lines from r.
func ReadDict(r io.Reader) ([]DictEntry, error) {
	var out []DictEntry
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		entry := DictEntry{Probability: lexicon.Unranked}
		if len(parts) > 2 {
			if p, err := strconv.ParseFloat(parts[len(parts)-1], 64); err == nil {
				entry.Probability = p
				parts = parts[:len(parts)-1]
			}
		}
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("dict line %d: want canonical|...|category, got %q", lineNo, line)
		}

		entry.Canonical = parts[0]
		entry.Variants = parts[1 : len(parts)-1]
		entry.Category = parts[len(parts)-1]
		out = append(out, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Entries expands d into one lexicon entry per form, all tagged with the
// category.
func (d DictEntry) Entries() []lexicon.Entry {
	forms := append([]string{d.Canonical}, d.Variants...)
	out := make([]lexicon.Entry, 0, len(forms))
	for _, form := range forms {
		if form == "" {
			continue
		}
		out = append(out, lexicon.Entry{Lemma: form, Probability: d.Probability, Tag: d.Category})
	}
	return out
}
