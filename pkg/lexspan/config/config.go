// Package config loads lexspan YAML configuration and builds the lexicon,
// tokenizer, and annotator it describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/lexspan/pkg/lexspan/internalerr"
	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
)

// Lexicon backends.
const (
	BackendTrie   = "trie"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Matcher types.
const (
	MatcherExact = "exact"
	MatcherFuzzy = "fuzzy"
)

// DefaultWorkers is the number of documents annotated concurrently when the
// configuration does not say.
const DefaultWorkers = 4

// Config is the top-level configuration file.
type Config struct {
	Lexicon   LexiconConfig   `yaml:"lexicon"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LexiconConfig selects the lexicon backend and its seed entries.
type LexiconConfig struct {
	Backend       string        `yaml:"backend" validate:"oneof=trie memory badger sqlite"`
	Path          string        `yaml:"path" validate:"required_if=Backend badger,required_if=Backend sqlite"`
	CaseSensitive bool          `yaml:"case_sensitive"`
	CacheSize     int           `yaml:"cache_size" validate:"gte=0"`
	Dict          string        `yaml:"dict"`
	Entries       []EntryConfig `yaml:"entries" validate:"dive"`

	// RefreshInterval throttles checks for commits made by other processes
	// sharing the store. Zero checks on every read; negative never does.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// EntryConfig is a lexicon entry written inline in the configuration.
type EntryConfig struct {
	Lemma       string  `yaml:"lemma" validate:"required"`
	Probability float64 `yaml:"probability"`
	Tag         string  `yaml:"tag"`
	Constraint  string  `yaml:"constraint"`
	TokenLength int     `yaml:"token_length" validate:"gte=0"`
}

// TokenizerConfig tunes the default tokenizer.
type TokenizerConfig struct {
	Stem bool `yaml:"stem"`
}

// MatcherConfig selects exact or fuzzy matching.
type MatcherConfig struct {
	Type           string `yaml:"type" validate:"oneof=exact fuzzy"`
	MaxDistance    int    `yaml:"max_distance" validate:"gte=0,lte=8"`
	AnnotationType string `yaml:"annotation_type"`
	Workers        int    `yaml:"workers" validate:"gte=1"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// MetricsConfig configures the Prometheus endpoint. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given: an in-memory
// case-insensitive trie matched exactly.
func Default() *Config {
	return &Config{
		Lexicon: LexiconConfig{Backend: BackendTrie},
		Matcher: MatcherConfig{
			Type:           MatcherExact,
			AnnotationType: lexicon.DefaultAnnotationType,
			Workers:        DefaultWorkers,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML configuration file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and that every entry constraint resolves.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	for i, e := range c.Lexicon.Entries {
		if e.Constraint == "" {
			continue
		}
		if _, err := lexicon.ParseConstraint(e.Constraint); err != nil {
			return fmt.Errorf("%w: lexicon.entries[%d]: %v", internalerr.ErrInvalidConfig, i, err)
		}
	}
	return nil
}

// SeedEntries converts the inline entries to lexicon entries. Constraints must
// already have passed Validate.
func (c LexiconConfig) SeedEntries() ([]lexicon.Entry, error) {
	out := make([]lexicon.Entry, 0, len(c.Entries))
	for _, ec := range c.Entries {
		e := lexicon.Entry{
			Lemma:       ec.Lemma,
			Probability: ec.Probability,
			Tag:         ec.Tag,
			TokenLength: ec.TokenLength,
		}
		if ec.Constraint != "" {
			con, err := lexicon.ParseConstraint(ec.Constraint)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", ec.Lemma, err)
			}
			e.Constraint = con
		}
		out = append(out, e)
	}
	return out, nil
}
