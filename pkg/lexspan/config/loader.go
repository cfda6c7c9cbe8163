package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cognicore/lexspan/pkg/lexspan/fuzzy"
	"github.com/cognicore/lexspan/pkg/lexspan/kv"
	"github.com/cognicore/lexspan/pkg/lexspan/kv/badgerkv"
	"github.com/cognicore/lexspan/pkg/lexspan/kv/memkv"
	"github.com/cognicore/lexspan/pkg/lexspan/kv/sqlitekv"
	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
	"github.com/cognicore/lexspan/pkg/lexspan/pipeline"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// Loader constructs components from a configuration.
type Loader struct {
	Config *Config
	Logger *slog.Logger
}

// Components holds everything a configuration builds.
type Components struct {
	Lexicon   lexicon.Lexicon
	Tokenizer text.Tokenizer
	Annotator pipeline.Annotator
	Pipeline  *pipeline.Pipeline
	Workers   int

	// Degraded is set when the configured lexicon could not be opened and
	// Lexicon is the empty lexicon instead.
	Degraded bool
}

// Close releases the lexicon's store, if it has one.
func (c *Components) Close() error {
	if d, ok := c.Lexicon.(*lexicon.Disk); ok {
		return d.Close()
	}
	return nil
}

// Load opens the lexicon, seeds it, and wires the tokenizer and annotator.
//
// A lexicon that cannot be opened is replaced by the empty lexicon with a
// warning, so the pipeline still runs and simply matches nothing. Seed
// entries that fail validation are an error.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	comp := &Components{Workers: cfg.Matcher.Workers}

	lex, err := openLexicon(ctx, cfg.Lexicon, logger)
	if err != nil {
		logger.Warn("lexicon unavailable, matching nothing",
			"backend", cfg.Lexicon.Backend,
			"path", cfg.Lexicon.Path,
			"error", err)
		comp.Lexicon = lexicon.Empty()
		comp.Degraded = true
	} else {
		comp.Lexicon = lex
		if err := seed(cfg.Lexicon, lex, logger); err != nil {
			comp.Close()
			return nil, err
		}
	}

	comp.Tokenizer = text.NewTokenizer(cfg.Tokenizer.Stem)

	switch cfg.Matcher.Type {
	case MatcherFuzzy:
		comp.Annotator = fuzzy.New(comp.Lexicon, cfg.Matcher.MaxDistance, fuzzy.Options{
			AnnotationType: cfg.Matcher.AnnotationType,
		})
	default:
		comp.Annotator = lexicon.NewAnnotator(comp.Lexicon, cfg.Matcher.AnnotationType)
	}
	comp.Pipeline = pipeline.New(comp.Tokenizer, comp.Annotator).WithLogger(logger)

	logger.Info("lexicon ready",
		"backend", cfg.Lexicon.Backend,
		"size", comp.Lexicon.Size(),
		"probabilistic", comp.Lexicon.IsProbabilistic(),
		"matcher", cfg.Matcher.Type)
	return comp, nil
}

func openLexicon(ctx context.Context, cfg LexiconConfig, logger *slog.Logger) (lexicon.Lexicon, error) {
	var (
		store kv.Store
		err   error
	)
	switch cfg.Backend {
	case BackendTrie, "":
		return lexicon.NewTrie(cfg.CaseSensitive), nil
	case BackendMemory:
		store = memkv.New()
	case BackendBadger:
		bc := badgerkv.DefaultConfig(cfg.Path)
		bc.Logger = logger
		store, err = badgerkv.Open(bc)
	case BackendSQLite:
		store, err = sqlitekv.Open(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown lexicon backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	disk, err := lexicon.OpenDisk(ctx, store, lexicon.DiskOptions{
		CaseSensitive:   cfg.CaseSensitive,
		CacheSize:       cfg.CacheSize,
		RefreshInterval: cfg.RefreshInterval,
		Logger:          logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	return disk, nil
}

// seed adds the inline and dictionary entries. A persistent lexicon that
// already holds entries is left alone so restarts do not duplicate them.
func seed(cfg LexiconConfig, lex lexicon.Lexicon, logger *slog.Logger) error {
	if _, persistent := lex.(*lexicon.Disk); persistent && lex.Size() > 0 {
		logger.Debug("lexicon store already populated, skipping seed", "size", lex.Size())
		return nil
	}

	entries, err := cfg.SeedEntries()
	if err != nil {
		return fmt.Errorf("seed entries: %w", err)
	}
	if cfg.Dict != "" {
		dict, err := LoadDict(cfg.Dict)
		if err != nil {
			return fmt.Errorf("load dictionary: %w", err)
		}
		for _, d := range dict {
			entries = append(entries, d.Entries()...)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	if err := lex.AddAll(entries...); err != nil {
		return fmt.Errorf("seed lexicon: %w", err)
	}
	logger.Debug("lexicon seeded", "entries", len(entries))
	return nil
}
