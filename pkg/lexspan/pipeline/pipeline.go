// Package pipeline runs documents through tokenization and annotation:
// text → tokens and sentences → annotators → annotations.
package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

// Annotator attaches annotations to a tokenized document and reports how many
// it attached. lexicon.Annotator and fuzzy.Annotator both satisfy it.
type Annotator interface {
	Annotate(doc *text.Document) int
}

// Input is a raw document.
type Input struct {
	ID      string
	Content string
}

// Result is a document after annotation.
type Result struct {
	Doc      *text.Document
	Attached int
}

// Pipeline orchestrates the annotation flow for one document at a time.
type Pipeline struct {
	tokenizer  text.Tokenizer
	annotators []Annotator
	logger     *slog.Logger
}

// New creates a pipeline. Annotators run in the order given.
func New(tokenizer text.Tokenizer, annotators ...Annotator) *Pipeline {
	return &Pipeline{
		tokenizer:  tokenizer,
		annotators: annotators,
		logger:     slog.Default(),
	}
}

// WithLogger sets the logger used for per-document debug output.
func (p *Pipeline) WithLogger(logger *slog.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Process tokenizes content and runs every annotator over it.
func (p *Pipeline) Process(id, content string) Result {
	doc := p.tokenizer.Tokenize(id, content)
	res := Result{Doc: doc}
	for _, a := range p.annotators {
		res.Attached += a.Annotate(doc)
	}
	p.logger.Debug("document annotated",
		"id", id,
		"tokens", doc.Len(),
		"sentences", len(doc.Sentences()),
		"attached", res.Attached)
	return res
}

// ProcessAll processes inputs with at most workers documents in flight and
// returns results in input order. Cancellation is checked between documents;
// on cancellation the partial results are returned with the context error.
func (p *Pipeline) ProcessAll(ctx context.Context, inputs []Input, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.Process(in.ID, in.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
