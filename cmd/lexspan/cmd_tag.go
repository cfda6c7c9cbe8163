package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cognicore/lexspan/internal/corpus"
	"github.com/cognicore/lexspan/internal/htmltext"
	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
	"github.com/cognicore/lexspan/pkg/lexspan/pipeline"
	"github.com/cognicore/lexspan/pkg/lexspan/text"
)

var (
	tagHTML    bool
	tagJSONL   bool
	tagWorkers int

	tagCmd = &cobra.Command{
		Use:   "tag [file...]",
		Short: "Annotate files and print the matches as JSON lines",
		Long: `Annotates each file (or standard input when none is given) with the
configured matcher and writes one JSON object per document to standard output.`,
		RunE: runTag,
	}
)

func init() {
	tagCmd.Flags().BoolVar(&tagHTML, "html", false, "Treat input as HTML and annotate its text")
	tagCmd.Flags().BoolVar(&tagJSONL, "jsonl", false, "Treat each file as a JSONL corpus, one document per line")
	tagCmd.Flags().IntVarP(&tagWorkers, "workers", "w", 0, "Documents annotated in parallel (default from config)")
}

// docRecord is the JSON line written per document.
type docRecord struct {
	ID          string      `json:"id"`
	Tokens      int         `json:"tokens"`
	Annotations []annRecord `json:"annotations"`
}

type annRecord struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Start         int     `json:"start"`
	End           int     `json:"end"`
	Text          string  `json:"text"`
	Confidence    float64 `json:"confidence"`
	MatchedString string  `json:"matched_string"`
	Tag           string  `json:"tag,omitempty"`
}

func runTag(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	comp, err := openComponents(ctx)
	if err != nil {
		return err
	}
	defer comp.Close()

	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(cfg.Metrics.Addr)
		defer stop()
	}

	var inputs []pipeline.Input
	if tagJSONL {
		inputs, err = readCorpus(cmd.InOrStdin(), args)
	} else {
		inputs, err = readInputs(cmd.InOrStdin(), args, tagHTML)
	}
	if err != nil {
		return err
	}

	workers := comp.Workers
	if tagWorkers > 0 {
		workers = tagWorkers
	}
	results, err := comp.Pipeline.ProcessAll(ctx, inputs, workers)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, res := range results {
		if err := enc.Encode(record(res)); err != nil {
			return err
		}
	}
	return nil
}

func readInputs(stdin io.Reader, paths []string, isHTML bool) ([]pipeline.Input, error) {
	read := func(id string, r io.Reader) (pipeline.Input, error) {
		if isHTML {
			content, err := htmltext.Extract(r)
			if err != nil {
				return pipeline.Input{}, fmt.Errorf("%s: %w", id, err)
			}
			return pipeline.Input{ID: id, Content: content}, nil
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("%s: %w", id, err)
		}
		return pipeline.Input{ID: id, Content: string(data)}, nil
	}

	if len(paths) == 0 {
		in, err := read("stdin", stdin)
		if err != nil {
			return nil, err
		}
		return []pipeline.Input{in}, nil
	}

	inputs := make([]pipeline.Input, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		in, err := read(path, f)
		f.Close()
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func readCorpus(stdin io.Reader, paths []string) ([]pipeline.Input, error) {
	if len(paths) == 0 {
		return corpus.ReadJSONL(stdin, "stdin", logger)
	}
	var inputs []pipeline.Input
	for _, path := range paths {
		batch, err := corpus.LoadJSONL(path, logger)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, batch...)
	}
	return inputs, nil
}

func record(res pipeline.Result) docRecord {
	rec := docRecord{ID: res.Doc.ID, Tokens: res.Doc.Len(), Annotations: []annRecord{}}
	for _, a := range res.Doc.Annotations("") {
		rec.Annotations = append(rec.Annotations, annotationRecord(a))
	}
	return rec
}

func annotationRecord(a text.Annotation) annRecord {
	r := annRecord{ID: a.ID, Type: a.Type, Text: a.Span.String()}
	if !a.Span.IsEmpty() {
		r.Start = a.Span.Token(0).Start
		r.End = a.Span.Token(a.Span.Len() - 1).End
	}
	r.Confidence, _ = a.Attrs[lexicon.AttrConfidence].(float64)
	r.MatchedString, _ = a.Attrs[lexicon.AttrMatchedString].(string)
	r.Tag, _ = a.Attrs[lexicon.AttrTag].(string)
	return r
}
