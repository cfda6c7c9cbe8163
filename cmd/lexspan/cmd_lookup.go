package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
)

var (
	keysPrefix string

	lookupCmd = &cobra.Command{
		Use:   "lookup [term...]",
		Short: "Print the lexicon entries stored under each term",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLookup,
	}

	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "List lexicon keys in sorted order",
		RunE:  runKeys,
	}
)

func init() {
	keysCmd.Flags().StringVar(&keysPrefix, "prefix", "", "Only list keys starting with this prefix")
}

type entryRecord struct {
	Term        string  `json:"term"`
	Lemma       string  `json:"lemma,omitempty"`
	Probability float64 `json:"probability,omitempty"`
	Tag         string  `json:"tag,omitempty"`
	Constraint  string  `json:"constraint,omitempty"`
	TokenLength int     `json:"token_length,omitempty"`
	Found       bool    `json:"found"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	comp, err := openComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer comp.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, term := range args {
		entries := comp.Lexicon.Get(term)
		if len(entries) == 0 {
			if err := enc.Encode(entryRecord{Term: term}); err != nil {
				return err
			}
			continue
		}
		for _, e := range entries {
			if err := enc.Encode(toEntryRecord(term, e)); err != nil {
				return err
			}
		}
	}
	return nil
}

func toEntryRecord(term string, e lexicon.Entry) entryRecord {
	r := entryRecord{
		Term:        term,
		Lemma:       e.Lemma,
		Probability: e.Probability,
		Tag:         e.Tag,
		TokenLength: e.TokenLength,
		Found:       true,
	}
	if e.Constraint != nil {
		r.Constraint = e.Constraint.String()
	}
	return r
}

func runKeys(cmd *cobra.Command, _ []string) error {
	comp, err := openComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer comp.Close()

	prefix := lexicon.Normalize(keysPrefix, comp.Lexicon.IsCaseSensitive())
	out := cmd.OutOrStdout()
	for key := range comp.Lexicon.Keys() {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		if _, err := fmt.Fprintln(out, key); err != nil {
			return err
		}
	}
	return nil
}
