package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/lexspan/pkg/lexspan/config"
	"github.com/cognicore/lexspan/pkg/lexspan/lexicon"
)

var loadCmd = &cobra.Command{
	Use:   "load [dict file...]",
	Short: "Add dictionary files to the configured lexicon",
	Long: `Reads canonical|variant...|category dictionary files and adds every form to
the configured lexicon. With a badger or sqlite backend the entries persist.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	comp, err := openComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer comp.Close()
	if comp.Degraded {
		return fmt.Errorf("lexicon %s at %q is unavailable", cfg.Lexicon.Backend, cfg.Lexicon.Path)
	}

	total := 0
	for _, path := range args {
		dict, err := config.LoadDict(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		var entries []lexicon.Entry
		for _, d := range dict {
			entries = append(entries, d.Entries()...)
		}
		if err := comp.Lexicon.AddAll(entries...); err != nil {
			return fmt.Errorf("add %s: %w", path, err)
		}
		logger.Info("dictionary loaded", "path", path, "entries", len(entries))
		total += len(entries)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %d entries; lexicon holds %d keys (max %d tokens)\n",
		total, comp.Lexicon.Size(), comp.Lexicon.MaxTokenLength())
	return nil
}
