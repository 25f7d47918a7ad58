package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/novelty"
	"github.com/ankurju/melody/preprocess"
	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	refs string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <melody>",
	Short: "Score a melody's similarity to the training songs",
	Long: `Score a melody against every encoded song in the reference directory.

The melody may be an encoded symbols file or an events file (".events"),
which is encoded with step_duration first. Scores are in (0, 1]; higher
means closer to some training song.

Examples:
  melody analyze melody.symbols
  melody analyze melody.events --refs dataset`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		refDir := analyzeFlags.refs
		if refDir == "" {
			refDir = cfg.SaveDir
		}
		symbols, err := readMelody(args[0], cfg.StepDuration)
		if err != nil {
			return err
		}
		refs, err := novelty.LoadReferences(refDir)
		if err != nil {
			return err
		}
		stats, err := novelty.AnalyzeConcurrent(cmd.Context(),
			novelty.ExtractFeatures(symbols), refs, cfg.Workers)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderReport("Novelty", []field{
			{"Melody", args[0]},
			{"Symbols", strconv.Itoa(len(symbols))},
			{"References", strconv.Itoa(len(refs))},
			floatField("Mean similarity", stats.Mean),
			floatField("Std deviation", stats.Std),
			floatField("Max similarity", stats.Max),
			floatField("Min similarity", stats.Min),
		}))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlags.refs, "refs", "", "reference song directory (defaults to save_dir)")
	rootCmd.AddCommand(analyzeCmd)
}

// readMelody reads an encoded song, encoding event files on
// the fly.
func readMelody(path string, timeStep float64) ([]melody.Symbol, error) {
	if filepath.Ext(path) != preprocess.EventExt {
		return melody.ReadSymbolFile(path)
	}
	events, err := melody.ReadEventFile(path)
	if err != nil {
		return nil, err
	}
	return melody.Encode(events, timeStep)
}
