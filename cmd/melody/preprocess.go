package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ankurju/melody/preprocess"
	"github.com/spf13/cobra"
)

var preprocessFlags struct {
	dataset     string
	noTranspose bool
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Encode a dataset of event files",
	Long: `Encode every .events file of a dataset directory.

Songs with durations outside acceptable_durations are skipped. The rest
are transposed to C major or A minor, encoded at step_duration and
written to save_dir. The songs are then joined into the single-file
corpus and the vocabulary is written to mapping_path.

Examples:
  melody preprocess --dataset deutschl/erk
  melody -c melody.yaml preprocess`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if preprocessFlags.dataset != "" {
			cfg.DatasetPath = preprocessFlags.dataset
		}
		p := &preprocess.Pipeline{
			DatasetPath:    cfg.DatasetPath,
			SaveDir:        cfg.SaveDir,
			CorpusPath:     cfg.SingleFileDataset,
			MappingPath:    cfg.MappingPath,
			SequenceLength: cfg.SequenceLength,
			Options: preprocess.Options{
				TimeStep:            cfg.StepDuration,
				AcceptableDurations: cfg.AcceptableDurations,
				Transpose:           !preprocessFlags.noTranspose,
				Workers:             cfg.Workers,
				Logger:              log.New(os.Stderr, "", log.LstdFlags),
			},
		}
		report, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		fields := []field{
			{"Loaded", strconv.Itoa(report.Loaded)},
			{"Encoded", strconv.Itoa(report.Encoded)},
			{"Skipped", strconv.Itoa(len(report.Skipped))},
			{"Corpus symbols", strconv.Itoa(report.CorpusLen)},
			{"Vocabulary size", strconv.Itoa(report.VocabSize)},
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderReport("Preprocessing", fields))
		return nil
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessFlags.dataset, "dataset", "",
		"dataset directory (overrides dataset_path)")
	preprocessCmd.Flags().BoolVar(&preprocessFlags.noTranspose, "no-transpose", false,
		"keep songs in their original keys")
	rootCmd.AddCommand(preprocessCmd)
}
