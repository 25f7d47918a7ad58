package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/ankurju/melody/generator"
	"github.com/ankurju/melody/novelty"
	"github.com/ankurju/melody/seqmodel"
	"github.com/ankurju/melody/seqtrain"
	"github.com/spf13/cobra"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anys2v"
)

var compareFlags struct {
	models []string
	seed   string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Evaluate several trained models side by side",
	Long: `Evaluate several trained models on the validation windows, generate
one melody from each and score its novelty against the dataset songs.

Examples:
  melody compare --models lstm.model,bilstm.model`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		paths := compareFlags.models
		if len(paths) == 0 {
			paths = []string{cfg.ModelPath}
		}
		seed, err := generator.ParseSeed(compareFlags.seed)
		if err != nil {
			return err
		}
		refs, err := novelty.LoadReferences(cfg.SaveDir)
		if err != nil {
			return err
		}

		var data *dataset
		var rows [][]string
		for _, path := range paths {
			log.Printf("Evaluating %s...", path)
			gen, model, err := loadGenerator(path, cfg.MappingPath)
			if err != nil {
				return err
			}
			if data == nil {
				data, err = loadDataset(cfg, model.Creator())
				if err != nil {
					return err
				}
			}
			eval, err := evaluateModel(model, data.Validation, cfg.BatchSize)
			if err != nil {
				return err
			}
			out, err := gen.Generate(seed, cfg.NumSteps, cfg.SequenceLength, cfg.Temperature)
			if err != nil {
				return err
			}
			stats, err := novelty.AnalyzeConcurrent(cmd.Context(),
				novelty.ExtractFeatures(out), refs, cfg.Workers)
			if err != nil {
				return err
			}
			row := []string{path, model.Kind.String(), strconv.Itoa(numParams(model))}
			row = append(row, evaluationCells(eval)...)
			rows = append(rows, append(row,
				strconv.Itoa(len(out)),
				fmt.Sprintf("%.4f", stats.Mean),
			))
		}
		header := []string{"Model", "Kind", "Params", "Val loss", "Val acc", "Length", "Similarity"}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable("Model comparison", header, rows))
		return nil
	},
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareFlags.models, "models", nil, "model files to compare (defaults to model_path)")
	compareCmd.Flags().StringVar(&compareFlags.seed, "seed", defaultSeed, "seed melody for generation")
	rootCmd.AddCommand(compareCmd)
}

// evaluateModel scores the model on the validation windows.
// It returns nil when there are none.
func evaluateModel(m *seqmodel.Model, validation anys2v.SampleList,
	batchSize int) (*seqtrain.Evaluation, error) {
	if validation.Len() == 0 {
		return nil, nil
	}
	t := &anys2v.Trainer{
		Func:    m.Apply,
		Cost:    anynet.DotCost{},
		Params:  m.Parameters(),
		Average: true,
	}
	return seqtrain.Evaluate(t, validation, batchSize)
}

func evaluationCells(eval *seqtrain.Evaluation) []string {
	if eval == nil {
		return []string{"-", "-"}
	}
	return []string{fmt.Sprintf("%.4f", eval.Loss), fmt.Sprintf("%.4f", eval.Accuracy)}
}

func numParams(m *seqmodel.Model) int {
	var n int
	for _, p := range m.Parameters() {
		n += p.Vector.Len()
	}
	return n
}
