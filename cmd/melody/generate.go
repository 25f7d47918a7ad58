package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/generator"
	"github.com/ankurju/melody/seqmodel"
	"github.com/ankurju/melody/vocab"
	"github.com/spf13/cobra"
)

const defaultSeed = "69 _ _ _ 69 _ _ _ _ _ 68 _ 69 _ _ _ 71 _ _ _ 72 _ _ _ _ _ 72"

var generateFlags struct {
	model       string
	seed        string
	steps       int
	temperature float64
	output      string
	format      string
	count       int
	randSeed    int64
	symbols     bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Extend a seed melody with a trained model",
	Long: `Extend a seed melody with a trained model.

The seed uses the encoded-song format: MIDI pitches, "_" holds and "r"
rests, one symbol per time step. Generation stops after --steps symbols
or when the model ends the song.

Examples:
  melody generate --model bilstm.model --temperature 0.7 -o bilstm_output
  melody generate --format midi -o tune
  melody generate --seed "67 _ 67 _ 67 _ _ 65 64 _" --count 4 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f := generateFlags
		if f.model == "" {
			f.model = cfg.ModelPath
		}
		if !cmd.Flags().Changed("steps") {
			f.steps = cfg.NumSteps
		}
		if !cmd.Flags().Changed("temperature") {
			f.temperature = cfg.Temperature
		}
		if f.steps < 0 {
			return fmt.Errorf("--steps must not be negative (got %d)", f.steps)
		}

		exporter, err := melody.ExporterFor(f.format)
		if err != nil {
			return err
		}
		seed, err := generator.ParseSeed(f.seed)
		if err != nil {
			return err
		}
		gen, _, err := loadGenerator(f.model, cfg.MappingPath)
		if err != nil {
			return err
		}
		workers := cfg.Workers
		if cmd.Flags().Changed("rand-seed") {
			gen.Sampler = &generator.TemperatureSampler{Rand: rand.New(rand.NewSource(f.randSeed))}
			workers = 1
		}

		seeds := make([][]melody.Symbol, max(f.count, 1))
		for i := range seeds {
			seeds[i] = seed
		}
		log.Printf("Generating %d melodies...", len(seeds))
		outs, err := gen.GenerateAll(cmd.Context(), seeds, f.steps, cfg.SequenceLength,
			f.temperature, workers)
		if err != nil {
			return err
		}

		for i, out := range outs {
			name := f.output
			if len(outs) > 1 {
				name = fmt.Sprintf("%s_%d", f.output, i)
			}
			events, err := melody.Decode(out, cfg.StepDuration)
			if err != nil {
				return err
			}
			path := name + exporter.Extension()
			if err := exporter.Export(path, events); err != nil {
				return err
			}
			if f.symbols {
				if err := melody.WriteSymbolFile(name+".symbols", out); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Melody saved as %s (%d symbols, %d events)\n",
				path, len(out), len(events))
		}
		return nil
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVarP(&generateFlags.model, "model", "m", "", "model file (defaults to model_path)")
	flags.StringVar(&generateFlags.seed, "seed", defaultSeed, "seed melody")
	flags.IntVar(&generateFlags.steps, "steps", 500, "maximum number of generated symbols")
	flags.Float64VarP(&generateFlags.temperature, "temperature", "t", 0.3, "sampling temperature")
	flags.StringVarP(&generateFlags.output, "output", "o", "melody", "output file name without extension")
	flags.StringVar(&generateFlags.format, "format", "text", "output format: text, json or midi")
	flags.IntVar(&generateFlags.count, "count", 1, "number of melodies to generate")
	flags.Int64Var(&generateFlags.randSeed, "rand-seed", 0, "seed for reproducible sampling")
	flags.BoolVar(&generateFlags.symbols, "symbols", false, "also write the encoded symbols")
	rootCmd.AddCommand(generateCmd)
}

func loadGenerator(modelPath, mappingPath string) (*generator.Generator,
	*seqmodel.Model, error) {
	model, err := seqmodel.Load(modelPath)
	if err != nil {
		return nil, nil, err
	}
	v, err := vocab.Load(mappingPath)
	if err != nil {
		return nil, nil, err
	}
	if v.Len() != model.VocabSize {
		return nil, nil, fmt.Errorf("model expects %d symbols but %s has %d",
			model.VocabSize, mappingPath, v.Len())
	}
	return &generator.Generator{
		Vocab:   v,
		Model:   model,
		Creator: model.Creator(),
		Sampler: &generator.TemperatureSampler{},
	}, model, nil
}
