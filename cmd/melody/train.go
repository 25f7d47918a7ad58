package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ankurju/melody/config"
	"github.com/ankurju/melody/seqmodel"
	"github.com/ankurju/melody/seqtrain"
	"github.com/ankurju/melody/vocab"
	"github.com/ankurju/melody/window"
	"github.com/spf13/cobra"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anys2v"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

var trainFlags struct {
	kind   string
	epochs int
	output string
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a next-symbol model",
	Long: `Train an LSTM, BiLSTM or markup-defined model on the single-file corpus.

Training runs for the configured number of epochs with the configured
optimizer. Press ctrl+c once to stop early; the model is still
evaluated and saved.

Examples:
  melody train --kind bilstm --epochs 10 --output bilstm.model`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if trainFlags.kind != "" {
			cfg.ModelKind = trainFlags.kind
		}
		if trainFlags.epochs > 0 {
			cfg.Epochs = trainFlags.epochs
		}
		if trainFlags.output != "" {
			cfg.ModelPath = trainFlags.output
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		res, err := train(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fields := []field{
			{"Model", cfg.ModelKind},
			{"Epochs", fmt.Sprintf("%.2f", res.Epochs)},
			{"Training time", res.Duration.Round(time.Millisecond).String()},
			{"Saved to", cfg.ModelPath},
		}
		if res.Validation != nil {
			fields = append(fields,
				floatField("Validation loss", res.Validation.Loss),
				floatField("Validation accuracy", res.Validation.Accuracy))
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderReport("Training", fields))
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainFlags.kind, "kind", "", "model kind: lstm, bilstm or markup")
	trainCmd.Flags().IntVar(&trainFlags.epochs, "epochs", 0, "number of epochs (overrides epochs)")
	trainCmd.Flags().StringVarP(&trainFlags.output, "output", "o", "", "model file (overrides model_path)")
	rootCmd.AddCommand(trainCmd)
}

type trainResult struct {
	Epochs     float64
	Duration   time.Duration
	Validation *seqtrain.Evaluation
}

type dataset struct {
	Vocab      *vocab.Vocabulary
	Train      anys2v.SampleList
	Validation anys2v.SampleList
}

func loadDataset(cfg *config.Config, c anyvec.Creator) (*dataset, error) {
	corpus, err := window.ReadCorpus(cfg.SingleFileDataset)
	if err != nil {
		return nil, err
	}
	v, err := vocab.Load(cfg.MappingPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckVocabSize(v.Len()); err != nil {
		return nil, err
	}
	examples, err := window.Generate(corpus, v, cfg.SequenceLength)
	if err != nil {
		return nil, err
	}
	samples := window.NewSampleList(c, v.Len(), examples)
	trainSamples, validation := anysgd.HashSplit(samples, 1-cfg.ValidationSize)
	return &dataset{
		Vocab:      v,
		Train:      trainSamples.(anys2v.SampleList),
		Validation: validation.(anys2v.SampleList),
	}, nil
}

func train(ctx context.Context, cfg *config.Config) (*trainResult, error) {
	log.Println("Setting up...")
	creator := anyvec32.CurrentCreator()

	data, err := loadDataset(cfg, creator)
	if err != nil {
		return nil, err
	}
	log.Printf("%d training and %d validation windows",
		data.Train.Len(), data.Validation.Len())

	kind, opts, err := cfg.ModelOptions()
	if err != nil {
		return nil, err
	}
	model, err := seqmodel.New(creator, kind, data.Vocab.Len(), opts)
	if err != nil {
		return nil, err
	}
	model.SetTraining(true)
	transformer, err := seqtrain.NewTransformer(cfg.Optimizer)
	if err != nil {
		return nil, err
	}

	if data.Train.Len() == 0 {
		return nil, errors.New("train: no training windows")
	}
	t := &anys2v.Trainer{
		Func:    model.Apply,
		Cost:    anynet.DotCost{},
		Params:  model.Parameters(),
		Average: true,
	}

	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() {
		closeOnce.Do(func() { close(done) })
	}
	go func() {
		select {
		case <-ctx.Done():
			finish()
		case <-done:
		}
	}()

	var iterNum int
	var s *anysgd.SGD
	s = &anysgd.SGD{
		Fetcher:     t,
		Gradienter:  t,
		Transformer: transformer,
		Samples:     data.Train,
		Rater:       anysgd.ConstRater(cfg.LearningRate),
		StatusFunc: func(b anysgd.Batch) {
			if seqtrain.Epoch(s) >= float64(cfg.Epochs) {
				finish()
				return
			}
			if iterNum > 0 {
				log.Printf("epoch %.2f iter %d: cost=%v", seqtrain.Epoch(s), iterNum, t.LastCost)
			}
			iterNum++
		},
		BatchSize: cfg.BatchSize,
	}

	log.Println("Press ctrl+c once to stop...")
	start := time.Now()
	err = s.Run(done)
	finish()
	if err != nil {
		return nil, err
	}
	res := &trainResult{Epochs: seqtrain.Epoch(s), Duration: time.Since(start)}

	model.SetTraining(false)
	if data.Validation.Len() > 0 {
		log.Println("Computing validation statistics...")
		res.Validation, err = seqtrain.Evaluate(t, data.Validation, cfg.BatchSize)
		if err != nil {
			return nil, err
		}
	}
	if err := model.Save(cfg.ModelPath); err != nil {
		return nil, err
	}
	return res, nil
}
