// Command melody preprocesses folk-song datasets, trains
// next-symbol models and generates new melodies.
//
// Usage:
//
//	melody [--config melody.yaml] <command> [flags]
//
// Commands:
//
//	preprocess - encode a dataset of event files into a corpus
//	train      - train an LSTM or BiLSTM model on the corpus
//	generate   - extend a seed melody with a trained model
//	analyze    - score a melody's novelty against the dataset
//	compare    - evaluate several trained models side by side
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ankurju/melody/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "melody",
	Short:         "Symbolic melody generation",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML configuration file (defaults are used when empty)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
