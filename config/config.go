// Package config holds the settings shared by the
// preprocessing, training and generation commands.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ankurju/melody"
	"github.com/ankurju/melody/seqmodel"
	"github.com/ankurju/melody/seqtrain"
	"github.com/goccy/go-yaml"
	"github.com/unixpickle/essentials"
)

// Config is the full set of settings.
// Paths are relative to the working directory.
type Config struct {
	// Preprocessing.
	DatasetPath         string    `yaml:"dataset_path"`
	SaveDir             string    `yaml:"save_dir"`
	SingleFileDataset   string    `yaml:"single_file_dataset"`
	MappingPath         string    `yaml:"mapping_path"`
	SequenceLength      int       `yaml:"sequence_length"`
	StepDuration        float64   `yaml:"step_duration"`
	AcceptableDurations []float64 `yaml:"acceptable_durations"`

	// Training.
	ModelKind      string  `yaml:"model_kind"`
	// ModelMarkup is a convmarkup file describing the
	// encoder when model_kind is markup.
	ModelMarkup    string  `yaml:"model_markup"`
	// OutputUnits is the expected vocabulary size.
	// Zero takes the size from the mapping file.
	OutputUnits    int     `yaml:"output_units"`
	NumUnits       []int   `yaml:"num_units"`
	DenseUnits     int     `yaml:"dense_units"`
	DropoutRate    float64 `yaml:"dropout_rate"`
	Optimizer      string  `yaml:"optimizer"`
	LearningRate   float64 `yaml:"learning_rate"`
	Epochs         int     `yaml:"epochs"`
	BatchSize      int     `yaml:"batch_size"`
	ValidationSize float64 `yaml:"validation_size"`
	ModelPath      string  `yaml:"model_path"`

	// Generation.
	NumSteps    int     `yaml:"num_steps"`
	Temperature float64 `yaml:"temperature"`

	Workers int `yaml:"workers"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		DatasetPath:         "deutschl/test",
		SaveDir:             "dataset",
		SingleFileDataset:   "file_dataset",
		MappingPath:         "mapping.json",
		SequenceLength:      64,
		StepDuration:        melody.DefaultTimeStep,
		AcceptableDurations: append([]float64{}, melody.AcceptableDurations...),

		ModelKind:      "lstm",
		OutputUnits:    0,
		NumUnits:       []int{256},
		DenseUnits:     32,
		DropoutRate:    0.2,
		Optimizer:      "adam",
		LearningRate:   0.001,
		Epochs:         50,
		BatchSize:      64,
		ValidationSize: 0.2,
		ModelPath:      "model.bin",

		NumSteps:    500,
		Temperature: 0.3,

		Workers: 4,
	}
}

// Load reads a YAML file over the defaults.
// Settings missing from the file keep their default
// values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, essentials.AddCtx("load config", err)
	}
	res := Default()
	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, essentials.AddCtx("load config", err)
	}
	if err := res.Validate(); err != nil {
		return nil, essentials.AddCtx("load config", err)
	}
	return res, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return essentials.AddCtx("save config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return essentials.AddCtx("save config", err)
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.SequenceLength > 0, "sequence_length must be positive (got %d)", c.SequenceLength)
	check(c.StepDuration > 0, "step_duration must be positive (got %v)", c.StepDuration)
	for _, d := range c.AcceptableDurations {
		check(d > 0, "acceptable duration must be positive (got %v)", d)
	}
	kind, err := seqmodel.ParseKind(c.ModelKind)
	check(err == nil, "model_kind must be lstm, bilstm or markup (got %q)", c.ModelKind)
	check(kind != seqmodel.Markup || c.ModelMarkup != "",
		"model_markup must be set for model_kind markup")
	check(len(c.NumUnits) > 0, "num_units must not be empty")
	for _, n := range c.NumUnits {
		check(n > 0, "num_units must be positive (got %d)", n)
	}
	check(c.DenseUnits > 0, "dense_units must be positive (got %d)", c.DenseUnits)
	check(c.DropoutRate >= 0 && c.DropoutRate < 1, "dropout_rate must be in [0, 1) (got %v)",
		c.DropoutRate)
	check(c.OutputUnits >= 0, "output_units must not be negative (got %d)", c.OutputUnits)
	_, err = seqtrain.NewTransformer(c.Optimizer)
	check(err == nil, "unknown optimizer %q", c.Optimizer)
	check(c.LearningRate > 0, "learning_rate must be positive (got %v)", c.LearningRate)
	check(c.Epochs > 0, "epochs must be positive (got %d)", c.Epochs)
	check(c.BatchSize > 0, "batch_size must be positive (got %d)", c.BatchSize)
	check(c.ValidationSize >= 0 && c.ValidationSize < 1,
		"validation_size must be in [0, 1) (got %v)", c.ValidationSize)
	check(c.NumSteps >= 0, "num_steps must not be negative (got %d)", c.NumSteps)
	check(c.Temperature > 0, "temperature must be positive (got %v)", c.Temperature)
	check(c.Workers >= 0, "workers must not be negative (got %d)", c.Workers)
	return errors.Join(errs...)
}

// CheckVocabSize checks a vocabulary size against
// output_units.
func (c *Config) CheckVocabSize(size int) error {
	if c.OutputUnits != 0 && c.OutputUnits != size {
		return fmt.Errorf("output_units is %d but the vocabulary has %d symbols",
			c.OutputUnits, size)
	}
	return nil
}

// ModelOptions translates the training settings into
// options for seqmodel.New.
func (c *Config) ModelOptions() (seqmodel.Kind, seqmodel.Options, error) {
	kind, err := seqmodel.ParseKind(c.ModelKind)
	if err != nil {
		return 0, seqmodel.Options{}, err
	}
	opts := seqmodel.DefaultOptions(kind)
	if len(c.NumUnits) > 0 {
		opts.Hidden = c.NumUnits[0]
	}
	opts.Dense = c.DenseUnits
	opts.DropoutRate = c.DropoutRate
	if kind == seqmodel.Markup {
		code, err := os.ReadFile(c.ModelMarkup)
		if err != nil {
			return 0, seqmodel.Options{}, essentials.AddCtx("read model markup", err)
		}
		opts.Markup = string(code)
	}
	return kind, opts, nil
}
