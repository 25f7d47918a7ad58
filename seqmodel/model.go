// Package seqmodel implements recurrent next-symbol
// models for encoded melodies.
//
// A Model reads a window of one-hot vectors and produces
// log probabilities for the symbol that follows it.
package seqmodel

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var m Model
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeModel)
}

// Kind identifies a model architecture.
type Kind int

const (
	// LSTM is a single LSTM layer followed by a dense head.
	LSTM Kind = iota

	// BiLSTM is two bidirectional LSTM layers followed by
	// a dense head.
	BiLSTM

	// Markup is a recurrent encoder described in
	// convmarkup (see Options.Markup) followed by a dense
	// head.
	Markup
)

// ParseKind parses "lstm", "bilstm" or "markup".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "lstm":
		return LSTM, nil
	case "bilstm":
		return BiLSTM, nil
	case "markup":
		return Markup, nil
	default:
		return 0, fmt.Errorf("unknown model kind: %s", s)
	}
}

// String returns the name accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case LSTM:
		return "lstm"
	case BiLSTM:
		return "bilstm"
	case Markup:
		return "markup"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Options configures a new Model.
type Options struct {
	// Hidden is the total recurrent state size per layer.
	// For BiLSTM it is split between the two directions.
	Hidden int

	// Dense is the size of each hidden dense layer.
	Dense int

	// DenseLayers is the number of hidden dense layers.
	DenseLayers int

	// DropoutRate is the probability of dropping an
	// activation during training.
	DropoutRate float64

	// Markup describes the encoder of a Markup model.
	// Hidden is ignored for Markup models.
	Markup string
}

// DefaultOptions returns the options for a Kind.
func DefaultOptions(k Kind) Options {
	hidden := 256
	if k == BiLSTM {
		hidden = 512
	}
	return Options{
		Hidden:      hidden,
		Dense:       32,
		DenseLayers: 2,
		DropoutRate: 0.2,
	}
}

// A Model maps one-hot windows to log probabilities.
type Model struct {
	Kind      Kind
	VocabSize int

	// Encoders process the window one timestep at a time.
	Encoders EncoderStack

	// Summary reduces the encoded window to one vector.
	Summary Summarizer

	// Head maps the summary to log probabilities.
	Head anynet.Net
}

// New creates a randomly initialized model.
//
// Dropout starts out disabled; see SetTraining.
func New(c anyvec.Creator, k Kind, vocabSize int, opts Options) (*Model, error) {
	if vocabSize < 1 {
		return nil, fmt.Errorf("new model: invalid vocabulary size %d", vocabSize)
	}
	if (opts.Hidden < 1 && k != Markup) || opts.Dense < 1 || opts.DenseLayers < 0 {
		return nil, errors.New("new model: invalid layer sizes")
	}
	if opts.DropoutRate < 0 || opts.DropoutRate >= 1 {
		return nil, fmt.Errorf("new model: invalid dropout rate %f", opts.DropoutRate)
	}
	keepProb := 1 - opts.DropoutRate

	res := &Model{Kind: k, VocabSize: vocabSize, Summary: &LastStep{}}
	var encOut int
	switch k {
	case LSTM:
		res.Encoders = EncoderStack{
			&Recurrent{Block: anyrnn.NewLSTM(c, vocabSize, opts.Hidden)},
		}
		encOut = opts.Hidden
	case BiLSTM:
		half := opts.Hidden / 2
		if half < 1 {
			return nil, errors.New("new model: hidden size too small")
		}
		res.Encoders = EncoderStack{
			&anyrnn.Bidir{
				Forward:  anyrnn.NewLSTM(c, vocabSize, half),
				Backward: anyrnn.NewLSTM(c, vocabSize, half),
				Mixer:    anynet.ConcatMixer{},
			},
			&Pointwise{Layer: &anynet.Dropout{KeepProb: keepProb}},
		}
		res.Summary = &BidirSummary{
			Forward:  anyrnn.NewLSTM(c, half*2, half),
			Backward: anyrnn.NewLSTM(c, half*2, half),
			Mixer:    anynet.ConcatMixer{},
		}
		encOut = half * 2
	case Markup:
		block, out, err := realizeMarkup(c, opts.Markup, vocabSize)
		if err != nil {
			return nil, essentials.AddCtx("new model", err)
		}
		res.Encoders = EncoderStack{&Recurrent{Block: block}}
		encOut = out
	default:
		return nil, fmt.Errorf("new model: unknown kind %v", k)
	}

	res.Head = anynet.Net{&anynet.Dropout{KeepProb: keepProb}}
	in := encOut
	for i := 0; i < opts.DenseLayers; i++ {
		res.Head = append(res.Head, anynet.NewFC(c, in, opts.Dense), anynet.ReLU)
		in = opts.Dense
	}
	res.Head = append(res.Head, anynet.NewFC(c, in, vocabSize), anynet.LogSoftmax)
	res.SetTraining(false)
	return res, nil
}

// DeserializeModel deserializes a Model.
func DeserializeModel(d []byte) (*Model, error) {
	var kind, size serializer.Int
	var res Model
	err := serializer.DeserializeAny(d, &kind, &size, &res.Encoders, &res.Summary, &res.Head)
	if err != nil {
		return nil, essentials.AddCtx("deserialize Model", err)
	}
	res.Kind = Kind(kind)
	res.VocabSize = int(size)
	return &res, nil
}

// Apply computes log probabilities for a batch of
// equal-length windows.
func (m *Model) Apply(in anyseq.Seq) anydiff.Res {
	enc := m.Summary.Summarize(m.Encoders.Apply(in))
	steps := in.Output()
	return m.Head.Apply(enc, steps[len(steps)-1].NumPresent())
}

// Predict computes the probability distribution over the
// symbol following a window.
//
// Predict does not modify the model, so it may be called
// concurrently as long as SetTraining is not.
func (m *Model) Predict(window []anyvec.Vector) (anyvec.Vector, error) {
	if len(window) == 0 {
		return nil, errors.New("predict: empty window")
	}
	for i, v := range window {
		if v.Len() != m.VocabSize {
			return nil, fmt.Errorf("predict: timestep %d has size %d (expected %d)",
				i, v.Len(), m.VocabSize)
		}
	}
	seq := anyseq.ConstSeqList(window[0].Creator(), [][]anyvec.Vector{window})
	return anydiff.Exp(m.Apply(seq)).Output(), nil
}

// Parameters returns every trainable parameter.
func (m *Model) Parameters() []*anydiff.Var {
	res := m.Encoders.Parameters()
	if p, ok := m.Summary.(anynet.Parameterizer); ok {
		res = append(res, p.Parameters()...)
	}
	return append(res, m.Head.Parameters()...)
}

// Creator returns the creator used by the model's
// parameters.
func (m *Model) Creator() anyvec.Creator {
	return m.Parameters()[0].Vector.Creator()
}

// SetTraining enables or disables every dropout layer.
func (m *Model) SetTraining(training bool) {
	for _, d := range m.dropouts() {
		d.Enabled = training
	}
}

func (m *Model) dropouts() []*anynet.Dropout {
	var res []*anynet.Dropout
	for _, enc := range m.Encoders {
		switch enc := enc.(type) {
		case *Pointwise:
			if d, ok := enc.Layer.(*anynet.Dropout); ok {
				res = append(res, d)
			}
		case *Recurrent:
			if stack, ok := enc.Block.(anyrnn.Stack); ok {
				for _, b := range stack {
					if l, ok := b.(*anyrnn.LayerBlock); ok {
						if d, ok := l.Layer.(*anynet.Dropout); ok {
							res = append(res, d)
						}
					}
				}
			}
		}
	}
	for _, layer := range m.Head {
		if d, ok := layer.(*anynet.Dropout); ok {
			res = append(res, d)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// a Model with the serializer package.
func (m *Model) SerializerType() string {
	return "github.com/ankurju/melody/seqmodel.Model"
}

// Serialize serializes the Model.
func (m *Model) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		serializer.Int(m.Kind),
		serializer.Int(m.VocabSize),
		m.Encoders,
		m.Summary.(serializer.Serializer),
		m.Head,
	)
}

// Save writes the model to a file.
func (m *Model) Save(path string) error {
	if err := serializer.SaveAny(path, m); err != nil {
		return essentials.AddCtx("save model", err)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	var res *Model
	if err := serializer.LoadAny(path, &res); err != nil {
		return nil, essentials.AddCtx("load model", err)
	}
	return res, nil
}
