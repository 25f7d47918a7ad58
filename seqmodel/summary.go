package seqmodel

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var l LastStep
	serializer.RegisterTypedDeserializer(l.SerializerType(), DeserializeLastStep)
	var b BidirSummary
	serializer.RegisterTypedDeserializer(b.SerializerType(), DeserializeBidirSummary)
}

// A Summarizer reduces an encoded sequence batch to one
// vector per sequence.
//
// Every sequence in the batch must have the same length.
type Summarizer interface {
	Summarize(in anyseq.Seq) anydiff.Res
}

// LastStep is a Summarizer which keeps the final
// timestep.
type LastStep struct{}

// DeserializeLastStep deserializes a LastStep.
func DeserializeLastStep(d []byte) (*LastStep, error) {
	return &LastStep{}, nil
}

// Summarize returns the final timestep.
func (l *LastStep) Summarize(in anyseq.Seq) anydiff.Res {
	return lastStep(in)
}

// SerializerType returns the unique ID used to serialize
// a LastStep with the serializer package.
func (l *LastStep) SerializerType() string {
	return "github.com/ankurju/melody/seqmodel.LastStep"
}

// Serialize serializes the LastStep.
func (l *LastStep) Serialize() ([]byte, error) {
	return []byte{}, nil
}

// BidirSummary is the final layer of a bidirectional
// encoder.
//
// The forward block reads the window in order and the
// backward block reads it in reverse. Each block's last
// output has seen the whole window; the two are combined
// with the Mixer, forward first.
type BidirSummary struct {
	Forward  anyrnn.Block
	Backward anyrnn.Block
	Mixer    anynet.Mixer
}

// DeserializeBidirSummary deserializes a BidirSummary.
func DeserializeBidirSummary(d []byte) (*BidirSummary, error) {
	var res BidirSummary
	err := serializer.DeserializeAny(d, &res.Forward, &res.Backward, &res.Mixer)
	if err != nil {
		return nil, essentials.AddCtx("deserialize BidirSummary", err)
	}
	return &res, nil
}

// Summarize runs both blocks over the full window.
func (b *BidirSummary) Summarize(in anyseq.Seq) anydiff.Res {
	return anyseq.PoolToVec(in, func(in anyseq.Seq) anydiff.Res {
		forw := lastStep(anyrnn.Map(in, b.Forward))
		back := lastStep(anyrnn.Map(anyseq.Reverse(in), b.Backward))
		steps := in.Output()
		return b.Mixer.Mix(forw, back, steps[len(steps)-1].NumPresent())
	})
}

// Parameters returns the parameters of the blocks and
// Mixer if they implement anynet.Parameterizer.
func (b *BidirSummary) Parameters() []*anydiff.Var {
	return anynet.AllParameters(b.Forward, b.Backward, b.Mixer)
}

// SerializerType returns the unique ID used to serialize
// a BidirSummary with the serializer package.
func (b *BidirSummary) SerializerType() string {
	return "github.com/ankurju/melody/seqmodel.BidirSummary"
}

// Serialize serializes the BidirSummary.
func (b *BidirSummary) Serialize() ([]byte, error) {
	return serializer.SerializeAny(b.Forward, b.Backward, b.Mixer)
}
