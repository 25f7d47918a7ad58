package seqmodel

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var r Recurrent
	serializer.RegisterTypedDeserializer(r.SerializerType(), DeserializeRecurrent)
	var p Pointwise
	serializer.RegisterTypedDeserializer(p.SerializerType(), DeserializePointwise)
	var s EncoderStack
	serializer.RegisterTypedDeserializer(s.SerializerType(), DeserializeEncoderStack)
}

// An Encoder maps an input sequence batch to an output
// sequence batch with the same timesteps.
//
// *anyrnn.Bidir is an Encoder.
type Encoder interface {
	Apply(in anyseq.Seq) anyseq.Seq
}

// Recurrent is an Encoder which maps a single block
// forward over the sequence.
type Recurrent struct {
	Block anyrnn.Block
}

// DeserializeRecurrent deserializes a Recurrent.
func DeserializeRecurrent(d []byte) (*Recurrent, error) {
	var res Recurrent
	if err := serializer.DeserializeAny(d, &res.Block); err != nil {
		return nil, essentials.AddCtx("deserialize Recurrent", err)
	}
	return &res, nil
}

// Apply maps the block over the sequence.
func (r *Recurrent) Apply(in anyseq.Seq) anyseq.Seq {
	return anyrnn.Map(in, r.Block)
}

// Parameters returns the block's parameters, if it has
// any.
func (r *Recurrent) Parameters() []*anydiff.Var {
	if p, ok := r.Block.(anynet.Parameterizer); ok {
		return p.Parameters()
	}
	return nil
}

// SerializerType returns the unique ID used to serialize
// a Recurrent with the serializer package.
func (r *Recurrent) SerializerType() string {
	return "github.com/ankurju/melody/seqmodel.Recurrent"
}

// Serialize serializes the Recurrent.
func (r *Recurrent) Serialize() ([]byte, error) {
	return serializer.SerializeAny(r.Block)
}

// An EncoderStack applies Encoders one after another.
type EncoderStack []Encoder

// DeserializeEncoderStack deserializes an EncoderStack.
func DeserializeEncoderStack(d []byte) (EncoderStack, error) {
	slice, err := serializer.DeserializeSlice(d)
	if err != nil {
		return nil, essentials.AddCtx("deserialize EncoderStack", err)
	}
	res := make(EncoderStack, len(slice))
	for i, x := range slice {
		enc, ok := x.(Encoder)
		if !ok {
			return nil, fmt.Errorf("deserialize EncoderStack: not an Encoder: %T", x)
		}
		res[i] = enc
	}
	return res, nil
}

// Apply applies every encoder in order.
func (e EncoderStack) Apply(in anyseq.Seq) anyseq.Seq {
	for _, enc := range e {
		in = enc.Apply(in)
	}
	return in
}

// Parameters returns the parameters of every encoder
// which implements anynet.Parameterizer.
func (e EncoderStack) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, enc := range e {
		if p, ok := enc.(anynet.Parameterizer); ok {
			res = append(res, p.Parameters()...)
		}
	}
	return res
}

// SerializerType returns the unique ID used to serialize
// an EncoderStack with the serializer package.
func (e EncoderStack) SerializerType() string {
	return "github.com/ankurju/melody/seqmodel.EncoderStack"
}

// Serialize serializes the stack.
// Every encoder must be a serializer.Serializer.
func (e EncoderStack) Serialize() ([]byte, error) {
	slice := make([]serializer.Serializer, len(e))
	for i, enc := range e {
		s, ok := enc.(serializer.Serializer)
		if !ok {
			return nil, fmt.Errorf("not a Serializer: %T", enc)
		}
		slice[i] = s
	}
	return serializer.SerializeSlice(slice)
}

// Pointwise is an Encoder which applies a layer to every
// timestep independently.
type Pointwise struct {
	Layer anynet.Layer
}

// DeserializePointwise deserializes a Pointwise.
func DeserializePointwise(d []byte) (*Pointwise, error) {
	var res Pointwise
	if err := serializer.DeserializeAny(d, &res.Layer); err != nil {
		return nil, essentials.AddCtx("deserialize Pointwise", err)
	}
	return &res, nil
}

// Apply applies the layer at each timestep.
func (p *Pointwise) Apply(in anyseq.Seq) anyseq.Seq {
	return anyseq.Map(in, func(v anydiff.Res, n int) anydiff.Res {
		return p.Layer.Apply(v, n)
	})
}

// Parameters returns the layer's parameters, if it has
// any.
func (p *Pointwise) Parameters() []*anydiff.Var {
	if param, ok := p.Layer.(anynet.Parameterizer); ok {
		return param.Parameters()
	}
	return nil
}

// SerializerType returns the unique ID used to serialize
// a Pointwise with the serializer package.
func (p *Pointwise) SerializerType() string {
	return "github.com/ankurju/melody/seqmodel.Pointwise"
}

// Serialize serializes the Pointwise.
func (p *Pointwise) Serialize() ([]byte, error) {
	return serializer.SerializeAny(p.Layer)
}
