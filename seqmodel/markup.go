package seqmodel

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anynet/anyconv"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/convmarkup"
)

// realizeMarkup builds a recurrent encoder from a markup
// description such as
//
//	LSTM(out=128)
//	LSTM(out=64)
//
// The Input block is added automatically from inSize.
// It returns the block and its output size.
func realizeMarkup(c anyvec.Creator, code string, inSize int) (anyrnn.Block, int, error) {
	code = fmt.Sprintf("Input(w=1, h=1, d=%d)\n%s", inSize, code)
	parsed, err := convmarkup.Parse(code)
	if err != nil {
		return nil, 0, errors.New("parse markup: " + err.Error())
	}
	block, err := parsed.Block(convmarkup.Dims{}, anyrnn.MarkupCreators())
	if err != nil {
		return nil, 0, errors.New("make markup block: " + err.Error())
	}
	chain := convmarkup.RealizerChain{
		convmarkup.MetaRealizer{},
		anyrnn.Realizer(c, convmarkup.RealizerChain{
			convmarkup.MetaRealizer{},
			anyconv.Realizer(c),
		}),
	}
	instance, _, err := chain.Realize(convmarkup.Dims{}, block)
	if err != nil {
		return nil, 0, errors.New("realize markup block: " + err.Error())
	}
	stack, ok := instance.(anyrnn.Stack)
	if !ok {
		return nil, 0, fmt.Errorf("not an anyrnn.Stack: %T", instance)
	}
	if len(stack) == 0 {
		return nil, 0, errors.New("markup has no blocks")
	}
	return stack, block.OutDims().Volume(), nil
}
