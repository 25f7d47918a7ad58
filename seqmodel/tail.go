package seqmodel

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

type lastStepRes struct {
	In  anyseq.Seq
	Out anyvec.Vector
	V   anydiff.VarSet
}

// lastStep produces the packed outputs of the final
// timestep of a sequence batch.
//
// Every sequence in the batch must have the same length.
func lastStep(seq anyseq.Seq) anydiff.Res {
	steps := seq.Output()
	if len(steps) == 0 {
		panic("empty sequence batch")
	}
	last := steps[len(steps)-1]
	if last.NumPresent() != len(last.Present) {
		panic("sequences must have equal lengths")
	}
	return &lastStepRes{In: seq, Out: last.Packed, V: seq.Vars()}
}

func (l *lastStepRes) Output() anyvec.Vector {
	return l.Out
}

func (l *lastStepRes) Vars() anydiff.VarSet {
	return l.V
}

func (l *lastStepRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	if !g.Intersects(l.V) {
		return
	}
	steps := l.In.Output()
	upstream := make([]*anyseq.Batch, len(steps))
	for i, step := range steps {
		packed := u
		if i != len(steps)-1 {
			packed = step.Packed.Creator().MakeVector(step.Packed.Len())
		}
		upstream[i] = &anyseq.Batch{Packed: packed, Present: step.Present}
	}
	l.In.Propagate(upstream, g)
}
