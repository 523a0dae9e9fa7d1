package export

import (
	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/morph"
)

// Sink receives fully computed results only, in input order.
// Calls are made from a single goroutine.
type Sink interface {
	WriteSequence(res *anm.SequenceResult) error
	WriteMorphTarget(res *morph.TargetResult) error
}
