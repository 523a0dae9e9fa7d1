package compression

import (
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

// Timing carries the sequence metadata needed to place keys in time.
type Timing struct {
	NumFrames       int
	Length          float32
	SecondsPerFrame float32
}

func TimingFor(info anm.SequenceInfo) Timing {
	return Timing{
		NumFrames:       info.NumFrames,
		Length:          info.Length,
		SecondsPerFrame: info.SecondsPerFrame(),
	}
}

// frame indices are stored as bytes for short sequences
func (t Timing) byteIndices() bool {
	return t.NumFrames < 256
}

// ImplicitTimes spreads numKeys keys evenly over the sequence.
func (t Timing) ImplicitTimes(numKeys int) []float32 {
	times := make([]float32, numKeys)
	if numKeys <= 1 {
		return times
	}
	for i := range times {
		if t.Length > 0 {
			times[i] = float32(i) * t.Length / float32(numKeys-1)
		} else {
			times[i] = float32(i) * t.SecondsPerFrame
		}
	}
	return times
}

// readExplicitTimes reads one frame index per key and leaves the cursor 4-byte aligned.
func (t Timing) readExplicitTimes(bs *utils.BufStack, numKeys int) ([]float32, error) {
	times := make([]float32, numKeys)
	prev := -1
	for i := range times {
		var frame int
		if t.byteIndices() {
			frame = int(bs.ReadByte())
		} else {
			frame = int(bs.ReadLU16())
		}
		if err := bs.Err(); err != nil {
			return nil, errors.Wrapf(anm.ErrMalformedStream, "time key %d: %v", i, err)
		}
		if t.NumFrames > 0 && frame >= t.NumFrames {
			return nil, errors.Wrapf(anm.ErrMalformedStream, "time key %d: frame %d out of %d", i, frame, t.NumFrames)
		}
		if frame <= prev {
			return nil, errors.Wrapf(anm.ErrMalformedStream, "time key %d: frame %d after %d", i, frame, prev)
		}
		prev = frame
		times[i] = float32(frame) * t.SecondsPerFrame
	}
	bs.Align(4)
	return times, nil
}
