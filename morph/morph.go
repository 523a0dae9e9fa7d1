// Package morph rebuilds blend shape vertex offsets from quantized delta batches.
package morph

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/utils"
)

var (
	ErrBatchRange    = errors.New("morph batch range out of bounds")
	ErrUnknownTarget = errors.New("unknown morph target")
)

type TargetError struct {
	Target string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("morph target %q: %v", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error { return e.Err }

func (e *TargetError) Cause() error { return e.Err }

type QuantizedDelta struct {
	VertexIndex uint32
	Position    [3]int32
	TangentZ    [3]int32
}

type Batch struct {
	PositionMin mgl32.Vec3
	TangentZMin mgl32.Vec3
	HasTangents bool
	Deltas      []QuantizedDelta
}

// Buffers hold the quantized batches of every target of a mesh.
// Target i owns Batches[BatchStartOffsetPerMorph[i]:][:BatchesPerMorph[i]].
type Buffers struct {
	Batches                  []Batch
	BatchStartOffsetPerMorph []int
	BatchesPerMorph          []int
	PositionPrecision        float32
	TangentZPrecision        float32
}

// Delta is an already expanded vertex offset.
type Delta struct {
	VertexIndex uint32
	Position    mgl32.Vec3
	TangentZ    mgl32.Vec3
}

type Target struct {
	Name  string
	Index int // into the Buffers range tables
	// Predecoded deltas are used verbatim when present.
	Predecoded []Delta
}

type VertexOffset struct {
	VertexIndex  uint32
	Position     mgl32.Vec3
	PackedNormal [3]uint8
	Normal       mgl32.Vec3 // PackedNormal read back, zero without tangent data
}

type TargetResult struct {
	Name    string
	Offsets []VertexOffset
}

// Converter maps positions and directions into the output basis.
type Converter interface {
	ConvertPosition(v mgl32.Vec3) mgl32.Vec3
	ConvertNormal(v mgl32.Vec3) mgl32.Vec3
}

// PackNormal stores every component as round((c+1)*127.5) in [0,255].
func PackNormal(n mgl32.Vec3) [3]uint8 {
	var p [3]uint8
	for i, c := range n {
		p[i] = uint8(utils.Clamp(math.Round(float64(c+1)*127.5), 0, 255))
	}
	return p
}

func UnpackNormal(p [3]uint8) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(p[0])/127.5 - 1,
		float32(p[1])/127.5 - 1,
		float32(p[2])/127.5 - 1,
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return v
}

func dequantize(q [3]int32, min mgl32.Vec3, precision float32) mgl32.Vec3 {
	return mgl32.Vec3{
		(float32(q[0]) + min[0]) * precision,
		(float32(q[1]) + min[1]) * precision,
		(float32(q[2]) + min[2]) * precision,
	}
}

func (b *Buffers) batchRange(index int) (start, count int, err error) {
	if index < 0 || index >= len(b.BatchStartOffsetPerMorph) || index >= len(b.BatchesPerMorph) {
		return 0, 0, errors.Wrapf(ErrUnknownTarget, "index %d of %d", index, len(b.BatchesPerMorph))
	}
	start, count = b.BatchStartOffsetPerMorph[index], b.BatchesPerMorph[index]
	if start < 0 || count < 0 || start+count > len(b.Batches) {
		return 0, 0, errors.Wrapf(ErrBatchRange, "batches [%d:+%d] of %d", start, count, len(b.Batches))
	}
	return start, count, nil
}

func makeOffset(vertex uint32, position, tangent mgl32.Vec3, hasTangent bool, conv Converter) VertexOffset {
	if conv != nil {
		position = conv.ConvertPosition(position)
	}
	off := VertexOffset{VertexIndex: vertex, Position: position}
	if hasTangent {
		n := normalize(tangent)
		if conv != nil {
			n = conv.ConvertNormal(n)
		}
		off.PackedNormal = PackNormal(n)
		off.Normal = UnpackNormal(off.PackedNormal)
	} else {
		off.PackedNormal = PackNormal(mgl32.Vec3{})
	}
	return off
}

// Dequantize expands one target. buf may be nil when the target is predecoded.
func Dequantize(buf *Buffers, target *Target, conv Converter) (*TargetResult, error) {
	res := &TargetResult{Name: target.Name}

	if len(target.Predecoded) != 0 {
		res.Offsets = make([]VertexOffset, len(target.Predecoded))
		for i, d := range target.Predecoded {
			res.Offsets[i] = makeOffset(d.VertexIndex, d.Position, d.TangentZ, d.TangentZ != (mgl32.Vec3{}), conv)
		}
		return res, nil
	}

	if buf == nil {
		return nil, &TargetError{Target: target.Name, Err: errors.Wrapf(ErrUnknownTarget, "no batch buffers")}
	}
	start, count, err := buf.batchRange(target.Index)
	if err != nil {
		return nil, &TargetError{Target: target.Name, Err: err}
	}
	for _, batch := range buf.Batches[start : start+count] {
		for _, q := range batch.Deltas {
			position := dequantize(q.Position, batch.PositionMin, buf.PositionPrecision)
			var tangent mgl32.Vec3
			if batch.HasTangents {
				tangent = dequantize(q.TangentZ, batch.TangentZMin, buf.TangentZPrecision)
			}
			res.Offsets = append(res.Offsets, makeOffset(q.VertexIndex, position, tangent, batch.HasTangents, conv))
		}
	}
	return res, nil
}
