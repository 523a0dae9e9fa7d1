package compression

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// streamWriter is the reference encoder used to build test streams.
type streamWriter struct {
	buf []byte
}

func (w *streamWriter) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *streamWriter) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *streamWriter) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *streamWriter) vec3(v mgl32.Vec3) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
}

func (w *streamWriter) align(n int) {
	for len(w.buf)%n != 0 {
		w.buf = append(w.buf, 0)
	}
}

func quantize(v, scale, bias float32, max uint32) uint32 {
	f := math.Round(float64(v*scale + bias))
	if f < 0 {
		return 0
	}
	if f > float64(max) {
		return max
	}
	return uint32(f)
}

func bounds(values []mgl32.Vec3) (min, rng mgl32.Vec3) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		for c := range v {
			min[c] = float32(math.Min(float64(min[c]), float64(v[c])))
			max[c] = float32(math.Max(float64(max[c]), float64(v[c])))
		}
	}
	return min, max.Sub(min)
}

func encodeInterval(v, min, rng mgl32.Vec3) uint32 {
	var u [3]uint32
	for c := range u {
		if rng[c] != 0 {
			u[c] = quantize((v[c]-min[c])/rng[c], intervalDivisor[c], 0, uint32(intervalDivisor[c]))
		}
	}
	return pack111110(u[0], u[1], u[2])
}

func (w *streamWriter) times(frames []int, numFrames int) {
	w.align(4)
	for _, f := range frames {
		if numFrames < 256 {
			w.buf = append(w.buf, byte(f))
		} else {
			w.u16(uint16(f))
		}
	}
	w.align(4)
}

// vectorTrack appends a track and returns its offset. frames may be nil for implicit times.
func (w *streamWriter) vectorTrack(format Format, mask uint8, values []mgl32.Vec3, frames []int, numFrames int) int32 {
	w.align(4)
	offset := int32(len(w.buf))
	h := TrackHeader{Format: format, Mask: mask, HasTimes: frames != nil, NumKeys: len(values)}
	w.u32(h.Raw())

	keyFormat := h.keyFormat()
	var min, rng mgl32.Vec3
	if keyFormat == FormatIntervalFixed32 {
		min, rng = bounds(values)
		w.vec3(min)
		w.vec3(rng)
	}
	for _, v := range values {
		switch keyFormat {
		case FormatNone, FormatFloat96:
			w.vec3(v)
		case FormatFixed48:
			for c := range v {
				w.u16(uint16(quantize(v[c]/2+0.5, 65535, 0, 65535)))
			}
		case FormatIntervalFixed32:
			w.u32(encodeInterval(v, min, rng))
		case FormatFixed32:
			w.u32(pack111110(
				quantize(v[0], 2048, 1024, packedMaxX),
				quantize(v[1], 2048, 1024, packedMaxY),
				quantize(v[2], 1024, 512, packedMaxZ)))
		case FormatFloat32:
			w.f32(v[0])
		}
	}
	if frames != nil {
		w.times(frames, numFrames)
	}
	return offset
}

func canonical(q mgl32.Quat) mgl32.Quat {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	return q
}

func (w *streamWriter) quatTrack(format Format, values []mgl32.Quat, frames []int, numFrames int) int32 {
	w.align(4)
	offset := int32(len(w.buf))
	h := TrackHeader{Format: format, HasTimes: frames != nil, NumKeys: len(values)}
	w.u32(h.Raw())

	keyFormat := h.keyFormat()
	var min, rng mgl32.Vec3
	if keyFormat == FormatIntervalFixed32 {
		vs := make([]mgl32.Vec3, len(values))
		for i, q := range values {
			vs[i] = canonical(q).V
		}
		min, rng = bounds(vs)
		w.vec3(min)
		w.vec3(rng)
	}
	for _, q := range values {
		q = canonical(q)
		switch keyFormat {
		case FormatNone:
			w.vec3(q.V)
			w.f32(q.W)
		case FormatFloat96:
			w.vec3(q.V)
		case FormatFixed48:
			for c := range q.V {
				w.u16(uint16(quantize(q.V[c], fixed48QuatBias, fixed48QuatBias, 65535)))
			}
		case FormatIntervalFixed32:
			w.u32(encodeInterval(q.V, min, rng))
		case FormatFixed32:
			w.u32(pack111110(
				quantize(q.V[0], fixed32QuatBiasXY, fixed32QuatBiasXY, packedMaxX),
				quantize(q.V[1], fixed32QuatBiasXY, fixed32QuatBiasXY, packedMaxY),
				quantize(q.V[2], fixed32QuatBiasZ, fixed32QuatBiasZ, packedMaxZ)))
		}
	}
	if frames != nil {
		w.times(frames, numFrames)
	}
	return offset
}
