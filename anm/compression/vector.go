package compression

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

func readVec3(bs *utils.BufStack) mgl32.Vec3 {
	return mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()}
}

// keyFormat returns the format the key block is actually stored in.
// A single key cannot define a range, so interval tracks fall back to raw floats.
func (h TrackHeader) keyFormat() Format {
	if h.NumKeys == 1 && h.Format == FormatIntervalFixed32 {
		return FormatFloat96
	}
	return h.Format
}

var intervalDivisor = mgl32.Vec3{packedMaxX, packedMaxY, packedMaxZ}

func dequantizeInterval(u uint32, min, rng mgl32.Vec3) mgl32.Vec3 {
	x, y, z := unpack111110(u)
	return mgl32.Vec3{
		float32(x)*rng[0]/intervalDivisor[0] + min[0],
		float32(y)*rng[1]/intervalDivisor[1] + min[1],
		float32(z)*rng[2]/intervalDivisor[2] + min[2],
	}
}

// keySize is the stored size of one key, 0 for unknown formats.
func keySize(format Format, rotation bool) int {
	switch format {
	case FormatNone:
		if rotation {
			return 16
		}
		return 12
	case FormatFloat96:
		return 12
	case FormatFixed48:
		return 6
	case FormatIntervalFixed32, FormatFixed32, FormatFloat32:
		return 4
	default:
		return 0
	}
}

// checkKeyBlock rejects key counts the remaining stream cannot hold, before
// anything is allocated for them.
func checkKeyBlock(bs *utils.BufStack, h TrackHeader, format Format, rotation bool) error {
	if err := bs.Err(); err != nil {
		return errors.Wrapf(anm.ErrMalformedStream, "%v range: %v", format, err)
	}
	if need := h.NumKeys * keySize(format, rotation); need > bs.Remaining() {
		return errors.Wrapf(anm.ErrMalformedStream, "%d %v keys need %d bytes, %d left", h.NumKeys, format, need, bs.Remaining())
	}
	return nil
}

func dequantizeFixed48(u uint16) float32 {
	return (float32(u)/65535 - 0.5) * 2
}

// decodeVectorKeys reads the key block of a translation or scale track.
// identity is the value emitted by FormatIdentity tracks.
func decodeVectorKeys(bs *utils.BufStack, h TrackHeader, identity mgl32.Vec3) ([]mgl32.Vec3, error) {
	format := h.keyFormat()
	if format == FormatIdentity {
		return []mgl32.Vec3{identity}, nil
	}

	var min, rng mgl32.Vec3
	if format == FormatIntervalFixed32 {
		min = readVec3(bs)
		rng = readVec3(bs)
	}
	if err := checkKeyBlock(bs, h, format, false); err != nil {
		return nil, err
	}

	keys := make([]mgl32.Vec3, h.NumKeys)
	for i := range keys {
		switch format {
		case FormatNone, FormatFloat96:
			v := readVec3(bs)
			for c := range v {
				if !h.hasComponent(c) {
					v[c] = 0
				}
			}
			keys[i] = v
		case FormatFixed48:
			keys[i] = mgl32.Vec3{
				dequantizeFixed48(bs.ReadLU16()),
				dequantizeFixed48(bs.ReadLU16()),
				dequantizeFixed48(bs.ReadLU16()),
			}
		case FormatIntervalFixed32:
			keys[i] = dequantizeInterval(bs.ReadLU32(), min, rng)
		case FormatFixed32:
			x, y, z := unpack111110(bs.ReadLU32())
			keys[i] = mgl32.Vec3{
				(float32(x) - 1024) / 2048,
				(float32(y) - 1024) / 2048,
				(float32(z) - 512) / 1024,
			}
		case FormatFloat32:
			f := bs.ReadLF()
			keys[i] = mgl32.Vec3{f, f, f}
		default:
			return nil, errors.Wrapf(anm.ErrMalformedStream, "vector format %v", h.Format)
		}
	}
	if err := bs.Err(); err != nil {
		return nil, errors.Wrapf(anm.ErrMalformedStream, "%v keys: %v", format, err)
	}
	return keys, nil
}
