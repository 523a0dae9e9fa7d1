package compression

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

const (
	fixed48QuatBias   = 32767
	fixed32QuatBiasXY = 1023
	fixed32QuatBiasZ  = 511
)

// quatFromXYZ rebuilds a unit quaternion from its vector part, w >= 0.
func quatFromXYZ(x, y, z float32) mgl32.Quat {
	return utils.NormalizeQuat(mgl32.Quat{W: utils.QuatW(x, y, z), V: mgl32.Vec3{x, y, z}})
}

// decodeQuatKeys reads the key block of a rotation track. Every key is
// renormalised, so the output is on the unit sphere whatever the quantization error.
func decodeQuatKeys(bs *utils.BufStack, h TrackHeader) ([]mgl32.Quat, error) {
	format := h.keyFormat()
	switch format {
	case FormatIdentity:
		return []mgl32.Quat{mgl32.QuatIdent()}, nil
	case FormatFloat32:
		return nil, errors.Wrapf(anm.ErrMalformedStream, "rotation format %v", format)
	}

	var min, rng mgl32.Vec3
	if format == FormatIntervalFixed32 {
		min = readVec3(bs)
		rng = readVec3(bs)
	}
	if err := checkKeyBlock(bs, h, format, true); err != nil {
		return nil, err
	}

	keys := make([]mgl32.Quat, h.NumKeys)
	for i := range keys {
		switch format {
		case FormatNone:
			v := readVec3(bs)
			keys[i] = utils.NormalizeQuat(mgl32.Quat{W: bs.ReadLF(), V: v})
		case FormatFloat96:
			v := readVec3(bs)
			keys[i] = quatFromXYZ(v[0], v[1], v[2])
		case FormatFixed48:
			x := (float32(bs.ReadLU16()) - fixed48QuatBias) / fixed48QuatBias
			y := (float32(bs.ReadLU16()) - fixed48QuatBias) / fixed48QuatBias
			z := (float32(bs.ReadLU16()) - fixed48QuatBias) / fixed48QuatBias
			keys[i] = quatFromXYZ(x, y, z)
		case FormatIntervalFixed32:
			v := dequantizeInterval(bs.ReadLU32(), min, rng)
			keys[i] = quatFromXYZ(v[0], v[1], v[2])
		case FormatFixed32:
			ux, uy, uz := unpack111110(bs.ReadLU32())
			keys[i] = quatFromXYZ(
				(float32(ux)-fixed32QuatBiasXY)/fixed32QuatBiasXY,
				(float32(uy)-fixed32QuatBiasXY)/fixed32QuatBiasXY,
				(float32(uz)-fixed32QuatBiasZ)/fixed32QuatBiasZ)
		default:
			return nil, errors.Wrapf(anm.ErrMalformedStream, "rotation format %v", h.Format)
		}
	}
	if err := bs.Err(); err != nil {
		return nil, errors.Wrapf(anm.ErrMalformedStream, "%v rotation keys: %v", format, err)
	}
	return keys, nil
}
