// Package coord converts between the Z-up source basis and the Y-up scene basis.
package coord

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

// UEToUSD swaps the Y and Z axes and rescales positions (centimetres to metres by default).
// The swap is a reflection, so rotations are conjugated: q' = (w, -x, -z, -y).
type UEToUSD struct {
	UnitScale float32
}

func NewUEToUSD(unitScale float32) UEToUSD {
	return UEToUSD{UnitScale: unitScale}
}

func swapYZ(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[2], v[1]}
}

// BasisMatrix is the change of basis as a matrix, its own inverse.
func BasisMatrix() mgl32.Mat3 {
	return mgl32.Mat3{
		1, 0, 0,
		0, 0, 1,
		0, 1, 0,
	}
}

func (c UEToUSD) ConvertPosition(v mgl32.Vec3) mgl32.Vec3 {
	return swapYZ(v).Mul(c.UnitScale)
}

func (c UEToUSD) ConvertNormal(v mgl32.Vec3) mgl32.Vec3 {
	v = swapYZ(v)
	if l := v.Len(); l > 0 {
		return v.Mul(1 / l)
	}
	return v
}

func (c UEToUSD) ConvertRotation(q mgl32.Quat) mgl32.Quat {
	return utils.NormalizeQuat(mgl32.Quat{W: q.W, V: swapYZ(q.V).Mul(-1)})
}

func (c UEToUSD) ConvertTransform(tr anm.Transform) anm.Transform {
	return anm.Transform{
		Translation: c.ConvertPosition(tr.Translation),
		Rotation:    c.ConvertRotation(tr.Rotation),
		Scale:       swapYZ(tr.Scale),
	}
}
