package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func Lerp[T constraints.Float](a, b, alpha T) T {
	return a + (b-a)*alpha
}

// NormalizeQuat renormalizes in float64 so that decoded keys land on the
// unit sphere well within float32 precision. Zero quaternions become identity.
func NormalizeQuat(q mgl32.Quat) mgl32.Quat {
	x, y, z, w := float64(q.V[0]), float64(q.V[1]), float64(q.V[2]), float64(q.W)
	l := math.Sqrt(x*x + y*y + z*z + w*w)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{
		W: float32(w / l),
		V: mgl32.Vec3{float32(x / l), float32(y / l), float32(z / l)},
	}
}

// QuatW recovers the non-negative scalar part of a unit quaternion from its vector part.
func QuatW(x, y, z float32) float32 {
	ww := 1 - float64(x)*float64(x) - float64(y)*float64(y) - float64(z)*float64(z)
	if ww <= 0 {
		return 0
	}
	return float32(math.Sqrt(ww))
}

func Vec3ApproxEqual(a, b mgl32.Vec3, tol float32) bool {
	for i := range a {
		if float32(math.Abs(float64(a[i]-b[i]))) > tol {
			return false
		}
	}
	return true
}

func QuatApproxEqual(a, b mgl32.Quat, tol float32) bool {
	return float32(math.Abs(float64(a.W-b.W))) <= tol && Vec3ApproxEqual(a.V, b.V, tol)
}

// RotationApproxEqual treats q and -q as the same rotation.
func RotationApproxEqual(a, b mgl32.Quat, tol float32) bool {
	return QuatApproxEqual(a, b, tol) || QuatApproxEqual(a, b.Scale(-1), tol)
}
