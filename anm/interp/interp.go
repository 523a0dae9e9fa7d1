// Package interp evaluates decoded tracks at arbitrary times.
package interp

import (
	"cmp"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

// locate finds i with times[i] <= t < times[i+1], clamped to the ends of
// the track, and the alpha of t inside that interval. keys must hold at least two entries.
func locate[K any](keys []K, t float32, timeOf func(K) float32) (int, float32) {
	n := len(keys)
	if t <= timeOf(keys[0]) {
		return 0, 0
	}
	if t >= timeOf(keys[n-1]) {
		return n - 2, 1
	}
	idx, found := slices.BinarySearchFunc(keys, t, func(k K, t float32) int {
		return cmp.Compare(timeOf(k), t)
	})
	if found {
		return idx, 0
	}
	i := idx - 1
	t0, t1 := timeOf(keys[i]), timeOf(keys[i+1])
	return i, (t - t0) / (t1 - t0)
}

func vectorTime(k anm.VectorKey) float32 { return k.Time }
func quatTime(k anm.QuatKey) float32     { return k.Time }

// Vector evaluates a translation or scale track, def is the reference value for empty tracks.
func Vector(track anm.VectorTrack, t float32, def mgl32.Vec3, mode anm.Interpolation) mgl32.Vec3 {
	switch len(track) {
	case 0:
		return def
	case 1:
		return track[0].Value
	}
	i, alpha := locate(track, t, vectorTime)
	if mode == anm.InterpolationStep {
		if alpha >= 1 {
			return track[i+1].Value
		}
		return track[i].Value
	}
	a, b := track[i].Value, track[i+1].Value
	return mgl32.Vec3{
		utils.Lerp(a[0], b[0], alpha),
		utils.Lerp(a[1], b[1], alpha),
		utils.Lerp(a[2], b[2], alpha),
	}
}

// Rotation evaluates a rotation track along the shortest arc.
func Rotation(track anm.QuatTrack, t float32, def mgl32.Quat, mode anm.Interpolation) mgl32.Quat {
	switch len(track) {
	case 0:
		return def
	case 1:
		return track[0].Value
	}
	i, alpha := locate(track, t, quatTime)
	if mode == anm.InterpolationStep {
		if alpha >= 1 {
			return track[i+1].Value
		}
		return track[i].Value
	}
	return Slerp(track[i].Value, track[i+1].Value, alpha)
}

// Slerp interpolates unit quaternions, negating b when it lies in the other hemisphere.
func Slerp(a, b mgl32.Quat, alpha float32) mgl32.Quat {
	switch alpha {
	case 0:
		return a
	case 1:
		return b
	}
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return utils.NormalizeQuat(mgl32.QuatSlerp(a, b, alpha))
}

// Joint evaluates all components of a joint, untracked components come from ref.
func Joint(jt *anm.JointTracks, t float32, ref anm.Transform, mode anm.Interpolation) anm.Transform {
	if jt.Empty() {
		return ref
	}
	return anm.Transform{
		Translation: Vector(jt.Translation, t, ref.Translation, mode),
		Rotation:    Rotation(jt.Rotation, t, ref.Rotation, mode),
		Scale:       Vector(jt.Scale, t, ref.Scale, mode),
	}
}
