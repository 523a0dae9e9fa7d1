// Package sparse reduces densely evaluated joint curves to the keys where something changes.
package sparse

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/interp"
)

// Evaluator returns the transform of output slot at time t.
type Evaluator func(t float32, slot int) anm.Transform

// CandidateTimes is the sorted union of every key time of the tracks, plus 0 and end.
// Times outside [0, end] are dropped when end is positive.
func CandidateTimes(tracks []*anm.JointTracks, end float32) []float32 {
	times := []float32{0, end}
	for _, jt := range tracks {
		times = jt.Times(times)
	}
	if end > 0 {
		times = slices.DeleteFunc(times, func(t float32) bool { return t < 0 || t > end })
	}
	slices.Sort(times)
	return slices.Compact(times)
}

// FrameTimes lists f * secondsPerFrame for every frame.
func FrameTimes(numFrames int, secondsPerFrame float32) []float32 {
	if numFrames < 1 {
		numFrames = 1
	}
	times := make([]float32, numFrames)
	for f := range times {
		times[f] = float32(f) * secondsPerFrame
	}
	return times
}

func snapshot(t float32, numSlots int, eval Evaluator) []anm.Transform {
	poses := make([]anm.Transform, numSlots)
	for slot := range poses {
		poses[slot] = eval(t, slot)
	}
	return poses
}

func differs(a, b float32, tol float32) bool {
	return float32(math.Abs(float64(a-b))) > tol
}

func vecDiffers(a, b mgl32.Vec3, tol float32) bool {
	return differs(a[0], b[0], tol) || differs(a[1], b[1], tol) || differs(a[2], b[2], tol)
}

// rotDiffers treats q and -q as the same rotation.
func rotDiffers(a, b mgl32.Quat, tol float32) bool {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return vecDiffers(a.V, b.V, tol) || differs(a.W, b.W, tol)
}

// segment evaluates the curve a consumer rebuilds between two adjacent keys.
func segment(from, to anm.PoseKey, t float32, slot int, mode anm.Interpolation) anm.Transform {
	a, b := from.Poses[slot], to.Poses[slot]
	return anm.Transform{
		Translation: interp.Vector(anm.VectorTrack{{Time: from.Time, Value: a.Translation}, {Time: to.Time, Value: b.Translation}}, t, a.Translation, mode),
		Rotation:    interp.Rotation(anm.QuatTrack{{Time: from.Time, Value: a.Rotation}, {Time: to.Time, Value: b.Rotation}}, t, a.Rotation, mode),
		Scale:       interp.Vector(anm.VectorTrack{{Time: from.Time, Value: a.Scale}, {Time: to.Time, Value: b.Scale}}, t, a.Scale, mode),
	}
}

// covers reports whether the segment from -> to reproduces every skipped
// snapshot within tol.
func covers(from, to anm.PoseKey, skipped []anm.PoseKey, mode anm.Interpolation, tol float32) bool {
	for _, k := range skipped {
		for slot, want := range k.Poses {
			got := segment(from, to, k.Time, slot, mode)
			if vecDiffers(got.Translation, want.Translation, tol) ||
				vecDiffers(got.Scale, want.Scale, tol) ||
				rotDiffers(got.Rotation, want.Rotation, tol) {
				return false
			}
		}
	}
	return true
}

// Synthesize evaluates every candidate time and keeps only the snapshots needed
// to reproduce the curves with mode interpolation. Each skipped snapshot is
// checked against the segment between the keys around it; when the segment
// to the current time stops covering them, the previous snapshot becomes a
// key. The first and last times are always emitted.
func Synthesize(times []float32, numSlots int, eval Evaluator, tol float32, mode anm.Interpolation) []anm.PoseKey {
	if len(times) == 0 {
		return nil
	}

	keys := []anm.PoseKey{{Time: times[0], Poses: snapshot(times[0], numSlots, eval)}}
	var skipped []anm.PoseKey
	for i := 1; i < len(times); i++ {
		cur := anm.PoseKey{Time: times[i], Poses: snapshot(times[i], numSlots, eval)}
		if len(skipped) != 0 && !covers(keys[len(keys)-1], cur, skipped, mode, tol) {
			keys = append(keys, skipped[len(skipped)-1])
			skipped = skipped[:0]
		}
		if i == len(times)-1 {
			keys = append(keys, cur)
		} else {
			skipped = append(skipped, cur)
		}
	}
	return keys
}

// Dense evaluates every time without reduction.
func Dense(times []float32, numSlots int, eval Evaluator) []anm.PoseKey {
	keys := make([]anm.PoseKey, len(times))
	for i, t := range times {
		keys[i] = anm.PoseKey{Time: t, Poses: snapshot(t, numSlots, eval)}
	}
	return keys
}

// AssignFrames numbers keys by 1-based frame at rate.
func AssignFrames(keys []anm.PoseKey, rate float32) {
	for i := range keys {
		keys[i].Frame = int(math.Round(float64(keys[i].Time*rate))) + 1
	}
}

// SlotTracks turns the keys of one output slot back into a track set.
func SlotTracks(keys []anm.PoseKey, slot int) *anm.JointTracks {
	jt := &anm.JointTracks{
		Translation: make(anm.VectorTrack, len(keys)),
		Rotation:    make(anm.QuatTrack, len(keys)),
		Scale:       make(anm.VectorTrack, len(keys)),
	}
	for i, k := range keys {
		p := k.Poses[slot]
		jt.Translation[i] = anm.VectorKey{Time: k.Time, Value: p.Translation}
		jt.Rotation[i] = anm.QuatKey{Time: k.Time, Value: p.Rotation}
		jt.Scale[i] = anm.VectorKey{Time: k.Time, Value: p.Scale}
	}
	return jt
}

// Sample evaluates a synthesized curve, as a scene consumer would.
func Sample(keys []anm.PoseKey, t float32, slot int, mode anm.Interpolation) anm.Transform {
	if len(keys) == 0 {
		return anm.IdentityTransform()
	}
	return interp.Joint(SlotTracks(keys, slot), t, keys[0].Poses[slot], mode)
}
