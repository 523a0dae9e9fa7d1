package anm

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "linear"
	case InterpolationStep:
		return "step"
	default:
		return "unknown"
	}
}

type VectorKey struct {
	Time  float32
	Value mgl32.Vec3
}

type QuatKey struct {
	Time  float32
	Value mgl32.Quat
}

// Tracks are time-ascending with unique times. Empty means no data.
type VectorTrack []VectorKey
type QuatTrack []QuatKey

// JointTracks are the decoded curves of one joint. Any of them may be empty.
type JointTracks struct {
	Translation VectorTrack
	Rotation    QuatTrack
	Scale       VectorTrack
}

func (jt *JointTracks) Empty() bool {
	return jt == nil || (len(jt.Translation) == 0 && len(jt.Rotation) == 0 && len(jt.Scale) == 0)
}

// Times appends every key time of the joint to dst.
func (jt *JointTracks) Times(dst []float32) []float32 {
	if jt == nil {
		return dst
	}
	for _, k := range jt.Translation {
		dst = append(dst, k.Time)
	}
	for _, k := range jt.Rotation {
		dst = append(dst, k.Time)
	}
	for _, k := range jt.Scale {
		dst = append(dst, k.Time)
	}
	return dst
}

type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// TrackOffsets point into a compressed byte stream, -1 marks an absent component.
type TrackOffsets struct {
	Translation int32
	Rotation    int32
	Scale       int32
}

const OffsetAbsent = -1

type SequenceInfo struct {
	Name          string
	NumFrames     int
	Length        float32 // seconds
	SampleRate    float32 // declared frames per second
	Interpolation Interpolation
}

// SecondsPerFrame derives the frame step from the declared frame count,
// falling back to the declared rate for single-frame sequences.
func (si SequenceInfo) SecondsPerFrame() float32 {
	if si.NumFrames > 1 {
		return si.Length / float32(si.NumFrames-1)
	}
	if si.SampleRate > 0 {
		return 1 / si.SampleRate
	}
	return 0
}

func (si SequenceInfo) EffectiveRate() float32 {
	if spf := si.SecondsPerFrame(); spf > 0 {
		return 1 / spf
	}
	return si.SampleRate
}
