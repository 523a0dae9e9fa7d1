package export

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/interp"
	"github.com/mogaika/skelanim/anm/sparse"
	"github.com/mogaika/skelanim/utils"
)

// ExportSequence decodes and resamples one sequence. The result is complete
// or nil: any fatal error comes back as *anm.SequenceError.
func ExportSequence(seq *Sequence, skel *anm.ReferencePose, opts *Options) (*anm.SequenceResult, error) {
	if opts == nil {
		def := DefaultOptions()
		opts = &def
	}
	codec := seq.codecName()
	l := opts.logger().With("sequence", seq.Info.Name, "codec", codec)
	fail := func(err error) (*anm.SequenceResult, error) {
		return nil, &anm.SequenceError{Sequence: seq.Info.Name, Codec: codec, Err: err}
	}

	if err := skel.Validate(); err != nil {
		return fail(err)
	}
	d, err := decode(seq, skel, opts, l)
	if err != nil {
		return fail(err)
	}

	joints := skel.UsedJoints(validJoints(seq.TrackMap, skel), opts.OptimizeJoints)
	eval := evaluator(d, skel, joints, seq.Info.Interpolation, opts)

	var keys []anm.PoseKey
	if opts.Dense {
		keys = sparse.Dense(d.FrameTimes, len(joints), eval)
	} else {
		keys = sparse.Synthesize(sparse.CandidateTimes(d.Tracks, d.End), len(joints), eval, opts.Tolerance, seq.Info.Interpolation)
	}
	if len(keys) == 0 {
		return fail(errors.Errorf("no keys produced"))
	}
	sparse.AssignFrames(keys, d.Rate)

	l.Debug("Exported sequence", "joints", len(joints), "keys", len(keys), "rate", d.Rate)

	var codecTag anm.CodecTag
	if seq.Data != nil {
		codecTag = seq.Data.Codec()
	}
	return &anm.SequenceResult{
		Name:          seq.Info.Name,
		Codec:         codecTag,
		SampleRate:    d.Rate,
		StartFrame:    keys[0].Frame,
		EndFrame:      keys[len(keys)-1].Frame,
		Interpolation: seq.Info.Interpolation,
		Sparse:        !opts.Dense,
		Joints:        joints,
		JointPaths:    skel.JointPaths(joints, opts.ASCIINames),
		Keys:          keys,
	}, nil
}

func validJoints(trackMap []int, skel *anm.ReferencePose) []int {
	joints := make([]int, 0, len(trackMap))
	for _, joint := range trackMap {
		if skel.ValidJoint(joint) {
			joints = append(joints, joint)
		}
	}
	return joints
}

// roundQuat rounds through binary16 and renormalises, the rounding alone
// leaves the quaternion up to about 1e-3 off unit length.
func roundQuat(q mgl32.Quat) mgl32.Quat {
	return utils.NormalizeQuat(mgl32.Quat{W: utils.HalfRound(q.W), V: utils.HalfRound3(q.V)})
}

// evaluator resolves a slot of the output to its joint curve, the reference
// pose when the joint has no curve, then applies basis conversion and rounding.
func evaluator(d *decoded, skel *anm.ReferencePose, joints []int, mode anm.Interpolation, opts *Options) sparse.Evaluator {
	return func(t float32, slot int) anm.Transform {
		joint := joints[slot]
		tr := interp.Joint(d.Tracks[joint], t, skel.Pose(joint), mode)
		if opts.Converter != nil {
			tr = opts.Converter.ConvertTransform(tr)
		}
		if opts.HalfPrecision {
			tr.Rotation = roundQuat(tr.Rotation)
			tr.Scale = utils.HalfRound3(tr.Scale)
		}
		return tr
	}
}
