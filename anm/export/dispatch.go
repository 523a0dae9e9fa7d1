package export

import (
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/compression"
	"github.com/mogaika/skelanim/anm/native"
	"github.com/mogaika/skelanim/anm/sparse"
)

// Sequence is one animation as handed over by the asset model.
type Sequence struct {
	Info     anm.SequenceInfo
	Data     anm.CompressedData
	TrackMap []int // track index -> skeleton joint
	// CodecName is the codec as the asset model spelled it, reported when
	// Data is nil because the tag was not understood.
	CodecName string
}

func (s *Sequence) codecName() string {
	switch {
	case s.Data != nil:
		return s.Data.Codec().String()
	case s.CodecName != "":
		return s.CodecName
	default:
		return "none"
	}
}

// decoded is the per-joint curve set of a sequence together with its timing.
type decoded struct {
	Tracks     []*anm.JointTracks // indexed by joint, nil falls back to the reference pose
	Rate       float32
	End        float32
	FrameTimes []float32
}

// decode routes the sequence to the matching strategy. Per-track problems
// are logged on l and recovered, only sequence level failures are returned.
func decode(seq *Sequence, skel *anm.ReferencePose, opts *Options, l *log.Logger) (*decoded, error) {
	switch data := seq.Data.(type) {
	case *anm.PerTrackData:
		return decodeLocal(seq, skel, opts, l, compression.LayoutPerTrack, data.Stream, data.Offsets), nil
	case *anm.KeyLerpData:
		layout := compression.LayoutConstantKeyLerp
		if data.Variable {
			layout = compression.LayoutVariableKeyLerp
		}
		return decodeLocal(seq, skel, opts, l, layout, data.Stream, data.Offsets), nil
	case *anm.ACLData:
		return decodeNative(seq, skel, opts, l, data)
	case nil:
		return nil, errors.Wrapf(anm.ErrUnsupportedCodec, "codec %q", seq.codecName())
	default:
		return nil, errors.Wrapf(anm.ErrUnsupportedCodec, "compressed data %T", seq.Data)
	}
}

func decodeLocal(seq *Sequence, skel *anm.ReferencePose, opts *Options, l *log.Logger,
	layout compression.Layout, stream []byte, offsets []anm.TrackOffsets) *decoded {

	timing := compression.TimingFor(seq.Info)
	dec := compression.Decoder{Layout: layout, Timing: timing, DefaultScale: opts.DefaultScale}

	tracks := make([]*anm.JointTracks, skel.NumJoints())
	for track, joint := range seq.TrackMap {
		tl := l.With("track", track, "joint", joint)
		if !skel.ValidJoint(joint) {
			tl.Warn("Skipping track", "err", errors.Wrapf(anm.ErrInvalidBoneReference, "%d joints", skel.NumJoints()))
			continue
		}
		if track >= len(offsets) {
			tl.Warn("Using reference pose", "err", errors.Wrapf(anm.ErrMalformedStream, "no offsets for track, table has %d", len(offsets)))
			continue
		}
		jt, err := dec.DecodeJoint(stream, offsets[track])
		if err != nil {
			tl.Warn("Using reference pose", "err", err)
			continue
		}
		tracks[joint] = jt
	}

	end := seq.Info.Length
	if seq.Info.NumFrames > 1 {
		end = float32(seq.Info.NumFrames-1) * timing.SecondsPerFrame
	}
	return &decoded{
		Tracks:     tracks,
		Rate:       seq.Info.EffectiveRate(),
		End:        end,
		FrameTimes: sparse.FrameTimes(seq.Info.NumFrames, timing.SecondsPerFrame),
	}
}

func decodeNative(seq *Sequence, skel *anm.ReferencePose, opts *Options, l *log.Logger, data *anm.ACLData) (*decoded, error) {
	res, err := native.Decode(opts.Native, data, skel, seq.TrackMap, opts.DefaultScale)
	if err != nil {
		return nil, err
	}
	for _, track := range res.InvalidTracks {
		l.Warn("Skipping track", "track", track, "joint", seq.TrackMap[track],
			"err", errors.Wrapf(anm.ErrInvalidBoneReference, "%d joints", skel.NumJoints()))
	}
	if res.SampleRate != seq.Info.EffectiveRate() {
		l.Debug("Native sample rate differs from declared", "native", res.SampleRate, "declared", seq.Info.SampleRate)
	}

	samples := res.NumSamples
	if seq.Info.NumFrames > 0 && seq.Info.NumFrames < samples {
		samples = seq.Info.NumFrames
	}
	var end float32
	if samples > 1 {
		end = float32(samples-1) / res.SampleRate
	}
	if samples < res.NumSamples {
		l.Debug("Dropping native samples past the last frame", "samples", res.NumSamples, "frames", samples)
		for _, jt := range res.Tracks {
			capSamples(jt, samples)
		}
	}
	return &decoded{
		Tracks:     res.Tracks,
		Rate:       res.SampleRate,
		End:        end,
		FrameTimes: sparse.FrameTimes(samples, 1/res.SampleRate),
	}, nil
}

// capSamples keeps the first n keys of every component. Native tracks carry
// one key per sample.
func capSamples(jt *anm.JointTracks, n int) {
	if jt == nil {
		return
	}
	jt.Translation = jt.Translation[:min(n, len(jt.Translation))]
	jt.Rotation = jt.Rotation[:min(n, len(jt.Rotation))]
	jt.Scale = jt.Scale[:min(n, len(jt.Scale))]
}
