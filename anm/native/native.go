// Package native bridges sequences compressed with an external fixed-rate format.
// The blob is never inspected here: a Decoder fills a dense sample buffer
// that is then reshaped into per-joint tracks.
package native

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

// maxDenseSamples bounds the output buffer a header may ask for.
const maxDenseSamples = 1 << 26

type Header struct {
	NumTracks  int
	NumSamples int
	SampleRate float32
}

// Request is the input of one native decode. All slices are owned copies.
type Request struct {
	RefPose      []anm.Transform
	TrackMap     []int // track index -> joint index
	DefaultScale mgl32.Vec3
}

// Decoder is the external routine. Decode fills out, laid out as
// out[track*NumSamples+sample], and returns the number of samples per track
// it wrote. Implementations need not be reentrant.
type Decoder interface {
	ReadHeader(blob []byte) (Header, error)
	Decode(blob []byte, req *Request, out []anm.Transform) (int, error)
}

type Result struct {
	SampleRate float32 // native rate, may differ from the declared one
	NumSamples int
	// Tracks is indexed by joint, nil for joints without a track.
	Tracks []*anm.JointTracks
	// InvalidTracks lists tracks mapped outside the skeleton.
	InvalidTracks []int
}

func failure(format string, args ...interface{}) error {
	return errors.Wrapf(anm.ErrNativeDecodeFailure, format, args...)
}

// call runs the decoder with the blob locked, turning a panic into a failure.
func call(dec Decoder, data *anm.ACLData, req *Request) (h Header, out []anm.Transform, written int, err error) {
	data.Lock()
	defer data.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = failure("decoder panic: %v", r)
		}
	}()

	blob := make([]byte, len(data.Blob))
	copy(blob, data.Blob)

	if h, err = dec.ReadHeader(blob); err != nil {
		return h, nil, 0, failure("header: %v", err)
	}
	if h.NumTracks < 0 || h.NumSamples < 0 || h.NumTracks > maxDenseSamples || h.NumSamples > maxDenseSamples ||
		h.NumTracks*h.NumSamples > maxDenseSamples {
		return h, nil, 0, failure("header %+v out of range", h)
	}
	if h.NumTracks != len(req.TrackMap) {
		return h, nil, 0, failure("blob has %d tracks, track map has %d", h.NumTracks, len(req.TrackMap))
	}
	if !(h.SampleRate > 0) {
		return h, nil, 0, failure("sample rate %v", h.SampleRate)
	}

	out = make([]anm.Transform, h.NumTracks*h.NumSamples)
	if written, err = dec.Decode(blob, req, out); err != nil {
		return h, nil, 0, failure("decode: %v", err)
	}
	return h, out, written, nil
}

// Decode runs dec over the blob and reshapes the samples into joint tracks.
// Sample s of every track is placed at s / SampleRate.
func Decode(dec Decoder, data *anm.ACLData, ref *anm.ReferencePose, trackMap []int, defaultScale mgl32.Vec3) (*Result, error) {
	if dec == nil {
		return nil, failure("no native decoder configured")
	}
	req := &Request{
		RefPose:      ref.Poses(),
		TrackMap:     append([]int(nil), trackMap...),
		DefaultScale: defaultScale,
	}

	h, out, written, err := call(dec, data, req)
	if err != nil {
		return nil, err
	}
	if written != h.NumSamples {
		return nil, failure("decoder wrote %d samples, header says %d", written, h.NumSamples)
	}

	res := &Result{
		SampleRate: h.SampleRate,
		NumSamples: h.NumSamples,
		Tracks:     make([]*anm.JointTracks, ref.NumJoints()),
	}
	for track, joint := range req.TrackMap {
		if !ref.ValidJoint(joint) {
			res.InvalidTracks = append(res.InvalidTracks, track)
			continue
		}
		samples := out[track*h.NumSamples : (track+1)*h.NumSamples]
		jt := &anm.JointTracks{
			Translation: make(anm.VectorTrack, len(samples)),
			Rotation:    make(anm.QuatTrack, len(samples)),
			Scale:       make(anm.VectorTrack, len(samples)),
		}
		for s, tr := range samples {
			t := float32(s) / h.SampleRate
			jt.Translation[s] = anm.VectorKey{Time: t, Value: tr.Translation}
			jt.Rotation[s] = anm.QuatKey{Time: t, Value: utils.NormalizeQuat(tr.Rotation)}
			jt.Scale[s] = anm.VectorKey{Time: t, Value: tr.Scale}
		}
		res.Tracks[joint] = jt
	}
	return res, nil
}

func (r *Result) String() string {
	return fmt.Sprintf("native<rate:%v samples:%d joints:%d>", r.SampleRate, r.NumSamples, len(r.Tracks))
}
