package compression

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

// Layout selects how key times are stored for every track of a stream.
type Layout int

const (
	// LayoutPerTrack reads a time block when the header flag says so.
	LayoutPerTrack Layout = iota
	// LayoutConstantKeyLerp keys are uniformly spaced, a time flag is an error.
	LayoutConstantKeyLerp
	// LayoutVariableKeyLerp every multi-key track carries a time block.
	LayoutVariableKeyLerp
)

func (l Layout) String() string {
	switch l {
	case LayoutPerTrack:
		return "PerTrack"
	case LayoutConstantKeyLerp:
		return "ConstantKeyLerp"
	case LayoutVariableKeyLerp:
		return "VariableKeyLerp"
	default:
		return "Unknown"
	}
}

// Decoder decodes single tracks out of a compressed byte stream.
// It holds no cursor state, every call creates its own.
type Decoder struct {
	Layout       Layout
	Timing       Timing
	DefaultScale mgl32.Vec3
}

// readHeader positions a fresh cursor at offset and parses the track header.
// ok is false for absent tracks (offset -1 or zero keys).
func (d *Decoder) readHeader(stream []byte, offset int32, component string) (bs *utils.BufStack, h TrackHeader, ok bool, err error) {
	if offset == anm.OffsetAbsent {
		return nil, h, false, nil
	}
	bs = utils.NewBufStack("track", stream).SubBuf(component, int(offset))
	raw := bs.ReadLU32()
	if err := bs.Err(); err != nil {
		return nil, h, false, errors.Wrapf(anm.ErrMalformedStream, "%s header: %v", component, err)
	}
	h = ParseTrackHeader(raw)
	if h.NumKeys == 0 {
		return nil, h, false, nil
	}
	if h.Format >= formatCount {
		return nil, h, false, errors.Wrapf(anm.ErrMalformedStream, "%s header 0x%08x: unknown format %d", component, raw, h.Format)
	}
	if d.Timing.NumFrames > 0 && h.NumKeys > d.Timing.NumFrames {
		return nil, h, false, errors.Wrapf(anm.ErrMalformedStream, "%s: %d keys for %d frames", component, h.NumKeys, d.Timing.NumFrames)
	}
	return bs, h, true, nil
}

// readTimes follows the key block. Identity tracks hold a single key at zero.
func (d *Decoder) readTimes(bs *utils.BufStack, h TrackHeader, numKeys int, component string) ([]float32, error) {
	if h.Format == FormatIdentity {
		return []float32{0}, nil
	}
	explicit := h.HasTimes
	switch d.Layout {
	case LayoutConstantKeyLerp:
		if h.HasTimes {
			return nil, errors.Wrapf(anm.ErrMalformedStream, "%s: time track in constant key layout", component)
		}
	case LayoutVariableKeyLerp:
		explicit = numKeys > 1
	}
	if !explicit {
		return d.Timing.ImplicitTimes(numKeys), nil
	}

	bs.Align(4)
	times, err := d.Timing.readExplicitTimes(bs, numKeys)
	if err != nil {
		return nil, errors.Wrapf(err, "%s times", component)
	}
	return times, nil
}

func (d *Decoder) decodeVector(stream []byte, offset int32, component string, identity mgl32.Vec3) (anm.VectorTrack, error) {
	bs, h, ok, err := d.readHeader(stream, offset, component)
	if !ok {
		return nil, err
	}
	values, err := decodeVectorKeys(bs, h, identity)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", component)
	}
	times, err := d.readTimes(bs, h, len(values), component)
	if err != nil {
		return nil, err
	}
	track := make(anm.VectorTrack, len(values))
	for i := range values {
		track[i] = anm.VectorKey{Time: times[i], Value: values[i]}
	}
	return track, nil
}

func (d *Decoder) DecodeTranslation(stream []byte, offset int32) (anm.VectorTrack, error) {
	return d.decodeVector(stream, offset, "translation", mgl32.Vec3{})
}

func (d *Decoder) DecodeScale(stream []byte, offset int32) (anm.VectorTrack, error) {
	return d.decodeVector(stream, offset, "scale", d.DefaultScale)
}

func (d *Decoder) DecodeRotation(stream []byte, offset int32) (anm.QuatTrack, error) {
	bs, h, ok, err := d.readHeader(stream, offset, "rotation")
	if !ok {
		return nil, err
	}
	values, err := decodeQuatKeys(bs, h)
	if err != nil {
		return nil, err
	}
	times, err := d.readTimes(bs, h, len(values), "rotation")
	if err != nil {
		return nil, err
	}
	track := make(anm.QuatTrack, len(values))
	for i := range values {
		track[i] = anm.QuatKey{Time: times[i], Value: values[i]}
	}
	return track, nil
}

// DecodeJoint decodes the three components of one track. Any component
// failure fails the whole joint so it never mixes decoded and fallback curves.
func (d *Decoder) DecodeJoint(stream []byte, offsets anm.TrackOffsets) (*anm.JointTracks, error) {
	var jt anm.JointTracks
	var err error
	if jt.Translation, err = d.DecodeTranslation(stream, offsets.Translation); err != nil {
		return nil, err
	}
	if jt.Rotation, err = d.DecodeRotation(stream, offsets.Rotation); err != nil {
		return nil, err
	}
	if jt.Scale, err = d.DecodeScale(stream, offsets.Scale); err != nil {
		return nil, err
	}
	return &jt, nil
}
