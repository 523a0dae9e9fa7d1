package anm

import (
	"sync"

	"github.com/pkg/errors"
)

// CodecTag is the numeric key encoding format of a compressed sequence.
type CodecTag uint8

const (
	CodecConstantKeyLerp CodecTag = 0
	CodecVariableKeyLerp CodecTag = 1
	CodecPerTrack        CodecTag = 2
	CodecACL             CodecTag = 3
)

func (t CodecTag) String() string {
	switch t {
	case CodecConstantKeyLerp:
		return "ConstantKeyLerp"
	case CodecVariableKeyLerp:
		return "VariableKeyLerp"
	case CodecPerTrack:
		return "PerTrack"
	case CodecACL:
		return "ACL"
	default:
		return "Unknown"
	}
}

// CompressedData is one of *PerTrackData, *KeyLerpData or *ACLData.
// The set is closed: only this package can add variants.
type CompressedData interface {
	Codec() CodecTag
	compressedData()
}

// PerTrackData stores every track with its own format header and optional time track.
type PerTrackData struct {
	Stream  []byte
	Offsets []TrackOffsets // indexed by track
}

// KeyLerpData stores keys uniformly spaced (Constant) or with a time table per track (Variable).
type KeyLerpData struct {
	Stream   []byte
	Offsets  []TrackOffsets
	Variable bool
}

// ACLData is an opaque blob decoded only by an external fixed-rate decoder.
// The embedded mutex serialises native calls on the same blob.
type ACLData struct {
	Blob []byte

	mu sync.Mutex
}

func (*PerTrackData) Codec() CodecTag { return CodecPerTrack }
func (d *KeyLerpData) Codec() CodecTag {
	if d.Variable {
		return CodecVariableKeyLerp
	}
	return CodecConstantKeyLerp
}
func (*ACLData) Codec() CodecTag { return CodecACL }

func (*PerTrackData) compressedData() {}
func (*KeyLerpData) compressedData()  {}
func (*ACLData) compressedData()      {}

// Lock and Unlock guard the blob for the duration of one native call.
func (d *ACLData) Lock()   { d.mu.Lock() }
func (d *ACLData) Unlock() { d.mu.Unlock() }

// CodecFromTag wraps raw asset model fields into the matching variant.
func CodecFromTag(tag CodecTag, stream []byte, offsets []TrackOffsets) (CompressedData, error) {
	switch tag {
	case CodecConstantKeyLerp, CodecVariableKeyLerp:
		return &KeyLerpData{Stream: stream, Offsets: offsets, Variable: tag == CodecVariableKeyLerp}, nil
	case CodecPerTrack:
		return &PerTrackData{Stream: stream, Offsets: offsets}, nil
	case CodecACL:
		return &ACLData{Blob: stream}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedCodec, "tag %d", tag)
	}
}

// ParseCodecTag accepts the names used by asset dumps.
func ParseCodecTag(name string) (CodecTag, error) {
	switch name {
	case "ConstantKeyLerp", "constant", "constantkeylerp":
		return CodecConstantKeyLerp, nil
	case "VariableKeyLerp", "variable", "variablekeylerp":
		return CodecVariableKeyLerp, nil
	case "PerTrack", "pertrack", "PerTrackCompression":
		return CodecPerTrack, nil
	case "ACL", "acl":
		return CodecACL, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedCodec, "codec name %q", name)
	}
}
