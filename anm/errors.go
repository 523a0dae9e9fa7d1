package anm

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedCodec aborts the current sequence only.
	ErrUnsupportedCodec = errors.New("unsupported codec")
	// ErrMalformedStream is recovered per track: the joint keeps its reference pose.
	ErrMalformedStream = errors.New("malformed stream")
	// ErrInvalidBoneReference is recovered per track.
	ErrInvalidBoneReference = errors.New("invalid bone reference")
	// ErrNativeDecodeFailure aborts the current sequence only.
	ErrNativeDecodeFailure = errors.New("native decode failure")
)

// SequenceError identifies the sequence and codec a fatal error belongs to.
type SequenceError struct {
	Sequence string
	Codec    string
	Err      error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("sequence %q (codec %s): %v", e.Sequence, e.Codec, e.Err)
}

func (e *SequenceError) Unwrap() error { return e.Err }

func (e *SequenceError) Cause() error { return e.Err }
