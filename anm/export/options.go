package export

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/native"
	"github.com/mogaika/skelanim/morph"
	"github.com/mogaika/skelanim/utils"
)

// Converter maps transforms and morph offsets into the basis of the scene being written.
type Converter interface {
	ConvertTransform(tr anm.Transform) anm.Transform
	morph.Converter
}

type Options struct {
	// Tolerance is the largest per-component change ignored by the sparse synthesizer.
	Tolerance float32
	// Dense writes one key per frame instead of sparse keys.
	Dense bool
	// OptimizeJoints restricts output to tracked joints and their ancestors.
	OptimizeJoints bool
	// HalfPrecision rounds rotations and scales through binary16 before comparison.
	HalfPrecision bool
	DefaultScale  mgl32.Vec3
	ASCIINames    bool

	Native    native.Decoder
	Converter Converter
	Log       *log.Logger
}

func DefaultOptions() Options {
	return Options{
		Tolerance:      1e-5,
		OptimizeJoints: true,
		DefaultScale:   mgl32.Vec3{1, 1, 1},
		ASCIINames:     true,
		Native:         native.RawDecoder{},
	}
}

func (o *Options) logger() *log.Logger {
	return utils.LoggerOrDefault(o.Log)
}
