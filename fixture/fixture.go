// Package fixture describes a pre-parsed asset model in YAML: a skeleton,
// compressed sequences and morph buffers. JSON works as well.
package fixture

import (
	"encoding/base64"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/export"
	"github.com/mogaika/skelanim/morph"
)

type Joint struct {
	Name        string     `yaml:"name"`
	Parent      int        `yaml:"parent"`
	Translation [3]float32 `yaml:"translation,flow"`
	Rotation    [4]float32 `yaml:"rotation,flow"` // x y z w
	Scale       [3]float32 `yaml:"scale,flow"`
}

type Sequence struct {
	Name          string     `yaml:"name"`
	Codec         string     `yaml:"codec"`
	Frames        int        `yaml:"frames"`
	Length        float32    `yaml:"length"`
	Rate          float32    `yaml:"rate"`
	Interpolation string     `yaml:"interpolation,omitempty"`
	TrackMap      []int      `yaml:"track_map,flow"`
	Offsets       [][3]int32 `yaml:"offsets,flow"` // translation rotation scale per track
	Stream        string     `yaml:"stream"`       // base64
}

type Delta struct {
	Vertex   uint32     `yaml:"vertex"`
	Position [3]float32 `yaml:"position,flow"`
	TangentZ [3]float32 `yaml:"tangent_z,flow"`
}

type QuantizedDelta struct {
	Vertex   uint32   `yaml:"vertex"`
	Position [3]int32 `yaml:"position,flow"`
	TangentZ [3]int32 `yaml:"tangent_z,flow"`
}

type Batch struct {
	PositionMin [3]float32       `yaml:"position_min,flow"`
	TangentZMin [3]float32       `yaml:"tangent_z_min,flow"`
	HasTangents bool             `yaml:"has_tangents"`
	Deltas      []QuantizedDelta `yaml:"deltas"`
}

type MorphTarget struct {
	Name       string  `yaml:"name"`
	Index      int     `yaml:"index"`
	Predecoded []Delta `yaml:"predecoded,omitempty"`
}

type Morph struct {
	PositionPrecision float32       `yaml:"position_precision"`
	TangentZPrecision float32       `yaml:"tangent_z_precision"`
	BatchStarts       []int         `yaml:"batch_start_offsets,flow"`
	BatchCounts       []int         `yaml:"batches_per_morph,flow"`
	Batches           []Batch       `yaml:"batches"`
	Targets           []MorphTarget `yaml:"targets"`
}

type Fixture struct {
	Skeleton  []Joint    `yaml:"skeleton"`
	Sequences []Sequence `yaml:"sequences"`
	Morph     *Morph     `yaml:"morph,omitempty"`
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "Can't parse fixture")
	}
	return &f, nil
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read fixture %q", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return f, nil
}

func (f *Fixture) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// ReferencePose converts the skeleton. Zero rotations and scales read as identity.
func (f *Fixture) ReferencePose() (*anm.ReferencePose, error) {
	rp := &anm.ReferencePose{Joints: make([]anm.Joint, len(f.Skeleton))}
	for i, j := range f.Skeleton {
		pose := anm.Transform{
			Translation: j.Translation,
			Rotation:    mgl32.Quat{W: j.Rotation[3], V: mgl32.Vec3{j.Rotation[0], j.Rotation[1], j.Rotation[2]}},
			Scale:       j.Scale,
		}
		if pose.Rotation == (mgl32.Quat{}) {
			pose.Rotation = mgl32.QuatIdent()
		}
		if pose.Scale == (mgl32.Vec3{}) {
			pose.Scale = mgl32.Vec3{1, 1, 1}
		}
		rp.Joints[i] = anm.Joint{Name: j.Name, Parent: j.Parent, Pose: pose}
	}
	if err := rp.Validate(); err != nil {
		return nil, err
	}
	return rp, nil
}

func parseInterpolation(s string) (anm.Interpolation, error) {
	switch s {
	case "", "linear":
		return anm.InterpolationLinear, nil
	case "step":
		return anm.InterpolationStep, nil
	default:
		return 0, errors.Errorf("Unknown interpolation %q", s)
	}
}

// codec may be a name or the numeric tag
func (s *Sequence) codecTag() (anm.CodecTag, error) {
	if n, err := strconv.ParseUint(s.Codec, 10, 8); err == nil {
		return anm.CodecTag(n), nil
	}
	return anm.ParseCodecTag(s.Codec)
}

// Sequence converts one sequence into the exporter input.
func (s *Sequence) Sequence() (*export.Sequence, error) {
	interpolation, err := parseInterpolation(s.Interpolation)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence %q", s.Name)
	}
	stream, err := base64.StdEncoding.DecodeString(s.Stream)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence %q stream", s.Name)
	}
	offsets := make([]anm.TrackOffsets, len(s.Offsets))
	for i, o := range s.Offsets {
		offsets[i] = anm.TrackOffsets{Translation: o[0], Rotation: o[1], Scale: o[2]}
	}

	seq := &export.Sequence{
		Info: anm.SequenceInfo{
			Name:          s.Name,
			NumFrames:     s.Frames,
			Length:        s.Length,
			SampleRate:    s.Rate,
			Interpolation: interpolation,
		},
		TrackMap:  s.TrackMap,
		CodecName: s.Codec,
	}
	// an unknown codec stays nil so the exporter reports and skips it
	if tag, err := s.codecTag(); err == nil {
		if data, err := anm.CodecFromTag(tag, stream, offsets); err == nil {
			seq.Data = data
		}
	}
	return seq, nil
}

func (f *Fixture) ExportSequences() ([]*export.Sequence, error) {
	seqs := make([]*export.Sequence, len(f.Sequences))
	for i := range f.Sequences {
		seq, err := f.Sequences[i].Sequence()
		if err != nil {
			return nil, err
		}
		seqs[i] = seq
	}
	return seqs, nil
}

func (f *Fixture) FindSequence(name string) *Sequence {
	for i := range f.Sequences {
		if f.Sequences[i].Name == name {
			return &f.Sequences[i]
		}
	}
	return nil
}

// MorphBuffers converts the morph section, nil when the fixture has none.
func (f *Fixture) MorphBuffers() (*morph.Buffers, []*morph.Target) {
	if f.Morph == nil {
		return nil, nil
	}
	m := f.Morph
	buf := &morph.Buffers{
		Batches:                  make([]morph.Batch, len(m.Batches)),
		BatchStartOffsetPerMorph: m.BatchStarts,
		BatchesPerMorph:          m.BatchCounts,
		PositionPrecision:        m.PositionPrecision,
		TangentZPrecision:        m.TangentZPrecision,
	}
	for i, b := range m.Batches {
		batch := morph.Batch{
			PositionMin: b.PositionMin,
			TangentZMin: b.TangentZMin,
			HasTangents: b.HasTangents,
			Deltas:      make([]morph.QuantizedDelta, len(b.Deltas)),
		}
		for j, d := range b.Deltas {
			batch.Deltas[j] = morph.QuantizedDelta{VertexIndex: d.Vertex, Position: d.Position, TangentZ: d.TangentZ}
		}
		buf.Batches[i] = batch
	}

	targets := make([]*morph.Target, len(m.Targets))
	for i, t := range m.Targets {
		target := &morph.Target{Name: t.Name, Index: t.Index}
		for _, d := range t.Predecoded {
			target.Predecoded = append(target.Predecoded, morph.Delta{VertexIndex: d.Vertex, Position: d.Position, TangentZ: d.TangentZ})
		}
		targets[i] = target
	}
	return buf, targets
}

func (f *Fixture) FindMorphTarget(name string) *morph.Target {
	_, targets := f.MorphBuffers()
	for _, t := range targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}
