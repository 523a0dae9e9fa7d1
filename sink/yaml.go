package sink

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/morph"
)

type YAMLKey struct {
	Frame       int        `yaml:"frame" json:"frame"`
	Time        float32    `yaml:"time" json:"time"`
	Translation [3]float32 `yaml:"t,flow" json:"t"`
	Rotation    [4]float32 `yaml:"r,flow" json:"r"` // x y z w
	Scale       [3]float32 `yaml:"s,flow" json:"s"`
}

type YAMLJoint struct {
	Path  string    `yaml:"path" json:"path"`
	Joint int       `yaml:"joint" json:"joint"`
	Keys  []YAMLKey `yaml:"keys" json:"keys"`
}

type YAMLSequence struct {
	Kind          string      `yaml:"kind" json:"kind"`
	Name          string      `yaml:"name" json:"name"`
	Codec         string      `yaml:"codec" json:"codec"`
	SampleRate    float32     `yaml:"sample_rate" json:"sample_rate"`
	StartFrame    int         `yaml:"start_frame" json:"start_frame"`
	EndFrame      int         `yaml:"end_frame" json:"end_frame"`
	Interpolation string      `yaml:"interpolation" json:"interpolation"`
	Sparse        bool        `yaml:"sparse" json:"sparse"`
	Joints        []YAMLJoint `yaml:"joints" json:"joints"`
}

type YAMLOffset struct {
	Vertex       uint32     `yaml:"vertex" json:"vertex"`
	Position     [3]float32 `yaml:"position,flow" json:"position"`
	Normal       [3]float32 `yaml:"normal,flow" json:"normal"`
	PackedNormal [3]uint8   `yaml:"packed_normal,flow" json:"packed_normal"`
}

type YAMLMorphTarget struct {
	Kind    string       `yaml:"kind" json:"kind"`
	Name    string       `yaml:"name" json:"name"`
	Offsets []YAMLOffset `yaml:"offsets" json:"offsets"`
}

// YAML streams one document per result.
type YAML struct {
	enc *yaml.Encoder
}

func NewYAML(w io.Writer) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{enc: enc}
}

// SequenceDocument lays a result out joint-major, the way curves are usually read.
func SequenceDocument(res *anm.SequenceResult) *YAMLSequence {
	doc := &YAMLSequence{
		Kind:          "sequence",
		Name:          res.Name,
		Codec:         res.Codec.String(),
		SampleRate:    res.SampleRate,
		StartFrame:    res.StartFrame,
		EndFrame:      res.EndFrame,
		Interpolation: res.Interpolation.String(),
		Sparse:        res.Sparse,
		Joints:        make([]YAMLJoint, len(res.Joints)),
	}
	for slot, joint := range res.Joints {
		j := YAMLJoint{Path: res.JointPaths[slot], Joint: joint, Keys: make([]YAMLKey, len(res.Keys))}
		for i, k := range res.Keys {
			p := k.Poses[slot]
			j.Keys[i] = YAMLKey{
				Frame:       k.Frame,
				Time:        k.Time,
				Translation: p.Translation,
				Rotation:    p.Rotation.V.Vec4(p.Rotation.W),
				Scale:       p.Scale,
			}
		}
		doc.Joints[slot] = j
	}
	return doc
}

func MorphTargetDocument(res *morph.TargetResult) *YAMLMorphTarget {
	doc := &YAMLMorphTarget{Kind: "morph_target", Name: res.Name, Offsets: make([]YAMLOffset, len(res.Offsets))}
	for i, o := range res.Offsets {
		doc.Offsets[i] = YAMLOffset{
			Vertex:       o.VertexIndex,
			Position:     o.Position,
			Normal:       o.Normal,
			PackedNormal: o.PackedNormal,
		}
	}
	return doc
}

func (y *YAML) WriteSequence(res *anm.SequenceResult) error {
	return errors.Wrapf(y.enc.Encode(SequenceDocument(res)), "sequence %q", res.Name)
}

func (y *YAML) WriteMorphTarget(res *morph.TargetResult) error {
	return errors.Wrapf(y.enc.Encode(MorphTargetDocument(res)), "morph target %q", res.Name)
}

func (y *YAML) Close() error {
	return y.enc.Close()
}
