package sink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/coord"
	"github.com/mogaika/skelanim/morph"
)

func testSkeleton() *anm.ReferencePose {
	return &anm.ReferencePose{Joints: []anm.Joint{
		{Name: "root", Parent: anm.JointParentNone, Pose: anm.IdentityTransform()},
		{Name: "arm.L", Parent: 0, Pose: anm.IdentityTransform()},
		{Name: "hand.L", Parent: 1, Pose: anm.IdentityTransform()},
	}}
}

func testResult(name string) *anm.SequenceResult {
	pose := anm.IdentityTransform()
	moved := pose
	moved.Translation = mgl32.Vec3{1, 2, 3}
	return &anm.SequenceResult{
		Name:          name,
		Codec:         anm.CodecPerTrack,
		SampleRate:    30,
		StartFrame:    1,
		EndFrame:      4,
		Interpolation: anm.InterpolationStep,
		Sparse:        true,
		Joints:        []int{0, 2},
		JointPaths:    []string{"root", "root/arm_L/hand_L"},
		Keys: []anm.PoseKey{
			{Time: 0, Frame: 1, Poses: []anm.Transform{pose, pose}},
			{Time: 0.1, Frame: 4, Poses: []anm.Transform{pose, moved}},
		},
	}
}

func testMorph() *morph.TargetResult {
	return &morph.TargetResult{Name: "smile", Offsets: []morph.VertexOffset{
		{VertexIndex: 3, Position: mgl32.Vec3{0, 1, 0}, PackedNormal: [3]uint8{128, 128, 255}, Normal: mgl32.Vec3{0, 0, 1}},
	}}
}

func TestCollector(t *testing.T) {
	var c Collector
	c.WriteSequence(testResult("a"))
	c.WriteSequence(testResult("b"))
	c.WriteMorphTarget(testMorph())
	if s := c.Sequences(); len(s) != 2 || s[1].Name != "b" {
		t.Errorf("Sequences=%v", s)
	}
	if c.Sequence("a") == nil || c.Sequence("zzz") != nil {
		t.Errorf("Sequence lookup failed")
	}
	if c.MorphTarget("smile") == nil || len(c.MorphTargets()) != 1 {
		t.Errorf("MorphTarget lookup failed")
	}
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	y := NewYAML(&buf)
	if err := y.WriteSequence(testResult("walk")); err != nil {
		t.Fatal(err)
	}
	if err := y.WriteMorphTarget(testMorph()); err != nil {
		t.Fatal(err)
	}
	if err := y.Close(); err != nil {
		t.Fatal(err)
	}

	dec := yaml.NewDecoder(strings.NewReader(buf.String()))
	var seq YAMLSequence
	if err := dec.Decode(&seq); err != nil {
		t.Fatal(err)
	}
	if seq.Kind != "sequence" || seq.Name != "walk" || seq.Interpolation != "step" || len(seq.Joints) != 2 {
		t.Errorf("sequence doc=%+v", seq)
	}
	if k := seq.Joints[1].Keys[1]; k.Translation != [3]float32{1, 2, 3} || k.Rotation != [4]float32{0, 0, 0, 1} || k.Frame != 4 {
		t.Errorf("hand key=%+v", k)
	}
	var target YAMLMorphTarget
	if err := dec.Decode(&target); err != nil {
		t.Fatal(err)
	}
	if target.Name != "smile" || target.Offsets[0].Vertex != 3 || target.Offsets[0].PackedNormal != [3]uint8{128, 128, 255} {
		t.Errorf("morph doc=%+v", target)
	}
}

func TestGLTF(t *testing.T) {
	g := NewGLTF(testSkeleton(), coord.NewUEToUSD(0.01), true)
	if len(g.Doc.Nodes) != 3 || g.Doc.Nodes[1].Name != "arm_L" {
		t.Fatalf("nodes=%v", g.Doc.Nodes)
	}
	if len(g.Doc.Scenes[0].Nodes) != 1 || len(g.Doc.Nodes[0].Children) != 1 || g.Doc.Nodes[1].Children[0] != 2 {
		t.Errorf("hierarchy broken")
	}

	if err := g.WriteSequence(testResult("walk")); err != nil {
		t.Fatal(err)
	}
	if err := g.WriteMorphTarget(testMorph()); err != nil {
		t.Fatal(err)
	}
	anim := g.Doc.Animations[0]
	if anim.Name != "walk" || len(anim.Channels) != 6 || len(anim.Samplers) != 6 {
		t.Errorf("animation %q with %d channels %d samplers", anim.Name, len(anim.Channels), len(anim.Samplers))
	}
	if ch := anim.Channels[3]; *ch.Target.Node != g.JointNode(2) || ch.Target.Path != gltf.TRSTranslation {
		t.Errorf("channel 3 targets node %d path %v", *ch.Target.Node, ch.Target.Path)
	}
	if anim.Samplers[0].Interpolation != gltf.InterpolationStep {
		t.Errorf("interpolation=%v", anim.Samplers[0].Interpolation)
	}
	input := g.Doc.Accessors[*anim.Samplers[0].Input]
	if len(input.Min) != 1 || len(input.Max) != 1 || input.Min[0] != 0 || input.Max[0] != 0.1 {
		t.Errorf("input accessor bounds %v..%v; expected [0]..[0.1]", input.Min, input.Max)
	}

	var buf bytes.Buffer
	if err := g.Encode(&buf, true); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Errorf("not a glb")
	}
}
