package sink

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/export"
	"github.com/mogaika/skelanim/morph"
	"github.com/mogaika/skelanim/utils"
	"github.com/mogaika/skelanim/utils/gltfutils"
)

// GLTF builds one document: the skeleton as a node tree, one animation per
// sequence. Morph targets have no mesh to live on here, so their accessors
// are listed under the document extras.
type GLTF struct {
	Doc *gltf.Document

	jointNodes []uint32
	morphs     map[string]gltfMorph
}

type gltfMorph struct {
	Vertices  uint32 `json:"vertices"`
	Positions uint32 `json:"positions"`
	Normals   uint32 `json:"normals"`
}

// NewGLTF adds the reference pose of skel as nodes. conv, when set, must be
// the converter the sequences were exported with.
func NewGLTF(skel *anm.ReferencePose, conv export.Converter, asciiNames bool) *GLTF {
	g := &GLTF{
		Doc:        gltfutils.NewDocument(),
		jointNodes: make([]uint32, skel.NumJoints()),
		morphs:     make(map[string]gltfMorph),
	}

	for i, joint := range skel.Joints {
		pose := joint.Pose
		if conv != nil {
			pose = conv.ConvertTransform(pose)
		}
		g.jointNodes[i] = uint32(len(g.Doc.Nodes))
		g.Doc.Nodes = append(g.Doc.Nodes, &gltf.Node{
			Name:        utils.SanitizeName(joint.Name, asciiNames),
			Translation: pose.Translation,
			Rotation:    pose.Rotation.V.Vec4(pose.Rotation.W),
			Scale:       pose.Scale,
		})
	}
	for i, joint := range skel.Joints {
		if joint.Parent == anm.JointParentNone {
			gltfutils.AddSceneRoots(g.Doc, g.jointNodes[i])
			continue
		}
		parent := g.Doc.Nodes[g.jointNodes[joint.Parent]]
		parent.Children = append(parent.Children, g.jointNodes[i])
	}
	return g
}

func (g *GLTF) JointNode(joint int) uint32 {
	return g.jointNodes[joint]
}

func gltfInterpolation(i anm.Interpolation) gltf.Interpolation {
	if i == anm.InterpolationStep {
		return gltf.InterpolationStep
	}
	return gltf.InterpolationLinear
}

func (g *GLTF) WriteSequence(res *anm.SequenceResult) error {
	times := make([]float32, len(res.Keys))
	for i, k := range res.Keys {
		times[i] = k.Time
	}
	input := modeler.WriteAccessor(g.Doc, gltf.TargetNone, times)
	// sampler inputs must carry their bounds
	if len(times) != 0 {
		g.Doc.Accessors[input].Min = []float32{times[0]}
		g.Doc.Accessors[input].Max = []float32{times[len(times)-1]}
	}
	interpolation := gltfInterpolation(res.Interpolation)

	anim := &gltf.Animation{Name: res.Name}
	for slot, joint := range res.Joints {
		translations := make([][3]float32, len(res.Keys))
		rotations := make([][4]float32, len(res.Keys))
		scales := make([][3]float32, len(res.Keys))
		for i, k := range res.Keys {
			p := k.Poses[slot]
			translations[i] = p.Translation
			rotations[i] = p.Rotation.V.Vec4(p.Rotation.W)
			scales[i] = p.Scale
		}

		node := g.jointNodes[joint]
		for _, ch := range []struct {
			path gltf.TRSProperty
			data interface{}
		}{
			{gltf.TRSTranslation, translations},
			{gltf.TRSRotation, rotations},
			{gltf.TRSScale, scales},
		} {
			sampler := gltfutils.WriteSampler(g.Doc, anim, input, ch.data, interpolation)
			anim.Channels = append(anim.Channels, &gltf.Channel{
				Sampler: gltf.Index(sampler),
				Target:  gltf.ChannelTarget{Node: gltf.Index(node), Path: ch.path},
			})
		}
	}
	g.Doc.Animations = append(g.Doc.Animations, anim)
	return nil
}

func (g *GLTF) WriteMorphTarget(res *morph.TargetResult) error {
	vertices := make([]uint32, len(res.Offsets))
	positions := make([][3]float32, len(res.Offsets))
	normals := make([][3]float32, len(res.Offsets))
	for i, o := range res.Offsets {
		vertices[i] = o.VertexIndex
		positions[i] = o.Position
		normals[i] = o.Normal
	}
	g.morphs[res.Name] = gltfMorph{
		Vertices:  modeler.WriteAccessor(g.Doc, gltf.TargetNone, vertices),
		Positions: modeler.WriteAccessor(g.Doc, gltf.TargetNone, positions),
		Normals:   modeler.WriteAccessor(g.Doc, gltf.TargetNone, normals),
	}
	g.Doc.Extras = map[string]interface{}{"morphTargets": g.morphs}
	return nil
}

func (g *GLTF) Encode(w io.Writer, binary bool) error {
	return gltfutils.Encode(w, g.Doc, binary)
}
