package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// Encode writes doc as .glb when binary is set, as .gltf JSON with
// embedded buffers otherwise.
func Encode(w io.Writer, doc *gltf.Document, binary bool) error {
	if !binary {
		for _, b := range doc.Buffers {
			if b.URI == "" {
				b.EmbeddedResource()
			}
		}
	}
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = binary
	return encoder.Encode(doc)
}

// AddSceneRoots attaches nodes to the default scene.
func AddSceneRoots(doc *gltf.Document, nodes ...uint32) {
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{})
		doc.Scene = gltf.Index(0)
	}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, nodes...)
}

// WriteSampler stores an input/output accessor pair and returns the sampler index in anim.
func WriteSampler(doc *gltf.Document, anim *gltf.Animation, input uint32, output interface{}, interpolation gltf.Interpolation) uint32 {
	out := modeler.WriteAccessor(doc, gltf.TargetNone, output)
	anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(input),
		Output:        gltf.Index(out),
		Interpolation: interpolation,
	})
	return uint32(len(anim.Samplers) - 1)
}
