package gltfutils

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func TestWriteSamplerAndEncode(t *testing.T) {
	doc := NewDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "root"})
	AddSceneRoots(doc, 0)

	anim := &gltf.Animation{Name: "walk"}
	input := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1})
	s := WriteSampler(doc, anim, input, [][3]float32{{0, 0, 0}, {1, 0, 0}}, gltf.InterpolationLinear)
	if s != 0 || len(anim.Samplers) != 1 || *anim.Samplers[0].Input != input {
		t.Errorf("WriteSampler=%d samplers=%d", s, len(anim.Samplers))
	}
	if len(doc.Scenes[0].Nodes) != 1 {
		t.Errorf("scene roots=%v", doc.Scenes[0].Nodes)
	}

	for _, binary := range []bool{true, false} {
		var buf bytes.Buffer
		if err := Encode(&buf, doc, binary); err != nil {
			t.Fatal(err)
		}
		if binary && !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
			t.Errorf("binary output starts with %q", buf.Bytes()[:4])
		}
		if !binary && buf.Bytes()[0] != '{' {
			t.Errorf("json output starts with %q", buf.Bytes()[0])
		}
	}
}
