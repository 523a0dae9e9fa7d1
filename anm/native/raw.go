package native

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

const (
	rawHeaderSize   = 12
	rawFloatsPerKey = 10
)

// RawDecoder reads uncompressed dense blobs:
// u32 numTracks, u32 numSamples, f32 rate, then per track and sample
// translation xyz, rotation xyzw, scale xyz as float32.
type RawDecoder struct{}

func (RawDecoder) ReadHeader(blob []byte) (Header, error) {
	bs := utils.NewBufStack("raw", blob)
	h := Header{
		NumTracks:  int(bs.ReadLU32()),
		NumSamples: int(bs.ReadLU32()),
		SampleRate: bs.ReadLF(),
	}
	return h, bs.Err()
}

func (d RawDecoder) Decode(blob []byte, req *Request, out []anm.Transform) (int, error) {
	h, err := d.ReadHeader(blob)
	if err != nil {
		return 0, err
	}
	if len(out) < h.NumTracks*h.NumSamples {
		return 0, errors.Errorf("output buffer holds %d transforms, need %d", len(out), h.NumTracks*h.NumSamples)
	}
	bs := utils.NewBufStack("raw", blob).SubBuf("samples", rawHeaderSize)
	for i := 0; i < h.NumTracks*h.NumSamples; i++ {
		out[i] = anm.Transform{
			Translation: mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()},
		}
		out[i].Rotation.V = mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()}
		out[i].Rotation.W = bs.ReadLF()
		out[i].Scale = mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()}
	}
	if err := bs.Err(); err != nil {
		return 0, err
	}
	return h.NumSamples, nil
}

// EncodeRaw builds a RawDecoder blob, samples laid out track-major.
func EncodeRaw(h Header, samples []anm.Transform) []byte {
	buf := make([]byte, 0, rawHeaderSize+len(samples)*rawFloatsPerKey*4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.NumTracks))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(h.NumSamples))
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(h.SampleRate))
	for _, s := range samples {
		for _, f := range []float32{
			s.Translation[0], s.Translation[1], s.Translation[2],
			s.Rotation.V[0], s.Rotation.V[1], s.Rotation.V[2], s.Rotation.W,
			s.Scale[0], s.Scale[1], s.Scale[2],
		} {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	return buf
}
