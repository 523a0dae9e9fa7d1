package compression

import (
	"encoding/binary"
	"math"
	"runtime"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/utils"
)

var testTiming = Timing{NumFrames: 11, Length: 1, SecondsPerFrame: 0.1}

func TestParseTrackHeader(t *testing.T) {
	h := ParseTrackHeader(0x3d000005)
	if h.Format != FormatIntervalFixed32 || h.Mask != 0x5 || !h.HasTimes || h.NumKeys != 5 {
		t.Errorf("ParseTrackHeader(0x3d000005)=%v", h)
	}
	if raw := h.Raw(); raw != 0x3d000005 {
		t.Errorf("Raw()=0x%08x; expected 0x3d000005", raw)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	values := []mgl32.Vec3{{0.1, -0.2, 0.3}, {-0.45, 0.25, 0}, {0.0, 0.49, -0.49}}
	for _, test := range []struct {
		format Format
		tol    float32
	}{
		{FormatNone, 0},
		{FormatFloat96, 0},
		{FormatFixed48, 2e-5},
		{FormatIntervalFixed32, 1e-3},
		{FormatFixed32, 5e-4},
	} {
		var w streamWriter
		offset := w.vectorTrack(test.format, 0, values, nil, testTiming.NumFrames)
		d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
		track, err := d.DecodeTranslation(w.buf, offset)
		if err != nil {
			t.Errorf("%v: %v", test.format, err)
			continue
		}
		if len(track) != len(values) {
			t.Errorf("%v: got %d keys; expected %d", test.format, len(track), len(values))
			continue
		}
		for i, k := range track {
			if !utils.Vec3ApproxEqual(k.Value, values[i], test.tol) {
				t.Errorf("%v key %d: %v; expected %v", test.format, i, k.Value, values[i])
			}
		}
	}
}

func TestVectorFloat32Replicates(t *testing.T) {
	var w streamWriter
	offset := w.vectorTrack(FormatFloat32, 0, []mgl32.Vec3{{2, 0, 0}, {3, 0, 0}}, nil, 11)
	d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
	track, err := d.DecodeScale(w.buf, offset)
	if err != nil {
		t.Fatal(err)
	}
	if track[0].Value != (mgl32.Vec3{2, 2, 2}) || track[1].Value != (mgl32.Vec3{3, 3, 3}) {
		t.Errorf("Float32 scale=%v", track)
	}
}

func TestIntervalFixed32Zero(t *testing.T) {
	min, rng := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2047, 2047, 1023}
	if v := dequantizeInterval(0, min, rng); v != (mgl32.Vec3{}) {
		t.Errorf("dequantizeInterval(0)=%v; expected zero", v)
	}

	var w streamWriter
	w.u32(TrackHeader{Format: FormatIntervalFixed32, NumKeys: 2}.Raw())
	w.vec3(min)
	w.vec3(rng)
	w.u32(0x00000000)
	w.u32(0xffffffff)
	d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
	track, err := d.DecodeTranslation(w.buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if track[0].Value != (mgl32.Vec3{}) {
		t.Errorf("key 0=%v; expected zero", track[0].Value)
	}
	if track[1].Value != rng {
		t.Errorf("key 1=%v; expected %v", track[1].Value, rng)
	}
}

func TestSingleKeyIntervalReadsRaw(t *testing.T) {
	var w streamWriter
	w.u32(TrackHeader{Format: FormatIntervalFixed32, NumKeys: 1}.Raw())
	w.vec3(mgl32.Vec3{5, 6, 7})
	d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
	track, err := d.DecodeTranslation(w.buf, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(track) != 1 || track[0].Value != (mgl32.Vec3{5, 6, 7}) || track[0].Time != 0 {
		t.Errorf("single key track=%v", track)
	}
}

func TestComponentMask(t *testing.T) {
	var w streamWriter
	offset := w.vectorTrack(FormatFloat96, headerFlagMaskX|headerFlagMaskZ, []mgl32.Vec3{{1, 2, 3}}, nil, 11)
	d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
	track, err := d.DecodeTranslation(w.buf, offset)
	if err != nil {
		t.Fatal(err)
	}
	if track[0].Value != (mgl32.Vec3{1, 0, 3}) {
		t.Errorf("masked key=%v; expected [1 0 3]", track[0].Value)
	}
}

func TestIdentityTracks(t *testing.T) {
	var w streamWriter
	w.u32(TrackHeader{Format: FormatIdentity, NumKeys: 1}.Raw())
	d := Decoder{Layout: LayoutVariableKeyLerp, Timing: testTiming, DefaultScale: mgl32.Vec3{1, 1, 1}}

	tr, err := d.DecodeTranslation(w.buf, 0)
	if err != nil || len(tr) != 1 || tr[0].Value != (mgl32.Vec3{}) || tr[0].Time != 0 {
		t.Errorf("identity translation=%v err=%v", tr, err)
	}
	sc, err := d.DecodeScale(w.buf, 0)
	if err != nil || len(sc) != 1 || sc[0].Value != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("identity scale=%v err=%v", sc, err)
	}
	rot, err := d.DecodeRotation(w.buf, 0)
	if err != nil || len(rot) != 1 || rot[0].Value != mgl32.QuatIdent() {
		t.Errorf("identity rotation=%v err=%v", rot, err)
	}
}

func testQuats() []mgl32.Quat {
	return []mgl32.Quat{
		mgl32.QuatIdent(),
		mgl32.QuatRotate(0.7, mgl32.Vec3{0, 0, 1}),
		mgl32.QuatRotate(-1.2, mgl32.Vec3{1, 1, 0}.Normalize()),
		mgl32.QuatRotate(2.0, mgl32.Vec3{0.2, -0.9, 0.4}.Normalize()),
	}
}

func TestQuatRoundTrip(t *testing.T) {
	values := testQuats()
	for _, test := range []struct {
		format Format
		tol    float32
	}{
		{FormatNone, 1e-6},
		{FormatFloat96, 1e-5},
		{FormatFixed48, 1e-4},
		{FormatIntervalFixed32, 5e-3},
		{FormatFixed32, 1e-2},
	} {
		var w streamWriter
		offset := w.quatTrack(test.format, values, nil, testTiming.NumFrames)
		d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
		track, err := d.DecodeRotation(w.buf, offset)
		if err != nil {
			t.Errorf("%v: %v", test.format, err)
			continue
		}
		for i, k := range track {
			if l := k.Value.Len(); math.Abs(float64(l-1)) > 1e-5 {
				t.Errorf("%v key %d: norm %v", test.format, i, l)
			}
			if expected := canonical(values[i]); !utils.QuatApproxEqual(k.Value, expected, test.tol) {
				t.Errorf("%v key %d: %v; expected %v", test.format, i, k.Value, expected)
			}
		}
	}
}

func TestQuatFloat32Rejected(t *testing.T) {
	var w streamWriter
	w.u32(TrackHeader{Format: FormatFloat32, NumKeys: 1}.Raw())
	w.f32(1)
	d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
	if _, err := d.DecodeRotation(w.buf, 0); !errors.Is(err, anm.ErrMalformedStream) {
		t.Errorf("Float32 rotation err=%v; expected malformed", err)
	}
}

func TestImplicitTimes(t *testing.T) {
	for _, test := range []struct {
		timing Timing
		keys   int
		times  []float32
	}{
		{testTiming, 1, []float32{0}},
		{testTiming, 3, []float32{0, 0.5, 1}},
		{Timing{NumFrames: 1, SecondsPerFrame: 0.5}, 3, []float32{0, 0.5, 1}},
	} {
		got := test.timing.ImplicitTimes(test.keys)
		for i := range test.times {
			if math.Abs(float64(got[i]-test.times[i])) > 1e-6 {
				t.Errorf("ImplicitTimes(%d)=%v; expected %v", test.keys, got, test.times)
				break
			}
		}
	}
}

func TestExplicitTimes(t *testing.T) {
	values := []mgl32.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	for _, test := range []struct {
		timing Timing
		frames []int
	}{
		{testTiming, []int{0, 4, 10}},
		{Timing{NumFrames: 300, Length: 299.0 / 30, SecondsPerFrame: 1.0 / 30}, []int{0, 150, 299}},
	} {
		var w streamWriter
		offset := w.vectorTrack(FormatFixed48, 0, []mgl32.Vec3{{0.1, 0, 0}, {0.2, 0, 0}, {0.3, 0, 0}}, test.frames, test.timing.NumFrames)
		offset2 := w.vectorTrack(FormatFloat96, 0, values, test.frames, test.timing.NumFrames)
		d := Decoder{Layout: LayoutPerTrack, Timing: test.timing}
		for _, off := range []int32{offset, offset2} {
			track, err := d.DecodeTranslation(w.buf, off)
			if err != nil {
				t.Errorf("frames %v: %v", test.frames, err)
				continue
			}
			for i, k := range track {
				expected := float32(test.frames[i]) * test.timing.SecondsPerFrame
				if math.Abs(float64(k.Time-expected)) > 1e-6 {
					t.Errorf("frames %v key %d time %v; expected %v", test.frames, i, k.Time, expected)
				}
			}
		}
	}
}

func TestVariableLayoutAlwaysReadsTimes(t *testing.T) {
	var w streamWriter
	offset := w.vectorTrack(FormatFloat96, 0, []mgl32.Vec3{{1, 0, 0}, {2, 0, 0}}, []int{2, 7}, 11)
	// clear the flag, the variable layout must not care
	binary.LittleEndian.PutUint32(w.buf[offset:], TrackHeader{Format: FormatFloat96, NumKeys: 2}.Raw())

	d := Decoder{Layout: LayoutVariableKeyLerp, Timing: testTiming}
	track, err := d.DecodeTranslation(w.buf, offset)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(track[0].Time-0.2)) > 1e-6 || math.Abs(float64(track[1].Time-0.7)) > 1e-6 {
		t.Errorf("variable times=%v; expected 0.2 0.7", track)
	}
}

func TestAbsentTracks(t *testing.T) {
	var w streamWriter
	w.u32(TrackHeader{Format: FormatFloat96, NumKeys: 0}.Raw())
	d := Decoder{Layout: LayoutPerTrack, Timing: testTiming}
	jt, err := d.DecodeJoint(w.buf, anm.TrackOffsets{Translation: anm.OffsetAbsent, Rotation: 0, Scale: anm.OffsetAbsent})
	if err != nil {
		t.Fatal(err)
	}
	if !jt.Empty() {
		t.Errorf("DecodeJoint=%v; expected empty", utils.SDump(jt))
	}
}

func TestMalformedTracks(t *testing.T) {
	float96 := func(n int) []mgl32.Vec3 {
		v := make([]mgl32.Vec3, n)
		for i := range v {
			v[i] = mgl32.Vec3{float32(i), 0, 0}
		}
		return v
	}

	for _, test := range []struct {
		name   string
		layout Layout
		build  func(w *streamWriter) int32
	}{
		{"truncated keys", LayoutPerTrack, func(w *streamWriter) int32 {
			off := w.vectorTrack(FormatFloat96, 0, float96(3), nil, 11)
			w.buf = w.buf[:len(w.buf)-5]
			return off
		}},
		{"truncated header", LayoutPerTrack, func(w *streamWriter) int32 {
			w.u16(7)
			return 0
		}},
		{"offset past end", LayoutPerTrack, func(w *streamWriter) int32 {
			w.u32(0)
			return 64
		}},
		{"unknown format", LayoutPerTrack, func(w *streamWriter) int32 {
			w.u32(0x9<<28 | 1)
			w.vec3(mgl32.Vec3{})
			return 0
		}},
		{"frame out of range", LayoutPerTrack, func(w *streamWriter) int32 {
			return w.vectorTrack(FormatFloat96, 0, float96(2), []int{0, 11}, 11)
		}},
		{"frames not increasing", LayoutPerTrack, func(w *streamWriter) int32 {
			return w.vectorTrack(FormatFloat96, 0, float96(2), []int{5, 5}, 11)
		}},
		{"too many keys", LayoutPerTrack, func(w *streamWriter) int32 {
			return w.vectorTrack(FormatFloat96, 0, float96(12), nil, 11)
		}},
		{"time flag in constant layout", LayoutConstantKeyLerp, func(w *streamWriter) int32 {
			return w.vectorTrack(FormatFloat96, 0, float96(2), []int{0, 1}, 11)
		}},
		{"truncated times", LayoutVariableKeyLerp, func(w *streamWriter) int32 {
			return w.vectorTrack(FormatFloat96, 0, float96(2), nil, 11)
		}},
	} {
		var w streamWriter
		offset := test.build(&w)
		d := Decoder{Layout: test.layout, Timing: testTiming}
		if _, err := d.DecodeTranslation(w.buf, offset); !errors.Is(err, anm.ErrMalformedStream) {
			t.Errorf("%s: err=%v; expected malformed stream", test.name, err)
		}
	}
}

func TestKeyCountBeyondStream(t *testing.T) {
	var w streamWriter
	w.u32(uint32(FormatFloat96)<<28 | 0xffffff)
	w.u32(0)
	d := Decoder{Layout: LayoutPerTrack}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, terr := d.DecodeTranslation(w.buf, 0)
	_, rerr := d.DecodeRotation(w.buf, 0)
	runtime.ReadMemStats(&after)

	if !errors.Is(terr, anm.ErrMalformedStream) || !errors.Is(rerr, anm.ErrMalformedStream) {
		t.Errorf("translation err=%v rotation err=%v; expected malformed stream", terr, rerr)
	}
	if grown := after.TotalAlloc - before.TotalAlloc; grown > 1<<20 {
		t.Errorf("allocated %d bytes for an 8 byte stream", grown)
	}
}
