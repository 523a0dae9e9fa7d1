package anm

// PoseKey is a snapshot of every output joint at one time.
type PoseKey struct {
	Time  float32
	Frame int // 1-based frame at the effective sample rate
	Poses []Transform
}

// SequenceResult is the immutable, fully computed curve set of one sequence.
// SampleRate is the effective rate, which for native decoded sequences may
// differ from the declared one; consumers must use it.
type SequenceResult struct {
	Name          string
	Codec         CodecTag
	SampleRate    float32
	StartFrame    int
	EndFrame      int
	Interpolation Interpolation
	Sparse        bool

	Joints     []int    // skeleton joint index per output slot
	JointPaths []string // parallel to Joints
	Keys       []PoseKey
}

// Duration is the time of the last key.
func (sr *SequenceResult) Duration() float32 {
	if len(sr.Keys) == 0 {
		return 0
	}
	return sr.Keys[len(sr.Keys)-1].Time
}
